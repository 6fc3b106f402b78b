package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.WorkflowStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks node data values whose key
// matches one of the patterns, at any depth, before the document is saved.
// The caller's workflow is left untouched.
func NewRedactMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.WorkflowStore) ports.WorkflowStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, wf *domain.Workflow) error {
	masked := wf.Clone()
	for i, n := range masked.Nodes {
		data := deepCopyMap(n.Data)
		maskMap(data, m.patterns)
		masked.Nodes[i].Data = data
	}
	return m.next.Save(ctx, masked)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		matched := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				matched = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !matched {
			maskMap(sub, patterns)
		}
	}
}
