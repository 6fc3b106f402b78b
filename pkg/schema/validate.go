package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Schema maps data field names to their expected types.
type Schema map[string]Type

// ParseSettings builds a Schema from the Settings of a node definition.
func ParseSettings(settings map[string]string) (Schema, error) {
	s := make(Schema, len(settings))
	for _, key := range sortedKeys(settings) {
		t, err := ParseType(settings[key])
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
		s[key] = t
	}
	return s, nil
}

// ValidateData checks the fields of data that the schema declares. Missing fields
// are allowed (definition defaults fill them) and undeclared fields are ignored.
// Failures are reported under prefix.
func ValidateData(s Schema, data map[string]any, prefix string) []error {
	var errs []error
	for _, key := range sortedKeys(s) {
		value, ok := data[key]
		if !ok {
			continue
		}
		if err := s[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Path: prefix + "." + key, Reason: err.Error()})
		}
	}
	return errs
}

// Definitions resolves node types. *catalog.Catalog satisfies it.
type Definitions interface {
	Get(nodeType string) (domain.NodeDefinition, bool)
}

type options struct {
	strict bool
}

// Option tunes Validate.
type Option func(*options)

// Strict also requires every edge handle to be a declared port and port kinds to match.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Validate checks a workflow document against the catalog and reports every
// problem found as an *AggregateError:
//   - nodes need a unique id and a known type, and data matching the definition settings;
//   - edges need a unique id and must reference existing nodes;
//   - at most one edge may feed an input port;
//   - with Strict, handles must be declared and port kinds compatible.
func Validate(wf *domain.Workflow, defs Definitions, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var errs []error
	add := func(path, reason string, value any, sentinel error) {
		errs = append(errs, &ValidationError{Path: path, Reason: reason, Value: value, Err: sentinel})
	}

	nodes := make(map[string]domain.WorkflowNode, len(wf.Nodes))
	for i, n := range wf.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			add(path+".id", "required", nil, nil)
		} else if _, dup := nodes[n.ID]; dup {
			add(path+".id", "duplicate node id", n.ID, domain.ErrDuplicateNode)
		} else {
			nodes[n.ID] = n
		}

		def, ok := defs.Get(n.Type)
		if !ok {
			add(path+".type", "unknown node type", n.Type, domain.ErrUnknownType)
			continue
		}
		if len(def.Settings) == 0 {
			continue
		}
		settings, err := ParseSettings(def.Settings)
		if err != nil {
			add(path+".type", "invalid settings in definition: "+err.Error(), n.Type, nil)
			continue
		}
		errs = append(errs, ValidateData(settings, n.Data, path+".data")...)
	}

	edgeIDs := make(map[string]bool, len(wf.Edges))
	producers := make(map[string]string)
	for i, e := range wf.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.ID == "" {
			add(path+".id", "required", nil, nil)
		} else if edgeIDs[e.ID] {
			add(path+".id", "duplicate edge id", e.ID, nil)
		}
		edgeIDs[e.ID] = true

		src, okSrc := nodes[e.Source]
		if !okSrc {
			add(path+".source", "references a missing node", e.Source, domain.ErrNodeNotFound)
		}
		dst, okDst := nodes[e.Target]
		if !okDst {
			add(path+".target", "references a missing node", e.Target, domain.ErrNodeNotFound)
		}

		input := e.Target + "." + e.TargetHandle
		if prev, taken := producers[input]; taken {
			add(path+".targetHandle", "input already fed by edge "+prev, input, nil)
		} else {
			producers[input] = e.ID
		}

		if o.strict && okSrc && okDst {
			errs = append(errs, checkPorts(path, defs, src, e.SourceHandle, dst, e.TargetHandle)...)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func checkPorts(path string, defs Definitions, src domain.WorkflowNode, sourceHandle string, dst domain.WorkflowNode, targetHandle string) []error {
	srcDef, okSrc := defs.Get(src.Type)
	dstDef, okDst := defs.Get(dst.Type)
	if !okSrc || !okDst {
		// Already reported as unknown types.
		return nil
	}
	var errs []error
	out, okOut := srcDef.Output(sourceHandle)
	if !okOut {
		errs = append(errs, &ValidationError{Path: path + ".sourceHandle", Reason: "not an output of " + src.Type, Value: sourceHandle, Err: domain.ErrUnknownPort})
	}
	in, okIn := dstDef.Input(targetHandle)
	if !okIn {
		errs = append(errs, &ValidationError{Path: path + ".targetHandle", Reason: "not an input of " + dst.Type, Value: targetHandle, Err: domain.ErrUnknownPort})
	}
	if okOut && okIn && !out.Kind.Compatible(in.Kind) {
		errs = append(errs, &ValidationError{
			Path:   path,
			Reason: fmt.Sprintf("cannot connect %s output to %s input", out.Kind, in.Kind),
			Err:    domain.ErrIncompatibleConnection,
		})
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
