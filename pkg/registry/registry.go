// Package registry maps node types to their executor implementations.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// ExecutorFunc defines the signature for a node executor implementation.
// It receives the bound inputs and the node data, and returns the output bundle or an error.
type ExecutorFunc func(ctx context.Context, inputs, data map[string]any) (map[string]any, error)

// Registry manages the available executors. It satisfies ports.NodeExecutor.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]ExecutorFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]ExecutorFunc),
	}
}

// Register adds an executor for a node type.
// If an executor for the same type exists, it is overwritten.
func (r *Registry) Register(nodeType string, fn ExecutorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[nodeType] = fn
}

// Has reports whether an executor is registered for the type.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[nodeType]
	return ok
}

// Types returns the registered types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Execute looks up the executor of a node type and runs it.
// Returns domain.ErrNoExecutor if the type has no executor.
func (r *Registry) Execute(ctx context.Context, nodeType string, inputs, data map[string]any) (map[string]any, error) {
	r.mu.RLock()
	fn, ok := r.executors[nodeType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExecutor, nodeType)
	}

	return fn(ctx, inputs, data)
}

// TypeLister lists node types. *catalog.Catalog satisfies it.
type TypeLister interface {
	Types() []string
}

// Bind checks that every catalog type has an executor, so dispatch failures surface
// when the catalog is loaded instead of in the middle of a run.
func (r *Registry) Bind(types TypeLister) error {
	var errs []error
	for _, t := range types.Types() {
		if !r.Has(t) {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrNoExecutor, t))
		}
	}
	return errors.Join(errs...)
}
