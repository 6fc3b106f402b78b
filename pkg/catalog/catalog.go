// Package catalog holds the registry of node definitions that can be placed on a canvas.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// ErrDuplicateType is returned when a definition type is registered twice.
var ErrDuplicateType = errors.New("duplicate node type")

// Catalog is an ordered registry of node definitions keyed by type.
// Lookups are safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[string]domain.NodeDefinition
	order []string
}

// New creates a catalog with the given definitions.
func New(defs ...domain.NodeDefinition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]domain.NodeDefinition)}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Builtin returns a catalog holding the built-in definitions.
func Builtin() *Catalog {
	c, err := New(BuiltinDefinitions()...)
	if err != nil {
		panic(err) // built-in types are unique
	}
	return c
}

// Register adds a definition. Types must be non-empty and unique.
func (c *Catalog) Register(def domain.NodeDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("node definition %q: type is required", def.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[def.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, def.Type)
	}
	c.defs[def.Type] = cloneDefinition(def)
	c.order = append(c.order, def.Type)
	return nil
}

// Get returns the definition for a type.
func (c *Catalog) Get(nodeType string) (domain.NodeDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[nodeType]
	if !ok {
		return domain.NodeDefinition{}, false
	}
	return cloneDefinition(def), true
}

// Lookup is like Get but reports a missing type as domain.ErrUnknownType.
func (c *Catalog) Lookup(nodeType string) (domain.NodeDefinition, error) {
	def, ok := c.Get(nodeType)
	if !ok {
		return def, fmt.Errorf("%w: %q", domain.ErrUnknownType, nodeType)
	}
	return def, nil
}

// Has reports whether the type is registered.
func (c *Catalog) Has(nodeType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[nodeType]
	return ok
}

// List returns every definition in registration order.
func (c *Catalog) List() []domain.NodeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.NodeDefinition, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, cloneDefinition(c.defs[t]))
	}
	return out
}

// Types returns the registered type identifiers in registration order.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func cloneDefinition(d domain.NodeDefinition) domain.NodeDefinition {
	d.Inputs = append([]domain.Port(nil), d.Inputs...)
	d.Outputs = append([]domain.Port(nil), d.Outputs...)
	if d.Defaults != nil {
		d.Defaults = domain.CloneData(d.Defaults)
	}
	if d.Settings != nil {
		settings := make(map[string]string, len(d.Settings))
		for k, v := range d.Settings {
			settings[k] = v
		}
		d.Settings = settings
	}
	return d
}
