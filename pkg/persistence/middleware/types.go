// Package middleware provides decorators for ports.WorkflowStore that change how
// documents look at rest without the rest of the system noticing.
package middleware

import "github.com/aretw0/flowcanvas/pkg/ports"

// Middleware allows wrapping a WorkflowStore to add behavior.
type Middleware func(ports.WorkflowStore) ports.WorkflowStore

// Chain applies mws so that the first one sees calls first.
func Chain(store ports.WorkflowStore, mws ...Middleware) ports.WorkflowStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
