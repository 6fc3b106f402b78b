package ports

import "context"

// Watchable defines an interface for sources that can notify about backend changes.
// This is used by `flowcanvas run --watch` to re-run a workflow file on save.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying source changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
