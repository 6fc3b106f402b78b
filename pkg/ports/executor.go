package ports

import "context"

// NodeExecutor performs the work of one node.
// Implementations must map (inputs, data) to an output bundle keyed by the output port
// ids of the node definition, and return an error to signal failure.
type NodeExecutor interface {
	Execute(ctx context.Context, nodeType string, inputs, data map[string]any) (map[string]any, error)
}

// ExecutorFunc adapts a function to the NodeExecutor interface.
type ExecutorFunc func(ctx context.Context, nodeType string, inputs, data map[string]any) (map[string]any, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, nodeType string, inputs, data map[string]any) (map[string]any, error) {
	return f(ctx, nodeType, inputs, data)
}
