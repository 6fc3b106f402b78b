package ports

import (
	"context"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Runner executes a frozen graph. This is the interface used by adapters (e.g., HTTP,
// MCP, CLI) that hold workflows and ask for a run on demand.
type Runner interface {
	// Run executes every node of the snapshot in dependency order.
	// The returned result is never nil, even when err is not.
	Run(ctx context.Context, snap domain.Snapshot) (*domain.RunResult, error)
}
