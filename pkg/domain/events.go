package domain

import (
	"context"
	"time"
)

// RunEvent is emitted when a run starts and ends.
type RunEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	NodeCount int           `json:"node_count"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// NodeStatusEvent is emitted every time a node changes status during a run.
type NodeStatusEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	RunID     string          `json:"run_id"`
	NodeID    string          `json:"node_id"`
	NodeType  string          `json:"node_type"`
	Status    ExecutionStatus `json:"status"`
	Output    map[string]any  `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for scheduler observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnNodeStatus func(context.Context, *NodeStatusEvent)
	OnRunEnd     func(context.Context, *RunEvent)
}

// ChainHooks returns hooks that call every non-nil callback of each argument in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnNodeStatus: func(ctx context.Context, e *NodeStatusEvent) {
			for _, h := range hooks {
				if h.OnNodeStatus != nil {
					h.OnNodeStatus(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
	}
}
