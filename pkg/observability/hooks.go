package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// LogHooks logs every lifecycle event at debug level, failures at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "hook: run start", "run_id", e.RunID, "nodes", e.NodeCount)
		},
		OnNodeStatus: func(ctx context.Context, e *domain.NodeStatusEvent) {
			if e.Status == domain.StatusFailed {
				logger.WarnContext(ctx, "hook: node failed", "run_id", e.RunID, "node_id", e.NodeID, "error", e.Error)
				return
			}
			logger.DebugContext(ctx, "hook: node status", "run_id", e.RunID, "node_id", e.NodeID, "status", e.Status)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "hook: run end", "run_id", e.RunID, "outcome", Outcome(e.Err), "duration", e.Duration)
		},
	}
}
