// Package scheduler runs a workflow graph snapshot in dependency order.
//
// A run resets every node to idle, computes a topological order (rejecting cyclic
// graphs before anything executes), then invokes the node executor for each node,
// binding upstream outputs to downstream inputs. The first failure halts the run:
// nodes that had not started stay idle.
//
// By default execution is strictly sequential. WithParallelism enables a bounded
// worker pool that runs independent branches concurrently.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/ports"
)

var _ ports.Runner = (*Scheduler)(nil)

// Scheduler executes graph snapshots. A Scheduler owns the status and output maps
// of the run it is executing; Snapshot exposes a copy to other goroutines.
type Scheduler struct {
	exec        ports.NodeExecutor
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	parallelism int

	running atomic.Bool

	mu      sync.RWMutex
	current *domain.RunResult
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
// With parallelism above one, OnNodeStatus is called from worker goroutines.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = hooks
	}
}

// WithParallelism sets how many nodes may execute at once. Values below 2 keep
// the default sequential behavior.
func WithParallelism(n int) Option {
	return func(s *Scheduler) {
		if n < 1 {
			n = 1
		}
		s.parallelism = n
	}
}

// New creates a scheduler that dispatches nodes to exec.
func New(exec ports.NodeExecutor, opts ...Option) *Scheduler {
	s := &Scheduler{
		exec:        exec,
		logger:      logging.NewNop(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parallelism returns the configured worker count.
func (s *Scheduler) Parallelism() int { return s.parallelism }

// Snapshot returns a copy of the current (or last) run, nil before the first run.
// It is safe to call while a run is in progress.
func (s *Scheduler) Snapshot() *domain.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Run executes the snapshot once. The returned result is never nil.
//
// Errors: a *CycleError (matching domain.ErrCycleDetected) when the graph is cyclic,
// in which case no node ran; a *domain.NodeExecutionError when a node failed;
// domain.ErrRunCanceled when ctx ended first; domain.ErrRunInProgress when another
// run on this scheduler has not finished.
func (s *Scheduler) Run(ctx context.Context, snap domain.Snapshot) (*domain.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		r := domain.NewRunResult(snap)
		r.Error = domain.ErrRunInProgress.Error()
		return r, domain.ErrRunInProgress
	}
	defer s.running.Store(false)

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	result := domain.NewRunResult(snap)
	result.StartedAt = time.Now()
	s.mu.Lock()
	s.current = result
	s.mu.Unlock()

	logger.InfoContext(ctx, "run started", "nodes", len(snap.Nodes), "edges", len(snap.Edges), "parallelism", s.parallelism)
	if s.hooks.OnRunStart != nil {
		s.hooks.OnRunStart(ctx, &domain.RunEvent{Timestamp: result.StartedAt, RunID: runID, NodeCount: len(snap.Nodes)})
	}

	r := &run{
		Scheduler: s,
		id:        runID,
		logger:    logger,
		snap:      snap,
		plan:      newPlan(snap),
		result:    result,
	}
	err := r.execute(ctx)

	s.mu.Lock()
	result.FinishedAt = time.Now()
	if err != nil {
		result.Error = err.Error()
	}
	out := result.Clone()
	s.mu.Unlock()

	switch {
	case err == nil:
		logger.InfoContext(ctx, "run completed", "duration", out.Duration())
	case isCycle(err):
		logger.WarnContext(ctx, "run rejected", "error", err)
	default:
		logger.ErrorContext(ctx, "run halted", "failed_node", out.FailedNode, "error", err, "duration", out.Duration())
	}
	if s.hooks.OnRunEnd != nil {
		s.hooks.OnRunEnd(ctx, &domain.RunEvent{
			Timestamp: out.FinishedAt,
			RunID:     runID,
			NodeCount: len(snap.Nodes),
			Err:       err,
			Duration:  out.Duration(),
		})
	}
	return out, err
}

// run is the state of one Run call.
type run struct {
	*Scheduler
	id     string
	logger *slog.Logger
	snap   domain.Snapshot
	plan   *plan
	result *domain.RunResult
}

func (r *run) execute(ctx context.Context) error {
	order, err := r.plan.order(r.snap)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.result.Order = order
	r.mu.Unlock()
	r.logger.DebugContext(ctx, "order computed", "order", order)

	if r.parallelism > 1 {
		return r.executeParallel(ctx)
	}

	nodes := r.nodesByID()
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrRunCanceled, err)
		}
		if err := r.runNode(ctx, nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) nodesByID() map[string]domain.WorkflowNode {
	nodes := make(map[string]domain.WorkflowNode, len(r.snap.Nodes))
	for _, n := range r.snap.Nodes {
		nodes[n.ID] = n
	}
	return nodes
}

// runNode executes one node and records its status. The returned error is a
// *domain.NodeExecutionError.
func (r *run) runNode(ctx context.Context, node domain.WorkflowNode) error {
	logger := r.logger.With("node_id", node.ID, "node_type", node.Type)
	inputs := r.gatherInputs(ctx, logger, node)

	r.mu.Lock()
	r.result.Statuses[node.ID] = domain.StatusRunning
	r.result.Inputs[node.ID] = domain.CloneData(inputs)
	r.mu.Unlock()
	r.emit(ctx, node, domain.StatusRunning, nil, "", 0)
	logger.DebugContext(ctx, "node started")

	start := time.Now()
	out, err := r.invoke(logging.WithContext(ctx, logger), node, inputs)
	elapsed := time.Since(start)

	if err != nil {
		failure := map[string]any{domain.ErrorKey: err.Error()}
		r.mu.Lock()
		r.result.Statuses[node.ID] = domain.StatusFailed
		r.result.Outputs[node.ID] = failure
		if r.result.FailedNode == "" {
			r.result.FailedNode = node.ID
		}
		r.mu.Unlock()
		r.emit(ctx, node, domain.StatusFailed, failure, err.Error(), elapsed)
		logger.ErrorContext(ctx, "node failed", "error", err, "duration", elapsed)
		return &domain.NodeExecutionError{NodeID: node.ID, NodeType: node.Type, Message: err.Error(), Err: err}
	}

	out = domain.CloneData(out)
	r.mu.Lock()
	r.result.Statuses[node.ID] = domain.StatusCompleted
	r.result.Outputs[node.ID] = out
	r.mu.Unlock()
	r.emit(ctx, node, domain.StatusCompleted, out, "", elapsed)
	logger.DebugContext(ctx, "node completed", "duration", elapsed)
	return nil
}

// gatherInputs binds the recorded output of every upstream edge under its target
// handle. Upstream nodes always precede node in the order, so their outputs exist.
func (r *run) gatherInputs(ctx context.Context, logger *slog.Logger, node domain.WorkflowNode) map[string]any {
	inputs := make(map[string]any)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.plan.incoming[node.ID] {
		v, ok := r.result.Outputs[e.Source][e.SourceHandle]
		if !ok {
			logger.DebugContext(ctx, "upstream output missing", "source", e.Source, "handle", e.SourceHandle)
			continue
		}
		inputs[e.TargetHandle] = v
	}
	return inputs
}

func (r *run) invoke(ctx context.Context, node domain.WorkflowNode, inputs map[string]any) (out map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("executor panic: %v", p)
		}
	}()
	return r.exec.Execute(ctx, node.Type, inputs, domain.CloneData(node.Data))
}

func (r *run) emit(ctx context.Context, node domain.WorkflowNode, status domain.ExecutionStatus, out map[string]any, msg string, d time.Duration) {
	if r.hooks.OnNodeStatus == nil {
		return
	}
	r.hooks.OnNodeStatus(ctx, &domain.NodeStatusEvent{
		Timestamp: time.Now(),
		RunID:     r.id,
		NodeID:    node.ID,
		NodeType:  node.Type,
		Status:    status,
		Output:    domain.CloneData(out),
		Error:     msg,
		Duration:  d,
	})
}
