package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
	"github.com/aretw0/flowcanvas/pkg/ports"
	"github.com/aretw0/flowcanvas/pkg/scheduler"
	"github.com/aretw0/flowcanvas/pkg/schema"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Definitions resolves node types. *catalog.Catalog satisfies it.
type Definitions interface {
	Get(nodeType string) (domain.NodeDefinition, bool)
}

// Workspace edits and runs stored workflows.
type Workspace struct {
	store ports.WorkflowStore
	defs  Definitions
	exec  ports.NodeExecutor

	strict    bool
	schedOpts []scheduler.Option
	hooks     domain.LifecycleHooks

	locks   lockTable
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger

	runsMu sync.RWMutex
	runs   map[string]*domain.RunResult
}

// Option configures the Workspace.
type Option func(*Workspace)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(w *Workspace) {
		w.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(w *Workspace) {
		if ttl > 0 {
			w.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Workspace and its runs.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithStrictPorts rejects connections between undeclared or mismatched ports.
func WithStrictPorts(strict bool) Option {
	return func(w *Workspace) {
		w.strict = strict
	}
}

// WithSchedulerOptions is passed to the scheduler of every run.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(w *Workspace) {
		w.schedOpts = append(w.schedOpts, opts...)
	}
}

// WithLifecycleHooks observes every run. WorkflowID(ctx) tells hooks which workflow is running.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workspace) {
		w.hooks = hooks
	}
}

// New creates a Workspace over store. defs resolves node types and exec runs them.
func New(store ports.WorkflowStore, defs Definitions, exec ports.NodeExecutor, opts ...Option) *Workspace {
	w := &Workspace{
		store:   store,
		defs:    defs,
		exec:    exec,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		runs:    make(map[string]*domain.RunResult),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Store returns the underlying workflow store.
func (w *Workspace) Store() ports.WorkflowStore { return w.store }

// Definitions returns the node definitions the workspace resolves types with.
func (w *Workspace) Definitions() Definitions { return w.defs }

func (w *Workspace) graphOptions() []graph.Option {
	if w.strict {
		return []graph.Option{graph.WithStrictPorts()}
	}
	return nil
}

func (w *Workspace) validate(wf *domain.Workflow) error {
	var opts []schema.Option
	if w.strict {
		opts = append(opts, schema.Strict())
	}
	return schema.Validate(wf, w.defs, opts...)
}

// Create stores an empty workflow with a generated id.
func (w *Workspace) Create(ctx context.Context, name string) (*domain.Workflow, error) {
	wf := &domain.Workflow{
		ID:       uuid.NewString(),
		Name:     name,
		Viewport: domain.ViewportState{Zoom: 1},
		Nodes:    []domain.WorkflowNode{},
		Edges:    []domain.WorkflowEdge{},
	}
	if err := w.store.Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	w.logger.Info("workflow created", "workflow_id", wf.ID)
	return wf, nil
}

// Get loads a workflow.
func (w *Workspace) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	return w.store.Load(ctx, id)
}

// List returns the ids of stored workflows.
func (w *Workspace) List(ctx context.Context) ([]string, error) {
	return w.store.List(ctx)
}

// Put validates and stores a whole document, replacing any previous version.
// An invalid document returns a *schema.AggregateError and nothing is stored.
func (w *Workspace) Put(ctx context.Context, wf *domain.Workflow) error {
	if wf.ID == "" {
		return fmt.Errorf("workflow id cannot be empty")
	}
	if err := w.validate(wf); err != nil {
		return err
	}
	return w.WithLock(ctx, wf.ID, func(ctx context.Context) error {
		return w.store.Save(ctx, wf)
	})
}

// Delete removes a workflow and forgets its last run.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	return w.WithLock(ctx, id, func(ctx context.Context) error {
		if err := w.store.Delete(ctx, id); err != nil {
			return err
		}
		w.runsMu.Lock()
		delete(w.runs, id)
		w.runsMu.Unlock()
		return nil
	})
}

// Edit loads workflow id into a graph, applies fn and saves the result.
// Nothing is saved when fn fails.
func (w *Workspace) Edit(ctx context.Context, id string, fn func(*graph.Graph) error) (*domain.Workflow, error) {
	var out *domain.Workflow
	err := w.WithLock(ctx, id, func(ctx context.Context) error {
		wf, err := w.store.Load(ctx, id)
		if err != nil {
			return err
		}
		g, err := graph.FromSnapshot(w.defs, wf.Snapshot(), w.graphOptions()...)
		if err != nil {
			return fmt.Errorf("stored workflow %s is invalid: %w", id, err)
		}
		if err := fn(g); err != nil {
			return err
		}
		snap := g.Snapshot()
		wf.Nodes, wf.Edges = snap.Nodes, snap.Edges
		if err := w.store.Save(ctx, wf); err != nil {
			return fmt.Errorf("failed to save workflow: %w", err)
		}
		out = wf
		return nil
	})
	return out, err
}

// AddNode places a new node. data is merged over the definition defaults.
func (w *Workspace) AddNode(ctx context.Context, id, nodeType string, pos domain.Point, data map[string]any) (domain.WorkflowNode, error) {
	var node domain.WorkflowNode
	_, err := w.Edit(ctx, id, func(g *graph.Graph) error {
		nodeID, err := g.AddNode(nodeType, pos)
		if err != nil {
			return err
		}
		if len(data) > 0 {
			if err := g.UpdateNodeData(nodeID, data); err != nil {
				return err
			}
		}
		node, _ = g.Node(nodeID)
		return nil
	})
	return node, err
}

// NodePatch describes a partial node update. Nil fields are left unchanged.
type NodePatch struct {
	Position *domain.Point `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// UpdateNode moves a node and/or merges data into it.
func (w *Workspace) UpdateNode(ctx context.Context, id, nodeID string, patch NodePatch) (domain.WorkflowNode, error) {
	var node domain.WorkflowNode
	_, err := w.Edit(ctx, id, func(g *graph.Graph) error {
		if patch.Position != nil {
			if err := g.MoveNode(nodeID, *patch.Position); err != nil {
				return err
			}
		}
		if patch.Data != nil {
			if err := g.UpdateNodeData(nodeID, patch.Data); err != nil {
				return err
			}
		}
		n, ok := g.Node(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
		}
		node = n
		return nil
	})
	return node, err
}

// RemoveNode deletes a node and its edges.
func (w *Workspace) RemoveNode(ctx context.Context, id, nodeID string) error {
	_, err := w.Edit(ctx, id, func(g *graph.Graph) error {
		return g.RemoveNode(nodeID)
	})
	return err
}

// Connect adds an edge, replacing whatever fed the same input.
func (w *Workspace) Connect(ctx context.Context, id string, e domain.WorkflowEdge) (domain.WorkflowEdge, error) {
	_, err := w.Edit(ctx, id, func(g *graph.Graph) error {
		edgeID, err := g.ConnectEdge(e)
		if err != nil {
			return err
		}
		e.ID = edgeID
		return nil
	})
	return e, err
}

// Disconnect removes an edge.
func (w *Workspace) Disconnect(ctx context.Context, id, edgeID string) error {
	_, err := w.Edit(ctx, id, func(g *graph.Graph) error {
		return g.Disconnect(edgeID)
	})
	return err
}

// SetViewport stores the pan/zoom of a workflow.
func (w *Workspace) SetViewport(ctx context.Context, id string, v domain.ViewportState) error {
	return w.WithLock(ctx, id, func(ctx context.Context) error {
		wf, err := w.store.Load(ctx, id)
		if err != nil {
			return err
		}
		wf.Viewport = v
		return w.store.Save(ctx, wf)
	})
}

// Run executes workflow id and remembers the result as its last run.
// The result is returned even when err is not nil, unless the workflow could not be loaded.
func (w *Workspace) Run(ctx context.Context, id string) (*domain.RunResult, error) {
	var (
		result *domain.RunResult
		runErr error
	)
	err := w.WithLock(ctx, id, func(ctx context.Context) error {
		wf, err := w.store.Load(ctx, id)
		if err != nil {
			return err
		}

		logger := w.logger.With("workflow_id", id)
		opts := append([]scheduler.Option{
			scheduler.WithLogger(logger),
			scheduler.WithLifecycleHooks(w.hooks),
		}, w.schedOpts...)

		result, runErr = scheduler.New(w.exec, opts...).Run(withWorkflowID(ctx, id), wf.Snapshot())

		w.runsMu.Lock()
		w.runs[id] = result.Clone()
		w.runsMu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, runErr
}

// LastRun returns a copy of the most recent run of workflow id.
func (w *Workspace) LastRun(id string) (*domain.RunResult, bool) {
	w.runsMu.RLock()
	defer w.runsMu.RUnlock()
	r, ok := w.runs[id]
	return r.Clone(), ok
}

// IsNotFound reports whether err means a missing workflow, node or edge.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrWorkflowNotFound) ||
		errors.Is(err, domain.ErrNodeNotFound) ||
		errors.Is(err, domain.ErrEdgeNotFound)
}

type workflowIDKey struct{}

func withWorkflowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workflowIDKey{}, id)
}

// WorkflowID returns the id of the workflow whose run produced ctx, if any.
func WorkflowID(ctx context.Context) string {
	id, _ := ctx.Value(workflowIDKey{}).(string)
	return id
}
