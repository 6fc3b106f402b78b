package flowcanvas

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/executors"
	"github.com/aretw0/flowcanvas/pkg/executors/generate"
	"github.com/aretw0/flowcanvas/pkg/graph"
	"github.com/aretw0/flowcanvas/pkg/interaction"
	"github.com/aretw0/flowcanvas/pkg/layout"
	"github.com/aretw0/flowcanvas/pkg/ports"
	"github.com/aretw0/flowcanvas/pkg/registry"
	"github.com/aretw0/flowcanvas/pkg/scene"
	"github.com/aretw0/flowcanvas/pkg/scheduler"
	"github.com/aretw0/flowcanvas/pkg/viewport"
)

// Editor is the high-level entry point of the library. It owns one graph with
// its viewport and interaction controller, and runs the graph on demand.
//
// Editing is rejected with domain.ErrRunInProgress while a run is active.
type Editor struct {
	mu sync.Mutex

	ID   string
	Name string

	defs     graph.Definitions
	exec     ports.NodeExecutor
	graph    *graph.Graph
	view     *viewport.Viewport
	layout   *layout.Layout
	ctrl     *interaction.Controller
	sched    *scheduler.Scheduler
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	strict   bool
	parallel int

	running bool
	last    *domain.RunResult
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithDefinitions replaces the built-in catalog.
func WithDefinitions(defs graph.Definitions) Option {
	return func(e *Editor) {
		e.defs = defs
	}
}

// WithExecutor replaces the built-in executors.
func WithExecutor(exec ports.NodeExecutor) Option {
	return func(e *Editor) {
		e.exec = exec
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers run observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithStrictPorts rejects connections between undeclared or incompatible ports.
func WithStrictPorts() Option {
	return func(e *Editor) {
		e.strict = true
	}
}

// WithParallelism lets up to n independent nodes run at once.
func WithParallelism(n int) Option {
	return func(e *Editor) {
		e.parallel = n
	}
}

// New creates an empty editor. Without options it uses the built-in catalog and
// executors, with generation nodes in offline mock mode.
func New(opts ...Option) *Editor {
	e := &Editor{parallel: 1}
	for _, opt := range opts {
		opt(e)
	}
	e.defaults()
	e.init(graph.New(e.defs, e.graphOptions()...), viewport.New())
	return e
}

// Open creates an editor over an existing workflow document.
func Open(wf *domain.Workflow, opts ...Option) (*Editor, error) {
	e := &Editor{parallel: 1}
	for _, opt := range opts {
		opt(e)
	}
	e.defaults()
	g, err := graph.FromSnapshot(e.defs, wf.Snapshot(), e.graphOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow %q: %w", wf.ID, err)
	}
	e.ID, e.Name = wf.ID, wf.Name
	e.init(g, viewport.FromState(wf.Viewport))
	return e, nil
}

func (e *Editor) defaults() {
	if e.defs == nil {
		e.defs = catalog.Builtin()
	}
	if e.exec == nil {
		reg := registry.NewRegistry()
		executors.Register(reg)
		generate.New(nil, generate.Config{}).Register(reg)
		e.exec = reg
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
}

func (e *Editor) graphOptions() []graph.Option {
	if e.strict {
		return []graph.Option{graph.WithStrictPorts()}
	}
	return nil
}

func (e *Editor) init(g *graph.Graph, v *viewport.Viewport) {
	e.graph = g
	e.view = v
	e.layout = layout.New(g)
	e.ctrl = interaction.New(g, v, e.layout, interaction.WithLogger(e.logger))
	e.sched = scheduler.New(e.exec,
		scheduler.WithLogger(e.logger),
		scheduler.WithLifecycleHooks(e.hooks),
		scheduler.WithParallelism(e.parallel),
	)
}

// Graph exposes the graph model for reads. Mutate through Edit.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// Viewport exposes the pan and zoom state.
func (e *Editor) Viewport() *viewport.Viewport { return e.view }

// Controller exposes the pointer state machine.
func (e *Editor) Controller() *interaction.Controller { return e.ctrl }

// Layout exposes node geometry in canvas space.
func (e *Editor) Layout() *layout.Layout { return e.layout }

// Edit runs fn against the graph unless a run is active.
func (e *Editor) Edit(fn func(g *graph.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return domain.ErrRunInProgress
	}
	return fn(e.graph)
}

// AddNode places a node of nodeType at a canvas position and returns its id.
func (e *Editor) AddNode(nodeType string, pos domain.Point) (string, error) {
	var id string
	err := e.Edit(func(g *graph.Graph) error {
		var err error
		id, err = g.AddNode(nodeType, pos)
		return err
	})
	return id, err
}

// DropNode places a node where it was dropped on screen, as from a palette.
func (e *Editor) DropNode(nodeType string, screen domain.Point) (string, error) {
	return e.AddNode(nodeType, e.view.ToCanvas(screen))
}

// Connect wires source.sourceHandle to target.targetHandle.
func (e *Editor) Connect(source, sourceHandle, target, targetHandle string) (string, error) {
	var id string
	err := e.Edit(func(g *graph.Graph) error {
		var err error
		id, err = g.Connect(source, sourceHandle, target, targetHandle)
		return err
	})
	return id, err
}

// UpdateNodeData merges partial into a node's data.
func (e *Editor) UpdateNodeData(id string, partial map[string]any) error {
	return e.Edit(func(g *graph.Graph) error { return g.UpdateNodeData(id, partial) })
}

// Handle feeds one pointer event to the controller.
//
// While a run is active only events that leave the graph alone go through:
// wheel zoom, pan moves, and releases. A release ends any gesture and returns
// the controller to Idle; if it would have completed a connection, the
// connection is dropped and ErrRunInProgress is returned.
func (e *Editor) Handle(ev interaction.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return e.ctrl.Handle(ev)
	}
	switch {
	case ev.Kind == interaction.Wheel:
		return e.ctrl.Handle(ev)
	case ev.Kind == interaction.Move && e.ctrl.State() != interaction.DraggingNode:
		return e.ctrl.Handle(ev)
	case ev.Kind == interaction.Release:
		if e.ctrl.Cancel() {
			return domain.ErrRunInProgress
		}
		return nil
	}
	return domain.ErrRunInProgress
}

// Run executes the graph once. The graph is snapshotted first and stays locked
// against edits until the run ends.
func (e *Editor) Run(ctx context.Context) (*domain.RunResult, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	e.running = true
	snap := e.graph.Snapshot()
	e.mu.Unlock()

	result, err := e.sched.Run(ctx, snap)

	e.mu.Lock()
	e.running = false
	e.last = result
	e.mu.Unlock()
	return result, err
}

// Progress returns the statuses of the active run, or of the last one.
func (e *Editor) Progress() *domain.RunResult {
	return e.sched.Snapshot()
}

// LastRun returns the result of the last finished run, nil before the first.
func (e *Editor) LastRun() *domain.RunResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.Clone()
}

// Scene returns the render records of the current frame, with the statuses of
// the active or last run.
func (e *Editor) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	opts := []scene.Option{scene.FromController(e.ctrl)}
	if r := e.sched.Snapshot(); r != nil {
		opts = append(opts, scene.WithRun(r))
	}
	return scene.Build(e.graph, e.view, opts...)
}

// Document returns the workflow as a document ready for a store or codec.
func (e *Editor) Document() *domain.Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.graph.Snapshot()
	return &domain.Workflow{
		ID:       e.ID,
		Name:     e.Name,
		Viewport: e.view.State(),
		Nodes:    snap.Nodes,
		Edges:    snap.Edges,
	}
}
