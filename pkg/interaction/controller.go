// Package interaction implements the pointer state machine of the canvas editor.
//
// The controller is single-threaded: each event is handled to completion before
// the next one. It mutates the graph and the viewport but never runs anything.
package interaction

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/layout"
	"github.com/aretw0/flowcanvas/pkg/viewport"
)

// State is the mutually exclusive mode of the controller.
type State int

const (
	Idle State = iota
	Panning
	DraggingNode
	ConnectingEdge
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case DraggingNode:
		return "dragging-node"
	case ConnectingEdge:
		return "connecting-edge"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Graph is the subset of the graph model the controller mutates.
type Graph interface {
	TranslateNode(id string, delta domain.Point) error
	Connect(source, sourceHandle, target, targetHandle string) (string, error)
}

// Geometry locates nodes and handles in canvas space. *layout.Layout satisfies it.
type Geometry interface {
	HitTest(p domain.Point) layout.Hit
	OutputAnchor(nodeID, handle string) (domain.Point, bool)
}

// PendingConnection is the wire being dragged out of an output handle.
// Both points are in screen space.
type PendingConnection struct {
	SourceNode   string
	SourceHandle string
	Start        domain.Point
	Cursor       domain.Point
}

// Curve returns the bezier drawn for the pending wire.
func (p PendingConnection) Curve() layout.Bezier {
	return layout.EdgeCurve(p.Start, p.Cursor)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for state transitions (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller turns pointer events into graph and viewport mutations.
type Controller struct {
	graph  Graph
	view   *viewport.Viewport
	geo    Geometry
	logger *slog.Logger

	state    State
	last     domain.Point
	dragging string
	pending  PendingConnection
	selected string
}

// New creates a controller in the Idle state.
func New(g Graph, v *viewport.Viewport, geo Geometry, opts ...Option) *Controller {
	c := &Controller{
		graph:  g,
		view:   v,
		geo:    geo,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current mode.
func (c *Controller) State() State { return c.state }

// Selected returns the selected node id, empty when nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// DraggedNode returns the node being dragged, if any.
func (c *Controller) DraggedNode() (string, bool) {
	return c.dragging, c.state == DraggingNode
}

// Pending returns the wire being dragged, if any.
func (c *Controller) Pending() (PendingConnection, bool) {
	return c.pending, c.state == ConnectingEdge
}

// Select sets the single selection programmatically.
func (c *Controller) Select(nodeID string) { c.selected = nodeID }

// ClearSelection drops the selection.
func (c *Controller) ClearSelection() { c.selected = "" }

// Handle dispatches one pointer event. The returned error comes from the graph
// when a completed connection is rejected; the controller is back in Idle either way.
func (c *Controller) Handle(ev Event) error {
	switch ev.Kind {
	case Press:
		c.press(ev)
	case Move:
		return c.move(ev)
	case Release:
		return c.release(ev)
	case Wheel:
		c.view.Wheel(ev.Screen, ev.DeltaY)
	}
	return nil
}

func (c *Controller) press(ev Event) {
	if c.state != Idle {
		return
	}
	c.last = ev.Screen

	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Mods.Space) {
		c.transition(Panning)
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	hit := c.geo.HitTest(c.view.ToCanvas(ev.Screen))
	switch hit.Kind {
	case layout.HitOutput:
		anchor, ok := c.geo.OutputAnchor(hit.NodeID, hit.Handle)
		if !ok {
			return
		}
		start := c.view.ToScreen(anchor)
		c.pending = PendingConnection{
			SourceNode:   hit.NodeID,
			SourceHandle: hit.Handle,
			Start:        start,
			Cursor:       ev.Screen,
		}
		c.transition(ConnectingEdge)
	case layout.HitInput:
		// Only outputs originate connections.
	case layout.HitBody:
		c.selected = hit.NodeID
		c.dragging = hit.NodeID
		c.transition(DraggingNode)
	default:
		c.selected = ""
		if ev.Mods.Alt {
			c.transition(Panning)
		}
	}
}

func (c *Controller) move(ev Event) error {
	delta := ev.Screen.Sub(c.last)
	c.last = ev.Screen

	switch c.state {
	case Panning:
		c.view.Pan(delta)
	case DraggingNode:
		if err := c.graph.TranslateNode(c.dragging, delta.Scale(1/c.view.Zoom)); err != nil {
			c.reset()
			return err
		}
	case ConnectingEdge:
		c.pending.Cursor = ev.Screen
	}
	return nil
}

func (c *Controller) release(ev Event) error {
	defer c.reset()
	if c.state != ConnectingEdge {
		return nil
	}

	hit := c.geo.HitTest(c.view.ToCanvas(ev.Screen))
	if hit.Kind != layout.HitInput {
		c.logger.Debug("pending connection discarded", "source", c.pending.SourceNode)
		return nil
	}
	id, err := c.graph.Connect(c.pending.SourceNode, c.pending.SourceHandle, hit.NodeID, hit.Handle)
	if err != nil {
		return fmt.Errorf("connect %s.%s -> %s.%s: %w",
			c.pending.SourceNode, c.pending.SourceHandle, hit.NodeID, hit.Handle, err)
	}
	c.logger.Debug("edge connected", "edge", id, "target", hit.NodeID, "handle", hit.Handle)
	return nil
}

// Cancel abandons the current gesture without touching the graph and returns
// to Idle. A pending connection is dropped. It reports whether one was.
func (c *Controller) Cancel() (droppedConnection bool) {
	droppedConnection = c.state == ConnectingEdge
	if c.state != Idle {
		c.logger.Debug("gesture canceled", "state", c.state)
	}
	c.reset()
	return droppedConnection
}

func (c *Controller) reset() {
	c.dragging = ""
	c.pending = PendingConnection{}
	c.transition(Idle)
}

func (c *Controller) transition(to State) {
	if c.state != to {
		c.logger.Debug("interaction state", "from", c.state, "to", to)
	}
	c.state = to
}
