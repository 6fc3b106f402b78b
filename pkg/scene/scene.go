// Package scene produces render records for a presentation layer: every node with
// its definition, status and outputs, and every edge as a screen-space curve.
// It performs no drawing.
package scene

import (
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/interaction"
	"github.com/aretw0/flowcanvas/pkg/layout"
	"github.com/aretw0/flowcanvas/pkg/viewport"
)

// Source is the read side of a graph. *graph.Graph satisfies it.
type Source interface {
	layout.Source
	Edges() []domain.WorkflowEdge
}

// Handle is a port with its screen position.
type Handle struct {
	Port      domain.Port  `json:"port"`
	Screen    domain.Point `json:"screen"`
	Connected bool         `json:"connected"`
}

// Node is the render record of one node.
type Node struct {
	ID         string                 `json:"id"`
	Definition domain.NodeDefinition  `json:"definition"`
	Position   domain.Point           `json:"position"`
	Bounds     layout.Rect            `json:"bounds"`
	Status     domain.ExecutionStatus `json:"status"`
	Output     map[string]any         `json:"output,omitempty"`
	Selected   bool                   `json:"selected"`
	Inputs     []Handle               `json:"inputs"`
	Outputs    []Handle               `json:"outputs"`
}

// Edge is the render record of one edge, in screen space.
type Edge struct {
	ID    string        `json:"id"`
	From  domain.Point  `json:"from"`
	To    domain.Point  `json:"to"`
	Curve layout.Bezier `json:"curve"`
}

// Scene is everything a presentation layer needs to draw one frame.
type Scene struct {
	Viewport domain.ViewportState `json:"viewport"`
	Nodes    []Node               `json:"nodes"`
	Edges    []Edge               `json:"edges"`
	Pending  *Edge                `json:"pending,omitempty"`
}

type options struct {
	run      *domain.RunResult
	selected string
	pending  *interaction.PendingConnection
}

// Option decorates a built scene.
type Option func(*options)

// WithRun overlays statuses and outputs of a run.
func WithRun(r *domain.RunResult) Option {
	return func(o *options) { o.run = r }
}

// WithSelection marks a node as selected.
func WithSelection(nodeID string) Option {
	return func(o *options) { o.selected = nodeID }
}

// WithPending includes the wire being dragged.
func WithPending(p interaction.PendingConnection) Option {
	return func(o *options) { o.pending = &p }
}

// FromController applies the selection and pending wire of a controller.
func FromController(c *interaction.Controller) Option {
	return func(o *options) {
		o.selected = c.Selected()
		if p, ok := c.Pending(); ok {
			o.pending = &p
		}
	}
}

// Build computes the scene of src as seen through v.
func Build(src Source, v *viewport.Viewport, opts ...Option) Scene {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	edges := src.Edges()
	connectedIn := make(map[string]bool)
	connectedOut := make(map[string]bool)
	for _, e := range edges {
		connectedIn[e.Target+"/"+e.TargetHandle] = true
		connectedOut[e.Source+"/"+e.SourceHandle] = true
	}

	s := Scene{Viewport: v.State()}
	for _, n := range src.Nodes() {
		def, _ := src.Definition(n.Type)
		box := layout.Box(n, def)
		rec := Node{
			ID:         n.ID,
			Definition: def,
			Position:   n.Position,
			Bounds:     layout.Rect{Min: v.ToScreen(box.Min), Max: v.ToScreen(box.Max)},
			Status:     domain.StatusIdle,
			Selected:   n.ID == o.selected,
		}
		if o.run != nil {
			rec.Status = o.run.Status(n.ID)
			rec.Output = o.run.Outputs[n.ID]
		}
		for _, p := range def.Inputs {
			a, _ := layout.InputAnchor(n, def, p.ID)
			rec.Inputs = append(rec.Inputs, Handle{Port: p, Screen: v.ToScreen(a), Connected: connectedIn[n.ID+"/"+p.ID]})
		}
		for _, p := range def.Outputs {
			a, _ := layout.OutputAnchor(n, def, p.ID)
			rec.Outputs = append(rec.Outputs, Handle{Port: p, Screen: v.ToScreen(a), Connected: connectedOut[n.ID+"/"+p.ID]})
		}
		s.Nodes = append(s.Nodes, rec)
	}

	for _, e := range edges {
		from := v.ToScreen(sourcePoint(src, e))
		to := v.ToScreen(targetPoint(src, e))
		s.Edges = append(s.Edges, Edge{ID: e.ID, From: from, To: to, Curve: layout.EdgeCurve(from, to)})
	}

	if o.pending != nil {
		s.Pending = &Edge{From: o.pending.Start, To: o.pending.Cursor, Curve: o.pending.Curve()}
	}
	return s
}

// sourcePoint falls back to the middle of the header when the handle is not
// declared, which permissive graphs allow.
func sourcePoint(src Source, e domain.WorkflowEdge) domain.Point {
	n, _ := src.Node(e.Source)
	def, _ := src.Definition(n.Type)
	if a, ok := layout.OutputAnchor(n, def, e.SourceHandle); ok {
		return a
	}
	return domain.Point{X: n.Position.X + layout.NodeWidth, Y: n.Position.Y + layout.HeaderHeight/2}
}

func targetPoint(src Source, e domain.WorkflowEdge) domain.Point {
	n, _ := src.Node(e.Target)
	def, _ := src.Definition(n.Type)
	if a, ok := layout.InputAnchor(n, def, e.TargetHandle); ok {
		return a
	}
	return domain.Point{X: n.Position.X, Y: n.Position.Y + layout.HeaderHeight/2}
}
