// Package layout computes node geometry in canvas space: boxes, handle anchors,
// hit testing and the bezier curves used to draw edges.
package layout

import (
	"math"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Node box metrics, in canvas units.
const (
	NodeWidth    = 220.0
	HeaderHeight = 36.0
	RowHeight    = 24.0
	Padding      = 8.0
	HandleRadius = 8.0
)

// Source is the read side of a graph needed for geometry. *graph.Graph satisfies it.
type Source interface {
	Nodes() []domain.WorkflowNode
	Node(id string) (domain.WorkflowNode, bool)
	Definition(nodeType string) (domain.NodeDefinition, bool)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min domain.Point
	Max domain.Point
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p domain.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// HitKind classifies what lies under a point.
type HitKind int

const (
	HitNone HitKind = iota
	HitBody
	HitInput
	HitOutput
)

func (k HitKind) String() string {
	switch k {
	case HitBody:
		return "body"
	case HitInput:
		return "input"
	case HitOutput:
		return "output"
	default:
		return "none"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Kind   HitKind
	NodeID string
	Handle string
}

// Layout answers geometry questions about the nodes of a Source.
type Layout struct {
	src Source
}

// New returns a layout over src.
func New(src Source) *Layout {
	return &Layout{src: src}
}

// Box returns the bounding box of a node given its definition.
func Box(n domain.WorkflowNode, def domain.NodeDefinition) Rect {
	rows := len(def.Inputs)
	if len(def.Outputs) > rows {
		rows = len(def.Outputs)
	}
	h := HeaderHeight + float64(rows)*RowHeight + 2*Padding
	return Rect{
		Min: n.Position,
		Max: domain.Point{X: n.Position.X + NodeWidth, Y: n.Position.Y + h},
	}
}

func rowY(n domain.WorkflowNode, i int) float64 {
	return n.Position.Y + HeaderHeight + Padding + RowHeight*float64(i) + RowHeight/2
}

// InputAnchor returns where the input handle of a node sits on its left edge.
func InputAnchor(n domain.WorkflowNode, def domain.NodeDefinition, handle string) (domain.Point, bool) {
	for i, p := range def.Inputs {
		if p.ID == handle {
			return domain.Point{X: n.Position.X, Y: rowY(n, i)}, true
		}
	}
	return domain.Point{}, false
}

// OutputAnchor returns where the output handle of a node sits on its right edge.
func OutputAnchor(n domain.WorkflowNode, def domain.NodeDefinition, handle string) (domain.Point, bool) {
	for i, p := range def.Outputs {
		if p.ID == handle {
			return domain.Point{X: n.Position.X + NodeWidth, Y: rowY(n, i)}, true
		}
	}
	return domain.Point{}, false
}

// NodeBox returns the box of a node by id.
func (l *Layout) NodeBox(id string) (Rect, bool) {
	n, def, ok := l.lookup(id)
	if !ok {
		return Rect{}, false
	}
	return Box(n, def), true
}

// InputAnchor returns the canvas position of a node input handle.
func (l *Layout) InputAnchor(nodeID, handle string) (domain.Point, bool) {
	n, def, ok := l.lookup(nodeID)
	if !ok {
		return domain.Point{}, false
	}
	return InputAnchor(n, def, handle)
}

// OutputAnchor returns the canvas position of a node output handle.
func (l *Layout) OutputAnchor(nodeID, handle string) (domain.Point, bool) {
	n, def, ok := l.lookup(nodeID)
	if !ok {
		return domain.Point{}, false
	}
	return OutputAnchor(n, def, handle)
}

func (l *Layout) lookup(id string) (domain.WorkflowNode, domain.NodeDefinition, bool) {
	n, ok := l.src.Node(id)
	if !ok {
		return n, domain.NodeDefinition{}, false
	}
	def, ok := l.src.Definition(n.Type)
	return n, def, ok
}

// HitTest finds what lies under a canvas point. Nodes are tested topmost first
// (reverse insertion order) and, within a node, handles win over the body.
func (l *Layout) HitTest(p domain.Point) Hit {
	nodes := l.src.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		def, ok := l.src.Definition(n.Type)
		if !ok {
			continue
		}
		for _, port := range def.Outputs {
			a, _ := OutputAnchor(n, def, port.ID)
			if near(a, p) {
				return Hit{Kind: HitOutput, NodeID: n.ID, Handle: port.ID}
			}
		}
		for _, port := range def.Inputs {
			a, _ := InputAnchor(n, def, port.ID)
			if near(a, p) {
				return Hit{Kind: HitInput, NodeID: n.ID, Handle: port.ID}
			}
		}
		if Box(n, def).Contains(p) {
			return Hit{Kind: HitBody, NodeID: n.ID}
		}
	}
	return Hit{Kind: HitNone}
}

func near(a, b domain.Point) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= HandleRadius
}
