package domain

// DataKind describes the kind of value a port carries. It is used for labelling and,
// when strict ports are enabled, for connection checks.
type DataKind string

const (
	KindString DataKind = "string"
	KindObject DataKind = "object"
	KindAny    DataKind = "any"
)

// Compatible reports whether a value of kind k may flow into a port of kind other.
// "any" on either side matches everything.
func (k DataKind) Compatible(other DataKind) bool {
	if k == KindAny || other == KindAny || k == "" || other == "" {
		return true
	}
	return k == other
}

// Port is a named, typed connection point declared on a node definition.
type Port struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Kind DataKind `json:"dataKind" yaml:"dataKind"`
}

// NodeDefinition is the immutable catalog record of a node type.
type NodeDefinition struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Inputs      []Port `json:"inputs" yaml:"inputs"`
	Outputs     []Port `json:"outputs" yaml:"outputs"`
	HasSettings bool   `json:"hasSettings" yaml:"hasSettings"`

	// Defaults seeds the data blob of every new node of this type.
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	// Settings declares the type of each configurable data field, e.g. {"separator": "string"}.
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Input returns the declared input port with the given id.
func (d NodeDefinition) Input(id string) (Port, bool) {
	return findPort(d.Inputs, id)
}

// Output returns the declared output port with the given id.
func (d NodeDefinition) Output(id string) (Port, bool) {
	return findPort(d.Outputs, id)
}

func findPort(ports []Port, id string) (Port, bool) {
	for _, p := range ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// Point is a 2D coordinate, either in canvas space or in screen space depending on context.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// WorkflowNode is a node instance placed on the canvas.
type WorkflowNode struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Position Point          `json:"position" yaml:"position"`
	Data     map[string]any `json:"data" yaml:"data"`
}

// Clone returns a copy of the node whose data map is not shared.
func (n WorkflowNode) Clone() WorkflowNode {
	n.Data = CloneData(n.Data)
	return n
}

// WorkflowEdge is a directed wire from source.sourceHandle (an output) to
// target.targetHandle (an input).
type WorkflowEdge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target" yaml:"target"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
}

// Snapshot is a frozen copy of a graph, in insertion order.
type Snapshot struct {
	Nodes []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges []WorkflowEdge `json:"edges" yaml:"edges"`
}

// ViewportState is the persisted pan/zoom of a canvas.
type ViewportState struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Zoom float64 `json:"zoom" yaml:"zoom"`
}

// Workflow is the durable document of one canvas.
type Workflow struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Viewport ViewportState  `json:"viewport" yaml:"viewport"`
	Nodes    []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges    []WorkflowEdge `json:"edges" yaml:"edges"`
}

// Snapshot returns the graph part of the document.
func (w *Workflow) Snapshot() Snapshot {
	nodes := make([]WorkflowNode, len(w.Nodes))
	for i, n := range w.Nodes {
		nodes[i] = n.Clone()
	}
	edges := make([]WorkflowEdge, len(w.Edges))
	copy(edges, w.Edges)
	return Snapshot{Nodes: nodes, Edges: edges}
}

// Clone returns a copy of the document that shares no nodes, edges or data with w.
func (w *Workflow) Clone() *Workflow {
	snap := w.Snapshot()
	c := *w
	c.Nodes, c.Edges = snap.Nodes, snap.Edges
	return &c
}

// CloneData returns a shallow copy of a data or port bundle. A nil input yields an empty map.
func CloneData(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
