// Package graph implements the mutable node/edge model of a workflow canvas.
//
// A Graph keeps nodes and edges in insertion order and preserves two structural
// invariants on every mutation: node ids are never reused, and each input port
// (target, targetHandle) has at most one incoming edge. Connecting a second wire
// to an input replaces the first one.
//
// A Graph is not safe for concurrent use. Callers that share a graph across
// goroutines (see package workspace) serialize access themselves.
package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Definitions resolves node types to their catalog definitions.
// *catalog.Catalog satisfies it.
type Definitions interface {
	Get(nodeType string) (domain.NodeDefinition, bool)
}

// IDFunc generates a fresh identifier with the given prefix.
type IDFunc func(prefix string) string

// DefaultID returns prefix-<uuid>.
func DefaultID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Option configures a Graph.
type Option func(*Graph)

// WithStrictPorts enables port checks on Connect: handles must be declared on the
// definitions and their kinds must be compatible.
func WithStrictPorts() Option {
	return func(g *Graph) {
		g.strict = true
	}
}

// WithIDFunc replaces the id generator used for nodes and edges.
func WithIDFunc(fn IDFunc) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// Graph holds node instances and the edges between them.
type Graph struct {
	defs   Definitions
	strict bool
	newID  IDFunc

	order []string
	nodes map[string]*domain.WorkflowNode
	edges []domain.WorkflowEdge

	// used remembers every node id the graph has held so that ids stay unique
	// for the lifetime of the graph, even after removal.
	used map[string]struct{}
}

// New creates an empty graph that resolves types through defs.
func New(defs Definitions, opts ...Option) *Graph {
	g := &Graph{
		defs:  defs,
		newID: DefaultID,
		nodes: make(map[string]*domain.WorkflowNode),
		used:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromSnapshot rebuilds a graph from a snapshot, validating every node and edge.
func FromSnapshot(defs Definitions, snap domain.Snapshot, opts ...Option) (*Graph, error) {
	g := New(defs, opts...)
	for _, n := range snap.Nodes {
		if err := g.AddNodeWithID(n.ID, n.Type, n.Position, n.Data); err != nil {
			return nil, err
		}
	}
	for _, e := range snap.Edges {
		if _, err := g.ConnectEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Strict reports whether port checks are enabled.
func (g *Graph) Strict() bool { return g.strict }

// Definition returns the catalog definition of a node type.
func (g *Graph) Definition(nodeType string) (domain.NodeDefinition, bool) {
	return g.defs.Get(nodeType)
}

// AddNode places a new node of the given type and returns its id.
// The node data starts as a copy of the definition defaults.
func (g *Graph) AddNode(nodeType string, pos domain.Point) (string, error) {
	def, ok := g.defs.Get(nodeType)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownType, nodeType)
	}
	id := g.newID(nodeType)
	for g.has(id) {
		id = g.newID(nodeType)
	}
	g.insert(domain.WorkflowNode{
		ID:       id,
		Type:     nodeType,
		Position: pos,
		Data:     domain.CloneData(def.Defaults),
	})
	return id, nil
}

// AddNodeWithID places a node with a caller-chosen id, as when restoring a document.
// data is merged over the definition defaults.
func (g *Graph) AddNodeWithID(id, nodeType string, pos domain.Point, data map[string]any) error {
	if id == "" {
		return fmt.Errorf("node of type %q: id is required", nodeType)
	}
	def, ok := g.defs.Get(nodeType)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownType, nodeType)
	}
	if g.has(id) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, id)
	}
	merged := domain.CloneData(def.Defaults)
	for k, v := range data {
		merged[k] = v
	}
	g.insert(domain.WorkflowNode{ID: id, Type: nodeType, Position: pos, Data: merged})
	return nil
}

func (g *Graph) has(id string) bool {
	_, ok := g.used[id]
	return ok
}

func (g *Graph) insert(n domain.WorkflowNode) {
	g.used[n.ID] = struct{}{}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// Connect wires source.sourceHandle to target.targetHandle and returns the new edge id.
// Any edge already ending at (target, targetHandle) is removed first.
func (g *Graph) Connect(source, sourceHandle, target, targetHandle string) (string, error) {
	return g.ConnectEdge(domain.WorkflowEdge{
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	})
}

// ConnectEdge is Connect for a prepared edge. An empty ID is generated.
func (g *Graph) ConnectEdge(e domain.WorkflowEdge) (string, error) {
	src, ok := g.nodes[e.Source]
	if !ok {
		return "", fmt.Errorf("%w: source %s", domain.ErrNodeNotFound, e.Source)
	}
	dst, ok := g.nodes[e.Target]
	if !ok {
		return "", fmt.Errorf("%w: target %s", domain.ErrNodeNotFound, e.Target)
	}
	if g.strict {
		if err := g.checkPorts(src, e.SourceHandle, dst, e.TargetHandle); err != nil {
			return "", err
		}
	}
	if e.ID == "" {
		e.ID = g.newID("edge")
	}

	kept := g.edges[:0]
	for _, old := range g.edges {
		if old.ID == e.ID {
			continue
		}
		if old.Target == e.Target && old.TargetHandle == e.TargetHandle {
			continue
		}
		kept = append(kept, old)
	}
	g.edges = append(kept, e)
	return e.ID, nil
}

func (g *Graph) checkPorts(src *domain.WorkflowNode, sourceHandle string, dst *domain.WorkflowNode, targetHandle string) error {
	srcDef, _ := g.defs.Get(src.Type)
	dstDef, _ := g.defs.Get(dst.Type)

	out, ok := srcDef.Output(sourceHandle)
	if !ok {
		return fmt.Errorf("%w: %s has no output %q", domain.ErrUnknownPort, src.Type, sourceHandle)
	}
	in, ok := dstDef.Input(targetHandle)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, dst.Type, targetHandle)
	}
	if !out.Kind.Compatible(in.Kind) {
		return fmt.Errorf("%w: %s.%s (%s) -> %s.%s (%s)", domain.ErrIncompatibleConnection,
			src.ID, sourceHandle, out.Kind, dst.ID, targetHandle, in.Kind)
	}
	return nil
}

// Disconnect removes an edge by id.
func (g *Graph) Disconnect(edgeID string) error {
	for i, e := range g.edges {
		if e.ID == edgeID {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edgeID)
}

// UpdateNodeData shallow-merges partial into the node data.
func (g *Graph) UpdateNodeData(id string, partial map[string]any) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if n.Data == nil {
		n.Data = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		n.Data[k] = v
	}
	return nil
}

// MoveNode sets the canvas position of a node.
func (g *Graph) MoveNode(id string, pos domain.Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.Position = pos
	return nil
}

// TranslateNode moves a node by a canvas-space delta.
func (g *Graph) TranslateNode(id string, delta domain.Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.Position = n.Position.Add(delta)
	return nil
}

// Node returns a copy of a node.
func (g *Graph) Node(id string) (domain.WorkflowNode, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return domain.WorkflowNode{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []domain.WorkflowNode {
	out := make([]domain.WorkflowNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []domain.WorkflowEdge {
	return append([]domain.WorkflowEdge(nil), g.edges...)
}

// IncomingEdge returns the edge feeding (target, targetHandle), if any.
func (g *Graph) IncomingEdge(target, targetHandle string) (domain.WorkflowEdge, bool) {
	for _, e := range g.edges {
		if e.Target == target && e.TargetHandle == targetHandle {
			return e, true
		}
	}
	return domain.WorkflowEdge{}, false
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Snapshot returns a deep copy of the graph suitable for a run.
func (g *Graph) Snapshot() domain.Snapshot {
	return domain.Snapshot{Nodes: g.Nodes(), Edges: g.Edges()}
}
