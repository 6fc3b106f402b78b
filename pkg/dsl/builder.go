package dsl

import (
	"fmt"

	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
)

// ColumnWidth spaces nodes that were not given a position.
const ColumnWidth = 300

// Builder manages the graph construction.
type Builder struct {
	name  string
	order []string
	nodes map[string]*NodeBuilder
	edges []domain.WorkflowEdge
}

// New creates a new graph builder for a workflow called name.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the id already exists, it returns the existing builder unchanged.
func (b *Builder) Add(id, nodeType string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.WorkflowNode{
			ID:       id,
			Type:     nodeType,
			Position: domain.Point{X: float64(len(b.order) * ColumnWidth)},
			Data:     map[string]any{},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

func (b *Builder) connect(source, sourceHandle, target, targetHandle string) {
	b.edges = append(b.edges, domain.WorkflowEdge{
		ID:           fmt.Sprintf("%s.%s->%s.%s", source, sourceHandle, target, targetHandle),
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	})
}

// Snapshot returns the nodes and edges as declared, without validation.
func (b *Builder) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Nodes: make([]domain.WorkflowNode, 0, len(b.order)),
		Edges: append([]domain.WorkflowEdge(nil), b.edges...),
	}
	for _, id := range b.order {
		snap.Nodes = append(snap.Nodes, b.nodes[id].node.Clone())
	}
	return snap
}

// Graph builds a live graph, applying the same checks as interactive editing.
func (b *Builder) Graph(defs graph.Definitions, opts ...graph.Option) (*graph.Graph, error) {
	g, err := graph.FromSnapshot(defs, b.Snapshot(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph %q: %w", b.name, err)
	}
	return g, nil
}

// Build returns a workflow document whose id is the builder name.
// Node data is merged over the definition defaults.
func (b *Builder) Build(defs graph.Definitions, opts ...graph.Option) (*domain.Workflow, error) {
	g, err := b.Graph(defs, opts...)
	if err != nil {
		return nil, err
	}
	snap := g.Snapshot()
	return &domain.Workflow{
		ID:       b.name,
		Name:     b.name,
		Viewport: domain.ViewportState{Zoom: 1},
		Nodes:    snap.Nodes,
		Edges:    snap.Edges,
	}, nil
}
