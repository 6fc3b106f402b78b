package dsl

import "github.com/aretw0/flowcanvas/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.WorkflowNode
	builder *Builder
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Point{X: x, Y: y}
	return n
}

// Set assigns one data field.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.node.Data[key] = value
	return n
}

// Data merges fields into the node data.
func (n *NodeBuilder) Data(data map[string]any) *NodeBuilder {
	for k, v := range data {
		n.node.Data[k] = v
	}
	return n
}

// To wires this node's output port to target's input port.
func (n *NodeBuilder) To(output, target, input string) *NodeBuilder {
	n.builder.connect(n.node.ID, output, target, input)
	return n
}

// From wires source's output port to this node's input port.
func (n *NodeBuilder) From(input, source, output string) *NodeBuilder {
	n.builder.connect(source, output, n.node.ID, input)
	return n
}

// Build returns a copy of the underlying node.
func (n *NodeBuilder) Build() domain.WorkflowNode {
	return n.node.Clone()
}
