/*
Package flowcanvas is the core of a visual workflow editor: a catalog of node
types, a graph of typed nodes and edges, a pannable and zoomable canvas with a
pointer state machine, and a scheduler that runs the graph in dependency order.

# Concept

A workflow is a directed graph. Each node has a type from the catalog, a
position on the canvas and a free-form data blob. Edges connect an output port
of one node to an input port of another, and an input port accepts at most one
edge. Running the graph orders the nodes with Kahn's algorithm, feeds each
node the outputs of its upstream nodes and stops at the first failure.

The Editor ties the pieces together for embedding hosts. Lower level packages
can be used on their own:

  - pkg/catalog: node definitions, built-in and loaded from YAML or JSON.
  - pkg/graph: the editable graph model.
  - pkg/viewport, pkg/layout and pkg/interaction: canvas geometry and input.
  - pkg/scene: render records for a presentation layer.
  - pkg/scheduler and pkg/registry: execution.
  - pkg/workspace: persisted workflows with locking and run history.

# Usage

	ed := flowcanvas.New(flowcanvas.WithStrictPorts())

	src, _ := ed.AddNode(catalog.TypeText, domain.Point{})
	dst, _ := ed.AddNode(catalog.TypeTransform, domain.Point{X: 300})
	_ = ed.UpdateNodeData(src, map[string]any{"text": "hello"})
	_, _ = ed.Connect(src, "text", dst, "in")

	result, err := ed.Run(ctx)

Pointer input is fed through Editor.Handle, and Editor.Scene returns what to
draw for the current frame.
*/
package flowcanvas
