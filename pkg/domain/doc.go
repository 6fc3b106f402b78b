/*
Package domain contains the core data model of the flowcanvas editor.

It defines the static node catalog records, the mutable workflow entities placed on the
canvas, and the ephemeral execution state produced by a run. The package is kept pure
and free of I/O so that every other layer (graph model, scheduler, adapters) can share it.

# Key Entities

  - NodeDefinition: the catalog description of a node type and its typed ports.
  - WorkflowNode: a placed, positioned and configured instance of a definition.
  - WorkflowEdge: a directed wire from an output port to an input port.
  - Workflow: the durable document (nodes, edges, viewport) of one canvas.
  - RunResult: per-node status, inputs and outputs recorded by one run.
*/
package domain
