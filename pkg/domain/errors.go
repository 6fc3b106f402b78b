package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a node type is not registered in the catalog.
var ErrUnknownType = errors.New("unknown node type")

// ErrCycleDetected is returned when a run is attempted on a graph that is not a DAG.
var ErrCycleDetected = errors.New("cycle detected")

// ErrNodeExecutionFailed matches every *NodeExecutionError via errors.Is.
var ErrNodeExecutionFailed = errors.New("node execution failed")

// ErrNodeNotFound is returned when an operation references a missing node.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when an operation references a missing edge.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrDuplicateNode is returned when a node id has already been used in the graph.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrUnknownPort is returned in strict mode when a handle is not declared on the definition.
var ErrUnknownPort = errors.New("unknown port")

// ErrIncompatibleConnection is returned in strict mode when port kinds do not match.
var ErrIncompatibleConnection = errors.New("incompatible connection")

// ErrNoExecutor is returned when no executor is registered for a node type.
var ErrNoExecutor = errors.New("no executor registered")

// ErrRunCanceled is returned when the run context is canceled before all nodes ran.
var ErrRunCanceled = errors.New("run canceled")

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("run already in progress")

// ErrWorkflowNotFound is returned when a workflow id cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// NodeExecutionError reports the node that halted a run.
type NodeExecutionError struct {
	NodeID   string
	NodeType string
	Message  string
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q (%s) failed: %s", e.NodeID, e.NodeType, e.Message)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNodeExecutionFailed) hold for every NodeExecutionError.
func (e *NodeExecutionError) Is(target error) bool {
	return target == ErrNodeExecutionFailed
}
