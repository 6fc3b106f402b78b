package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataKind_Compatible(t *testing.T) {
	assert.True(t, KindString.Compatible(KindString))
	assert.True(t, KindString.Compatible(KindAny))
	assert.True(t, KindAny.Compatible(KindObject))
	assert.False(t, KindString.Compatible(KindObject))
}

func TestNodeExecutionError_Is(t *testing.T) {
	cause := errors.New("boom")
	var err error = &NodeExecutionError{NodeID: "b", NodeType: "echo", Message: "boom", Err: cause}
	wrapped := fmt.Errorf("run: %w", err)

	assert.ErrorIs(t, wrapped, ErrNodeExecutionFailed)
	assert.ErrorIs(t, wrapped, cause)

	var nodeErr *NodeExecutionError
	assert.True(t, errors.As(wrapped, &nodeErr))
	assert.Equal(t, "b", nodeErr.NodeID)
}

func TestRunResult_CloneIsIndependent(t *testing.T) {
	r := NewRunResult(Snapshot{Nodes: []WorkflowNode{{ID: "a"}, {ID: "b"}}})
	r.Outputs["a"] = map[string]any{"text": "hi"}

	c := r.Clone()
	c.Statuses["a"] = StatusCompleted
	c.Outputs["a"]["text"] = "changed"

	assert.Equal(t, StatusIdle, r.Status("a"))
	assert.Equal(t, "hi", r.Outputs["a"]["text"])
	assert.Equal(t, StatusIdle, r.Status("missing"))
}

func TestWorkflow_SnapshotCopiesData(t *testing.T) {
	wf := &Workflow{
		Nodes: []WorkflowNode{{ID: "a", Type: "text", Data: map[string]any{"text": "hi"}}},
		Edges: []WorkflowEdge{{ID: "e1", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"}},
	}
	snap := wf.Snapshot()
	snap.Nodes[0].Data["text"] = "changed"
	snap.Edges[0].Target = "c"

	assert.Equal(t, "hi", wf.Nodes[0].Data["text"])
	assert.Equal(t, "b", wf.Edges[0].Target)
}
