package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractWorkflow(id string) *domain.Workflow {
	return &domain.Workflow{
		ID:       id,
		Name:     "contract",
		Viewport: domain.ViewportState{X: 12, Y: -4, Zoom: 1.5},
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: "text", Position: domain.Point{X: 10, Y: 20}, Data: map[string]any{"text": "hello", "count": 42}},
			{ID: "b", Type: "echo", Position: domain.Point{X: 300, Y: 20}, Data: map[string]any{}},
		},
		Edges: []domain.WorkflowEdge{
			{ID: "e1", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"},
		},
	}
}

// RunWorkflowStoreContract runs a suite of tests to verify that a WorkflowStore implementation
// adheres to the defined interface contract.
func RunWorkflowStoreContract(t *testing.T, store WorkflowStore) {
	ctx := context.Background()
	workflowID := "contract-test-workflow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		wf := contractWorkflow(workflowID)

		err := store.Save(ctx, wf)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, wf.Name, loaded.Name)
		assert.Equal(t, wf.Viewport, loaded.Viewport)
		assert.Equal(t, wf.Edges, loaded.Edges)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "a", loaded.Nodes[0].ID, "node order must be preserved")
		assert.Equal(t, wf.Nodes[0].Position, loaded.Nodes[0].Position)
		assert.Equal(t, "hello", loaded.Nodes[0].Data["text"])
		// JSON persistence converts ints to float64; only check existence.
		assert.NotNil(t, loaded.Nodes[0].Data["count"])
	})

	t.Run("Load returns a detached copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		loaded.Nodes[0].Data["text"] = "mutated"

		again, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		assert.Equal(t, "hello", again.Nodes[0].Data["text"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, contractWorkflow(workflowID))
		require.NoError(t, err)

		err = store.Delete(ctx, workflowID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound, "Load after Delete should return ErrWorkflowNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workflowID + "-1"
		id2 := workflowID + "-2"
		_ = store.Save(ctx, contractWorkflow(id1))
		_ = store.Save(ctx, contractWorkflow(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
