package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunWorkflowStoreContract(t, store)
}

func TestMemoryStore_SeedIsCopied(t *testing.T) {
	wf := &domain.Workflow{
		ID:    "seeded",
		Nodes: []domain.WorkflowNode{{ID: "a", Type: "text", Data: map[string]any{"text": "x"}}},
	}
	store := memory.NewStore(wf)
	wf.Nodes[0].Data["text"] = "changed"

	loaded, err := store.Load(context.Background(), "seeded")
	require.NoError(t, err)
	assert.Equal(t, "x", loaded.Nodes[0].Data["text"])

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"seeded"}, ids)
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	err := memory.NewStore().Save(context.Background(), &domain.Workflow{})
	assert.Error(t, err)
}
