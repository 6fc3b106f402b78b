package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
)

func TestWithLock_ReleasesEntries(t *testing.T) {
	ws := New(memory.NewStore(), catalog.Builtin(), nil)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("wf-%d", i)
		_ = ws.Put(ctx, &domain.Workflow{ID: id})
		_ = ws.Delete(ctx, id)
	}
	assert.Zero(t, ws.locks.len(), "lock entries leaked")
}
