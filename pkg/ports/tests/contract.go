package tests

import (
	"context"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/ports"
)

// ExecutorCase is one invocation checked by NodeExecutorContractTest.
type ExecutorCase struct {
	Inputs map[string]any
	Data   map[string]any
}

// NodeExecutorContractTest is a reusable test suite that verifies if an executor complies
// with ports.NodeExecutor: outputs only use declared output port ids, and unknown types fail.
func NodeExecutorContractTest(t *testing.T, exec ports.NodeExecutor, defs []domain.NodeDefinition, cases map[string]ExecutorCase) {
	t.Helper()
	ctx := context.Background()

	// 1. Declared outputs only
	t.Run("Outputs_Declared", func(t *testing.T) {
		for _, def := range defs {
			c, ok := cases[def.Type]
			if !ok {
				continue
			}
			out, err := exec.Execute(ctx, def.Type, c.Inputs, c.Data)
			if err != nil {
				t.Fatalf("unexpected error executing %s: %v", def.Type, err)
			}
			for key := range out {
				if _, ok := def.Output(key); !ok {
					t.Errorf("%s produced undeclared output %q", def.Type, key)
				}
			}
		}
	})

	// 2. Unknown type
	t.Run("Execute_UnknownType", func(t *testing.T) {
		_, err := exec.Execute(ctx, "non-existent-type", nil, nil)
		if err == nil {
			t.Error("expected error for unknown type, got nil")
		}
	})
}
