package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/persistence/middleware"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{"password", "(?i)api_?key"})
	if err != nil {
		t.Fatalf("NewRedactMiddleware failed: %v", err)
	}
	secure := mw(underlying)
	ctx := context.Background()

	wf := &domain.Workflow{
		ID: "redact",
		Nodes: []domain.WorkflowNode{{
			ID:   "a",
			Type: "generate-text",
			Data: map[string]any{
				"prompt":        "hello",
				"user_password": "secret123",
				"auth": map[string]any{
					"region": "eu",
					"ApiKey": "sk-123",
				},
			},
		}},
	}
	if err := secure.Save(ctx, wf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if wf.Nodes[0].Data["user_password"] != "secret123" {
		t.Error("Middleware modified the caller's workflow")
	}

	stored, err := underlying.Load(ctx, "redact")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	data := stored.Nodes[0].Data
	if data["prompt"] != "hello" {
		t.Error("prompt shouldn't be masked")
	}
	if data["user_password"] != middleware.Mask {
		t.Errorf("password should be masked, got: %v", data["user_password"])
	}
	auth := data["auth"].(map[string]any)
	if auth["ApiKey"] != middleware.Mask {
		t.Errorf("nested key should be masked, got: %v", auth["ApiKey"])
	}
	if auth["region"] != "eu" {
		t.Error("region shouldn't be masked")
	}
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactMiddleware([]string{"("}); err == nil {
		t.Fatal("Expected error for invalid pattern")
	}
}

func TestChain_RedactsBeforeEncrypting(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware([]string{"token"})
	if err != nil {
		t.Fatal(err)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, redact, encrypt)
	ctx := context.Background()

	wf := &domain.Workflow{ID: "chain", Nodes: []domain.WorkflowNode{
		{ID: "a", Type: "text", Data: map[string]any{"text": "x", "token": "t"}},
	}}
	if err := store.Save(ctx, wf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "chain")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Nodes[0].Data["token"] != middleware.Mask {
		t.Errorf("token should be masked, got %v", loaded.Nodes[0].Data["token"])
	}
	if loaded.Nodes[0].Data["text"] != "x" {
		t.Errorf("text should survive, got %v", loaded.Nodes[0].Data["text"])
	}
}
