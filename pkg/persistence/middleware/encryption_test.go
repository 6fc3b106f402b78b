package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/persistence/middleware"
	"github.com/aretw0/flowcanvas/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secretWorkflow(id string) *domain.Workflow {
	return &domain.Workflow{
		ID:   id,
		Name: "secret",
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: "text", Data: map[string]any{"text": "my-secret-sauce"}},
			{ID: "b", Type: "sink", Position: domain.Point{X: 300}, Data: map[string]any{}},
		},
		Edges: []domain.WorkflowEdge{
			{ID: "a.text->b.in", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"},
		},
	}
}

func encrypted(t *testing.T, next ports.WorkflowStore, cfg middleware.EncryptionConfig) ports.WorkflowStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware failed: %v", err)
	}
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	wf := secretWorkflow("wf")
	if err := secure.Save(ctx, wf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if wf.Nodes[0].Data["text"] != "my-secret-sauce" {
		t.Fatal("Save modified the caller's workflow")
	}

	// Data is sealed at rest, structure is not.
	stored, err := underlying.Load(ctx, "wf")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if _, ok := stored.Nodes[0].Data["text"]; ok {
		t.Fatal("Expected node data to be hidden")
	}
	if _, ok := stored.Nodes[0].Data[middleware.EnvelopeKey]; !ok {
		t.Fatal("Expected envelope in node data")
	}
	if len(stored.Edges) != 1 || stored.Nodes[1].Position.X != 300 {
		t.Fatal("Expected edges and positions to stay readable")
	}

	loaded, err := secure.Load(ctx, "wf")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.Nodes[0].Data["text"] != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded.Nodes[0].Data["text"])
	}
	if loaded.Nodes[1].Data == nil {
		t.Error("Expected empty data to decode as an empty map")
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	if err := secureOld.Save(ctx, secretWorkflow("rotation")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureNew := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := secureNew.Load(ctx, "rotation")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.Nodes[0].Data["text"] != "my-secret-sauce" {
		t.Errorf("Decryption with fallback key failed")
	}

	if err := secureNew.Save(ctx, loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := secureOld.Load(ctx, "rotation"); err == nil {
		t.Error("Expected failure when loading new-key data with the old key only")
	}
}

func TestEncryptionMiddleware_RefusesPlainDocuments(t *testing.T) {
	underlying := memory.NewStore(secretWorkflow("plain"))
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	if _, err := secure.Load(context.Background(), "plain"); err == nil {
		t.Fatal("Expected plain document to be refused")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")}); err == nil {
		t.Error("Expected error for invalid key size")
	}
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	}); err == nil {
		t.Error("Expected error for invalid fallback key size")
	}
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if string(parsed) != string(key) {
		t.Error("ParseKey returned a different key")
	}

	if _, err := middleware.ParseKey("not base64!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
	if _, err := middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("Expected error for short key")
	}
}
