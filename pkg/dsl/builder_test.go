package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New("greeting")

	b.Add("prompt", catalog.TypeText).
		Set("text", "hello").
		To("text", "shout", "in")

	// Forward reference: "done" is added after the edge naming it.
	b.Add("shout", catalog.TypeTransform).
		At(400, 80).
		To("out", "done", "in")

	b.Add("done", catalog.TypeSink)

	wf, err := b.Build(catalog.Builtin(), graph.WithStrictPorts())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if wf.ID != "greeting" || wf.Viewport.Zoom != 1 {
		t.Errorf("unexpected document header: %+v", wf)
	}
	if len(wf.Nodes) != 3 || wf.Nodes[0].ID != "prompt" || wf.Nodes[2].ID != "done" {
		t.Fatalf("nodes out of order: %+v", wf.Nodes)
	}
	if wf.Nodes[1].Data["mode"] != "upper" {
		t.Errorf("expected definition default mode, got %v", wf.Nodes[1].Data["mode"])
	}
	if wf.Nodes[1].Position != (domain.Point{X: 400, Y: 80}) {
		t.Errorf("At() ignored: %+v", wf.Nodes[1].Position)
	}
	if wf.Nodes[2].Position.X != 2*ColumnWidth {
		t.Errorf("expected automatic column layout, got %+v", wf.Nodes[2].Position)
	}
	if len(wf.Edges) != 2 || wf.Edges[0].ID != "prompt.text->shout.in" {
		t.Errorf("unexpected edges: %+v", wf.Edges)
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New("x")
	first := b.Add("a", catalog.TypeText).Set("text", "one")
	second := b.Add("a", catalog.TypeEcho)

	if first != second {
		t.Fatal("Add() should return the existing builder")
	}
	if got := second.Build().Type; got != catalog.TypeText {
		t.Errorf("type changed to %q", got)
	}
}

func TestBuilder_Errors(t *testing.T) {
	b := New("broken")
	b.Add("a", catalog.TypeText).To("text", "ghost", "in")
	if _, err := b.Build(catalog.Builtin()); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	b = New("unknown")
	b.Add("a", "teleport")
	if _, err := b.Build(catalog.Builtin()); !errors.Is(err, domain.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}

	b = New("mismatch")
	b.Add("img", catalog.TypeGenerateImage).To("image", "t", "in")
	b.Add("t", catalog.TypeTransform)
	if _, err := b.Build(catalog.Builtin(), graph.WithStrictPorts()); !errors.Is(err, domain.ErrIncompatibleConnection) {
		t.Errorf("expected ErrIncompatibleConnection, got %v", err)
	}
}

func TestBuilder_SnapshotIsDetached(t *testing.T) {
	b := New("x")
	b.Add("a", catalog.TypeText).Set("text", "one")
	snap := b.Snapshot()
	snap.Nodes[0].Data["text"] = "two"

	if b.Snapshot().Nodes[0].Data["text"] != "one" {
		t.Error("Snapshot() must not share data with the builder")
	}
}
