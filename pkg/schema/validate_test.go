package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
)

func validWorkflow() *domain.Workflow {
	return &domain.Workflow{
		ID: "wf",
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: catalog.TypeText, Data: map[string]any{"text": "hi"}},
			{ID: "b", Type: catalog.TypeTransform, Data: map[string]any{"mode": "lower"}},
			{ID: "c", Type: catalog.TypeSink},
		},
		Edges: []domain.WorkflowEdge{
			{ID: "e1", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"},
			{ID: "e2", Source: "b", SourceHandle: "out", Target: "c", TargetHandle: "in"},
		},
	}
}

func paths(err error) []string {
	var out []string
	for _, e := range ValidationErrors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve.Path)
		}
	}
	return out
}

func TestValidate_Success(t *testing.T) {
	if err := Validate(validWorkflow(), catalog.Builtin(), Strict()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes,
		domain.WorkflowNode{ID: "a", Type: catalog.TypeEcho},
		domain.WorkflowNode{ID: "x", Type: "teleport"},
		domain.WorkflowNode{ID: "j", Type: catalog.TypeJoin, Data: map[string]any{"separator": 3}},
	)
	wf.Edges = append(wf.Edges,
		domain.WorkflowEdge{ID: "e1", Source: "a", SourceHandle: "text", Target: "ghost", TargetHandle: "in"},
		domain.WorkflowEdge{ID: "e4", Source: "a", SourceHandle: "text", Target: "c", TargetHandle: "in"},
	)

	err := Validate(wf, catalog.Builtin())
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	if _, ok := err.(*AggregateError); !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	want := []string{
		"nodes[3].id",
		"nodes[4].type",
		"nodes[5].data.separator",
		"edges[2].id",
		"edges[2].target",
		"edges[3].targetHandle",
	}
	got := paths(err)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", got, want)
	}

	if !errors.Is(err, domain.ErrUnknownType) {
		t.Error("errors.Is(err, ErrUnknownType) should hold")
	}
	if !errors.Is(err, domain.ErrDuplicateNode) {
		t.Error("errors.Is(err, ErrDuplicateNode) should hold")
	}
	if !strings.Contains(err.Error(), "6 validation errors") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidate_StrictPorts(t *testing.T) {
	wf := &domain.Workflow{
		Nodes: []domain.WorkflowNode{
			{ID: "img", Type: catalog.TypeGenerateImage},
			{ID: "tr", Type: catalog.TypeTransform},
		},
		Edges: []domain.WorkflowEdge{
			{ID: "e1", Source: "img", SourceHandle: "image", Target: "tr", TargetHandle: "in"},
			{ID: "e2", Source: "tr", SourceHandle: "in", Target: "img", TargetHandle: "nope"},
		},
	}

	if err := Validate(wf, catalog.Builtin()); err != nil {
		t.Fatalf("permissive Validate() error = %v, want nil", err)
	}

	err := Validate(wf, catalog.Builtin(), Strict())
	if !errors.Is(err, domain.ErrIncompatibleConnection) {
		t.Errorf("expected ErrIncompatibleConnection, got %v", err)
	}
	if !errors.Is(err, domain.ErrUnknownPort) {
		t.Errorf("expected ErrUnknownPort, got %v", err)
	}
	if n := len(ValidationErrors(err)); n != 3 {
		t.Errorf("got %d errors, want 3: %v", n, err)
	}
}

func TestValidateData(t *testing.T) {
	s, err := ParseSettings(map[string]string{"temperature": "float", "tags": "[string]"})
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}

	errs := ValidateData(s, map[string]any{"temperature": "hot", "extra": 1}, "data")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.HasPrefix(errs[0].Error(), "data.temperature:") {
		t.Errorf("unexpected error %q", errs[0])
	}

	if errs := ValidateData(s, map[string]any{}, "data"); len(errs) != 0 {
		t.Errorf("missing fields should be allowed, got %v", errs)
	}

	if _, err := ParseSettings(map[string]string{"x": "complex"}); err == nil {
		t.Error("ParseSettings() should reject unknown types")
	}
}

func TestValidationErrors_NonAggregate(t *testing.T) {
	if ValidationErrors(errors.New("plain")) != nil {
		t.Error("ValidationErrors() should be nil for a plain error")
	}
}
