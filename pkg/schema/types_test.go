package schema

import (
	"testing"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), 42, true},
		{Int(), 42, false},
		{Int(), int64(42), false},
		{Int(), float64(42), false}, // whole number from JSON
		{Int(), 42.5, true},
		{Int(), "42", true},
		{Float(), 3.14, false},
		{Float(), 3, false},
		{Float(), "3.14", true},
		{Bool(), true, false},
		{Bool(), "true", true},
		{Object(), map[string]any{"url": "x"}, false},
		{Object(), map[string]string{}, false},
		{Object(), []any{}, true},
		{Object(), nil, true},
		{Any(), nil, false},
		{Any(), struct{}{}, false},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestListType(t *testing.T) {
	typ := List(Int())
	if typ.Name() != "[int]" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "[int]")
	}
	if err := typ.Validate([]any{1, 2.0, int8(3)}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := typ.Validate([]any{1, "two"}); err == nil {
		t.Error("Validate() should reject a string element")
	}
	if err := typ.Validate(1); err == nil {
		t.Error("Validate() should reject a scalar")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"string", "string", false},
		{" float ", "float", false},
		{"[string]", "[string]", false},
		{"[[int]]", "[[int]]", false},
		{"object", "object", false},
		{"[]", "", true},
		{"uuid", "", true},
		{"[uuid]", "", true},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			continue
		}
		if err == nil && typ.Name() != tt.want {
			t.Errorf("ParseType(%q).Name() = %q, want %q", tt.expr, typ.Name(), tt.want)
		}
	}
}

func TestForKind(t *testing.T) {
	if ForKind(domain.KindString).Name() != "string" {
		t.Error("string kind should map to string type")
	}
	if ForKind(domain.KindObject).Name() != "object" {
		t.Error("object kind should map to object type")
	}
	if ForKind(domain.KindAny).Name() != "any" || ForKind("").Name() != "any" {
		t.Error("any and empty kinds should map to any")
	}
}
