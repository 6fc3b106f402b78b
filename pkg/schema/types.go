package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Type checks values of one setting or port kind.
type Type interface {
	// Name returns the type expression, e.g. "string" or "[int]".
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type scalar struct {
	name  string
	check func(any) bool
}

func (s scalar) Name() string { return s.name }

func (s scalar) Validate(value any) error {
	if !s.check(value) {
		return fmt.Errorf("expected %s, got %T", s.name, value)
	}
	return nil
}

type list struct {
	elem Type
}

func (l list) Name() string { return "[" + l.elem.Name() + "]" }

func (l list) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", l.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := l.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// isInt accepts whole floats because JSON decodes every number as float64.
func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isObject(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Map
}

var scalars = map[string]Type{
	"string": scalar{"string", isString},
	"int":    scalar{"int", isInt},
	"float":  scalar{"float", isFloat},
	"bool":   scalar{"bool", isBool},
	"object": scalar{"object", isObject},
	"any":    scalar{"any", func(any) bool { return true }},
}

// String, Int, Float, Bool, Object and Any return the built-in types.
func String() Type { return scalars["string"] }
func Int() Type    { return scalars["int"] }
func Float() Type  { return scalars["float"] }
func Bool() Type   { return scalars["bool"] }
func Object() Type { return scalars["object"] }
func Any() Type    { return scalars["any"] }

// List returns the type of lists whose elements are elem.
func List(elem Type) Type { return list{elem: elem} }

// ForKind returns the type of values carried by a port of the given kind.
func ForKind(k domain.DataKind) Type {
	switch k {
	case domain.KindString:
		return String()
	case domain.KindObject:
		return Object()
	default:
		return Any()
	}
}

// ParseType converts a type expression into a Type.
func ParseType(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") && len(expr) > 2 {
		elem, err := ParseType(expr[1 : len(expr)-1])
		if err != nil {
			return nil, err
		}
		return List(elem), nil
	}
	if t, ok := scalars[expr]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unsupported type: %q", expr)
}
