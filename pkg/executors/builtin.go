// Package executors provides the executors of the built-in node types.
package executors

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/registry"
)

// TextConfig is the data of a text node.
type TextConfig struct {
	Text string `mapstructure:"text"`
}

// JoinConfig is the data of a join node.
type JoinConfig struct {
	Separator string `mapstructure:"separator"`
}

// TransformConfig is the data of a transform node.
type TransformConfig struct {
	Mode string `mapstructure:"mode"`
}

// Decode copies a node data blob into a typed config. Scalars are converted
// leniently ("3" into an int, 1 into "1") since data often round-trips through JSON.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("invalid node data: %w", err)
	}
	return nil
}

// Register adds the executors of the plain built-in types (text, echo, sink, join, transform).
func Register(r *registry.Registry) {
	r.Register(catalog.TypeText, Text)
	r.Register(catalog.TypeEcho, Echo)
	r.Register(catalog.TypeSink, Sink)
	r.Register(catalog.TypeJoin, Join)
	r.Register(catalog.TypeTransform, Transform)
}

// Text emits data.text on its "text" output.
func Text(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg TextConfig
	if err := Decode(data, &cfg); err != nil {
		return nil, err
	}
	return map[string]any{"text": cfg.Text}, nil
}

// Echo copies "in" to "out". An unbound input yields no output.
func Echo(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	v, ok := inputs["in"]
	if !ok {
		return map[string]any{}, nil
	}
	return map[string]any{"out": v}, nil
}

// Sink consumes "in" and logs it.
func Sink(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	logging.FromContext(ctx).InfoContext(ctx, "sink received", "value", inputs["in"])
	return map[string]any{}, nil
}

// Join concatenates "a" and "b" with data.separator.
func Join(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg JoinConfig
	if err := Decode(data, &cfg); err != nil {
		return nil, err
	}
	var parts []string
	for _, key := range []string{"a", "b"} {
		if v, ok := inputs[key]; ok && v != nil {
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return map[string]any{"out": strings.Join(parts, cfg.Separator)}, nil
}

// Transform applies data.mode (upper, lower or trim) to the string on "in".
func Transform(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg TransformConfig
	if err := Decode(data, &cfg); err != nil {
		return nil, err
	}
	in, ok := inputs["in"].(string)
	if !ok {
		return nil, fmt.Errorf("transform expects a string input, got %T", inputs["in"])
	}
	switch strings.ToLower(cfg.Mode) {
	case "upper", "":
		return map[string]any{"out": strings.ToUpper(in)}, nil
	case "lower":
		return map[string]any{"out": strings.ToLower(in)}, nil
	case "trim":
		return map[string]any{"out": strings.TrimSpace(in)}, nil
	default:
		return nil, fmt.Errorf("unknown transform mode %q", cfg.Mode)
	}
}
