package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything but .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a workflow document.
func Decode(data []byte, format Format) (*domain.Workflow, error) {
	var wf domain.Workflow
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("failed to parse workflow json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("failed to parse workflow yaml: %w", err)
		}
	}
	normalize(&wf)
	return &wf, nil
}

// Encode serializes a workflow document.
func Encode(wf *domain.Workflow, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(wf, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return nil, fmt.Errorf("failed to encode workflow yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads a workflow document from disk.
// A document without an id takes the file name (without extension).
func LoadFile(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}
	wf, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if wf.ID == "" {
		base := filepath.Base(path)
		wf.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return wf, nil
}

// normalize fills the zero values a hand-written document may leave out.
func normalize(wf *domain.Workflow) {
	if wf.Viewport.Zoom == 0 {
		wf.Viewport.Zoom = 1
	}
	for i := range wf.Nodes {
		if wf.Nodes[i].Data == nil {
			wf.Nodes[i].Data = map[string]any{}
		}
	}
	for i, e := range wf.Edges {
		if e.ID == "" {
			wf.Edges[i].ID = fmt.Sprintf("%s.%s->%s.%s", e.Source, e.SourceHandle, e.Target, e.TargetHandle)
		}
	}
}
