package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// File is the on-disk shape of a catalog file.
type File struct {
	Nodes []domain.NodeDefinition `yaml:"nodes" json:"nodes"`
}

// Parse decodes catalog definitions. format is "json" or "yaml" (the default).
func Parse(data []byte, format string) ([]domain.NodeDefinition, error) {
	var f File
	if strings.EqualFold(format, "json") {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}
	return f.Nodes, nil
}

// LoadFile reads definitions from a YAML or JSON file, chosen by extension.
func LoadFile(path string) ([]domain.NodeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}
	return Parse(data, format)
}

// Extend registers every definition found in the file at path.
func (c *Catalog) Extend(path string) error {
	defs, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
