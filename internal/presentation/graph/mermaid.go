package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Definitions resolves node types for labels and shapes. May be nil.
type Definitions interface {
	Get(nodeType string) (domain.NodeDefinition, bool)
}

// statusStyles are applied when a run result is supplied. Text is forced black
// for contrast on both light and dark themes.
var statusStyles = []struct {
	status domain.ExecutionStatus
	style  string
}{
	{domain.StatusCompleted, "fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000"},
	{domain.StatusFailed, "fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000"},
	{domain.StatusRunning, "fill:#fff8e1,stroke:#f9a825,stroke-width:3px,color:#000"},
	{domain.StatusIdle, "fill:#f5f5f5,stroke:#9e9e9e,color:#000"},
}

// GenerateMermaid produces a left-to-right Mermaid flowchart of a graph snapshot.
// Node shapes follow the definition:
//   - no inputs (a source): ([Stadium])
//   - generate-*: [[Subroutine]]
//   - no outputs (a sink): [/Parallelogram/]
//   - otherwise: [Rectangle]
//
// Edges are labelled "sourceHandle -> targetHandle". When result is not nil each
// node gets a class named after its status.
func GenerateMermaid(snap domain.Snapshot, defs Definitions, result *domain.RunResult) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range snap.Nodes {
		label := node.ID
		opener, closer := "[", "]"
		if defs != nil {
			if def, ok := defs.Get(node.Type); ok {
				label = fmt.Sprintf("%s<br/><small>%s</small>", escape(def.Name), escape(node.ID))
				opener, closer = shape(def)
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, label, closer)
	}

	for _, e := range snap.Edges {
		fmt.Fprintf(&sb, "    %s -- \"%s -> %s\" --> %s\n",
			sanitizeMermaidID(e.Source), escape(e.SourceHandle), escape(e.TargetHandle), sanitizeMermaidID(e.Target))
	}

	if result != nil {
		sb.WriteString("\n    %% Run Status\n")
		for _, s := range statusStyles {
			fmt.Fprintf(&sb, "    classDef %s %s;\n", s.status, s.style)
		}
		for _, node := range snap.Nodes {
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(node.ID), result.Status(node.ID))
		}
	}

	return sb.String()
}

func shape(def domain.NodeDefinition) (string, string) {
	switch {
	case strings.HasPrefix(def.Type, "generate-"):
		return "[[", "]]"
	case len(def.Inputs) == 0:
		return "([", "])"
	case len(def.Outputs) == 0:
		return "[/", "/]"
	}
	return "[", "]"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
