package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// Definitions resolves display names for node types.
type Definitions interface {
	Get(nodeType string) (domain.NodeDefinition, bool)
}

var statusIcons = map[domain.ExecutionStatus]string{
	domain.StatusIdle:      "○",
	domain.StatusRunning:   "◐",
	domain.StatusCompleted: "✔",
	domain.StatusFailed:    "✘",
}

// Report formats a run as markdown: a summary line, a status table in execution
// order and the outputs of every node that produced any.
func Report(wf *domain.Workflow, defs Definitions, result *domain.RunResult) string {
	var sb strings.Builder

	title := wf.Name
	if title == "" {
		title = wf.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	switch {
	case result.Order == nil && result.Error != "":
		fmt.Fprintf(&sb, "**Rejected**: %s\n\n", result.Error)
	case result.FailedNode != "":
		fmt.Fprintf(&sb, "**Failed** at `%s` after %s: %s\n\n", result.FailedNode, result.Duration().Round(1e6), result.Error)
	case result.Error != "":
		fmt.Fprintf(&sb, "**Stopped** after %s: %s\n\n", result.Duration().Round(1e6), result.Error)
	default:
		fmt.Fprintf(&sb, "**Completed** %d nodes in %s\n\n", len(result.Order), result.Duration().Round(1e6))
	}

	sb.WriteString("| | Node | Type | Status |\n|---|---|---|---|\n")
	for _, n := range reportOrder(wf, result) {
		name := n.Type
		if def, ok := defs.Get(n.Type); ok && def.Name != "" {
			name = def.Name
		}
		status := result.Status(n.ID)
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s |\n", statusIcons[status], n.ID, name, status)
	}

	for _, n := range reportOrder(wf, result) {
		out := result.Outputs[n.ID]
		if len(out) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", n.ID)
		keys := make([]string, 0, len(out))
		for k := range out {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- **%s**: %s\n", k, formatValue(out[k]))
		}
	}
	return sb.String()
}

// reportOrder lists executed nodes first in run order, then the rest in document order.
func reportOrder(wf *domain.Workflow, result *domain.RunResult) []domain.WorkflowNode {
	byID := make(map[string]domain.WorkflowNode, len(wf.Nodes))
	for _, n := range wf.Nodes {
		byID[n.ID] = n
	}
	seen := make(map[string]bool, len(wf.Nodes))
	nodes := make([]domain.WorkflowNode, 0, len(wf.Nodes))
	for _, id := range result.Order {
		if n, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			nodes = append(nodes, n)
		}
	}
	for _, n := range wf.Nodes {
		if !seen[n.ID] {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.Contains(val, "\n") {
			return "\n\n```\n" + val + "\n```\n"
		}
		return val
	case nil:
		return "_nil_"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return "`" + string(b) + "`"
	}
}
