package tui

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
)

func chain() *domain.Workflow {
	return &domain.Workflow{
		ID:   "chain",
		Name: "Chain",
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: catalog.TypeText},
			{ID: "b", Type: catalog.TypeTransform},
			{ID: "c", Type: catalog.TypeSink},
		},
	}
}

func TestReport_Completed(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result := &domain.RunResult{
		Order: []string{"a", "b", "c"},
		Statuses: map[string]domain.ExecutionStatus{
			"a": domain.StatusCompleted, "b": domain.StatusCompleted, "c": domain.StatusCompleted,
		},
		Outputs: map[string]map[string]any{
			"a": {"text": "hi"},
			"b": {"out": "HI"},
			"c": {},
		},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	}

	md := Report(chain(), catalog.Builtin(), result)

	assert.Contains(t, md, "# Chain")
	assert.Contains(t, md, "**Completed** 3 nodes in 1.5s")
	assert.Contains(t, md, "| ✔ | `b` | Transform | completed |")
	assert.Contains(t, md, "## a\n\n- **text**: hi")
	assert.NotContains(t, md, "## c", "nodes without outputs are not listed")
}

func TestReport_Failed(t *testing.T) {
	result := &domain.RunResult{
		Order:      []string{"a", "b", "c"},
		Statuses:   map[string]domain.ExecutionStatus{"a": domain.StatusCompleted, "b": domain.StatusFailed, "c": domain.StatusIdle},
		Outputs:    map[string]map[string]any{"b": {domain.ErrorKey: "boom"}},
		FailedNode: "b",
		Error:      "node b (transform) failed: boom",
	}

	md := Report(chain(), catalog.Builtin(), result)

	assert.Contains(t, md, "**Failed** at `b`")
	assert.Contains(t, md, "| ○ | `c` | Sink | idle |")
	assert.Contains(t, md, "- **error**: boom")
}

func TestReport_RejectedKeepsDocumentOrder(t *testing.T) {
	result := domain.NewRunResult(chain().Snapshot())
	result.Error = "cycle detected"

	md := Report(chain(), catalog.Builtin(), result)

	assert.Contains(t, md, "**Rejected**: cycle detected")
	ia := bytes.Index([]byte(md), []byte("`a`"))
	ic := bytes.Index([]byte(md), []byte("`c`"))
	assert.Less(t, ia, ic)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", formatValue("plain"))
	assert.Equal(t, "_nil_", formatValue(nil))
	assert.Equal(t, "`{\"path\":\"/tmp/a.mp3\"}`", formatValue(map[string]any{"path": "/tmp/a.mp3"}))
	assert.Contains(t, formatValue("two\nlines"), "```")
}

func TestNewRenderer_NonTerminalIsPlain(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	out, err := NewRenderer(f)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)

	out, err = NewRenderer(nil)("x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestNewStyledRenderer(t *testing.T) {
	r, err := NewStyledRenderer("notty")
	require.NoError(t, err)
	out, err := r("**bold**")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotEmpty(t, Status(domain.StatusFailed))
}
