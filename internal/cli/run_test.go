package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

func TestRunOnce_JSON(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer

	result, err := RunOnce(context.Background(), eng, RunOptions{Path: "testdata/chain.yaml", JSON: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Order)

	var decoded domain.RunResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "HELLO", decoded.Outputs["b"]["out"])
	assert.Equal(t, domain.StatusCompleted, decoded.Statuses["c"])
}

func TestRunOnce_MarkdownReport(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer

	_, err := RunOnce(context.Background(), eng, RunOptions{Path: "testdata/chain.yaml"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# Chain")
	assert.Contains(t, out.String(), "**Completed** 3 nodes")
}

func TestRunOnce_Failure(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer

	result, err := RunOnce(context.Background(), eng, RunOptions{Path: "testdata/failing.yaml", JSON: true}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNodeExecutionFailed)
	require.NotNil(t, result)
	assert.Equal(t, "b", result.FailedNode)
	assert.Equal(t, domain.StatusIdle, result.Statuses["c"])
	assert.NotEmpty(t, out.String(), "the report is written even for failed runs")
}

func TestRunOnce_InvalidDocument(t *testing.T) {
	result, err := RunOnce(context.Background(), newEngine(t), RunOptions{Path: "testdata/broken.yaml"}, &bytes.Buffer{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
}

func TestExecute_WatchAndJSONConflict(t *testing.T) {
	err := Execute(context.Background(), newEngine(t), RunOptions{Path: "x", Watch: true, JSON: true}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "cannot be used together")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch_RerunsOnChange(t *testing.T) {
	src, err := os.ReadFile("testdata/chain.yaml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	eng := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- RunWatch(ctx, eng, RunOptions{Path: path}, out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Waiting for changes")
	}, 5*time.Second, 20*time.Millisecond)

	changed := strings.Replace(string(src), "text: hello", "text: goodbye", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Changed since last run: a, b")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "GOODBYE")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Watch stopped: context canceled.")
}

func TestStopReason(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.mu.Lock()
	sc.sigVal = os.Interrupt
	sc.mu.Unlock()
	sc.Cancel()
	assert.Equal(t, "received interrupt", stopReason(sc))
	assert.Equal(t, os.Interrupt, sc.Signal())

	plain := NewSignalContext(context.Background())
	plain.Cancel()
	assert.Nil(t, plain.Signal())
	assert.Equal(t, "context canceled", stopReason(plain))

	assert.Equal(t, "done", stopReason(context.Background()))
}

func TestExecute_CanceledRunNamesReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Execute(ctx, newEngine(t), RunOptions{Path: "testdata/chain.yaml"}, io.Discard)
	require.ErrorIs(t, err, domain.ErrRunCanceled)
	assert.ErrorContains(t, err, "(context canceled)")
}
