package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/aretw0/flowcanvas/pkg/adapters/http"
	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/executors"
	"github.com/aretw0/flowcanvas/pkg/observability"
	"github.com/aretw0/flowcanvas/pkg/registry"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

type fixture struct {
	handler http.Handler
	ws      *workspace.Workspace
	streams *api.StreamManager
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	reg := registry.NewRegistry()
	executors.Register(reg)

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)
	streams := api.NewStreamManager(nil)

	ws := workspace.New(memory.NewStore(), catalog.Builtin(), reg,
		workspace.WithStrictPorts(strict),
		workspace.WithLifecycleHooks(domain.ChainHooks(metrics.Hooks(), streams.Hooks())),
	)
	h := api.NewHandler(ws, catalog.Builtin(),
		api.WithStreams(streams),
		api.WithMetricsHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
	)
	return &fixture{handler: h, ws: ws, streams: streams}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// buildChain creates text -> transform -> sink through the API and returns the workflow id.
func (f *fixture) buildChain(t *testing.T) (string, []domain.WorkflowNode) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/workflows", api.CreateWorkflowRequest{Name: "chain"})
	require.Equal(t, http.StatusCreated, w.Code)
	wf := decodeBody[domain.Workflow](t, w)

	var nodes []domain.WorkflowNode
	for _, req := range []api.AddNodeRequest{
		{Type: catalog.TypeText, Data: map[string]any{"text": "hello"}},
		{Type: catalog.TypeTransform, Position: domain.Point{X: 300}},
		{Type: catalog.TypeSink, Position: domain.Point{X: 600}},
	} {
		w := f.do(t, http.MethodPost, "/workflows/"+wf.ID+"/nodes", req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		nodes = append(nodes, decodeBody[domain.WorkflowNode](t, w))
	}
	for _, e := range []domain.WorkflowEdge{
		{Source: nodes[0].ID, SourceHandle: "text", Target: nodes[1].ID, TargetHandle: "in"},
		{Source: nodes[1].ID, SourceHandle: "out", Target: nodes[2].ID, TargetHandle: "in"},
	} {
		w := f.do(t, http.MethodPost, "/workflows/"+wf.ID+"/edges", e)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return wf.ID, nodes
}

func TestHealthAndCatalog(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	defs := decodeBody[[]domain.NodeDefinition](t, w)
	assert.Len(t, defs, catalog.Builtin().Len())
}

func TestWorkflowLifecycle(t *testing.T) {
	f := newFixture(t, false)
	id, nodes := f.buildChain(t)

	w := f.do(t, http.MethodGet, "/workflows", nil)
	assert.Equal(t, []string{id}, decodeBody[api.WorkflowList](t, w).Workflows)

	w = f.do(t, http.MethodPost, "/workflows/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeBody[domain.RunResult](t, w)
	assert.Equal(t, "HELLO", result.Outputs[nodes[1].ID]["out"])
	assert.Equal(t, domain.StatusCompleted, result.Statuses[nodes[2].ID])

	w = f.do(t, http.MethodGet, "/workflows/"+id+"/run", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/workflows/"+id+"/mermaid?run=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph LR")
	assert.Contains(t, w.Body.String(), "completed;")

	pos := domain.Point{X: 10, Y: 20}
	w = f.do(t, http.MethodPatch, "/workflows/"+id+"/nodes/"+nodes[0].ID, workspace.NodePatch{Position: &pos})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pos, decodeBody[domain.WorkflowNode](t, w).Position)

	w = f.do(t, http.MethodDelete, "/workflows/"+id+"/nodes/"+nodes[1].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/workflows/"+id, nil)
	wf := decodeBody[domain.Workflow](t, w)
	assert.Len(t, wf.Nodes, 2)
	assert.Empty(t, wf.Edges, "removing a node removes its edges")

	w = f.do(t, http.MethodDelete, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `flowcanvas_runs_total{outcome="completed"} 1`)
}

func TestRun_FailureIsReportedInBody(t *testing.T) {
	f := newFixture(t, false)
	id, nodes := f.buildChain(t)

	w := f.do(t, http.MethodPatch, "/workflows/"+id+"/nodes/"+nodes[1].ID, workspace.NodePatch{Data: map[string]any{"mode": "shout"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/workflows/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeBody[domain.RunResult](t, w)
	assert.Equal(t, nodes[1].ID, result.FailedNode)
	assert.Contains(t, result.Outputs[nodes[1].ID]["error"], "shout")
	assert.Equal(t, domain.StatusIdle, result.Statuses[nodes[2].ID])
}

func TestRun_CycleIsConflict(t *testing.T) {
	f := newFixture(t, false)
	doc := domain.Workflow{
		Nodes: []domain.WorkflowNode{{ID: "a", Type: catalog.TypeEcho}, {ID: "b", Type: catalog.TypeEcho}},
		Edges: []domain.WorkflowEdge{
			{ID: "e1", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in"},
			{ID: "e2", Source: "b", SourceHandle: "out", Target: "a", TargetHandle: "in"},
		},
	}
	w := f.do(t, http.MethodPut, "/workflows/loop", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/workflows/loop/run", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	result := decodeBody[domain.RunResult](t, w)
	assert.Contains(t, result.Error, "cycle")
	assert.Empty(t, result.Outputs)
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t, true)
	id, nodes := f.buildChain(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing workflow", http.MethodGet, "/workflows/nope", nil, http.StatusNotFound},
		{"no run yet", http.MethodGet, "/workflows/" + id + "/run", nil, http.StatusNotFound},
		{"unknown type", http.MethodPost, "/workflows/" + id + "/nodes", api.AddNodeRequest{Type: "teleport"}, http.StatusBadRequest},
		{"missing type", http.MethodPost, "/workflows/" + id + "/nodes", api.AddNodeRequest{}, http.StatusBadRequest},
		{"missing node", http.MethodPatch, "/workflows/" + id + "/nodes/ghost", workspace.NodePatch{}, http.StatusNotFound},
		{"missing edge", http.MethodDelete, "/workflows/" + id + "/edges/ghost", nil, http.StatusNotFound},
		{"unknown port", http.MethodPost, "/workflows/" + id + "/edges",
			domain.WorkflowEdge{Source: nodes[0].ID, SourceHandle: "nope", Target: nodes[1].ID, TargetHandle: "in"}, http.StatusUnprocessableEntity},
		{"invalid document", http.MethodPut, "/workflows/bad",
			domain.Workflow{Nodes: []domain.WorkflowNode{{ID: "x", Type: "teleport"}}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeBody[api.ErrorResponse](t, w).Error)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/workflows/"+id+"/edges", strings.NewReader("{"))
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation details", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/workflows/bad", domain.Workflow{Nodes: []domain.WorkflowNode{{ID: "x", Type: "teleport"}}})
		assert.NotEmpty(t, decodeBody[api.ErrorResponse](t, w).Details)
	})
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t, false)
	id, _ := f.buildChain(t)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/workflows/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())
	require.Eventually(t, func() bool { return f.streams.Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)

	go func() {
		_, _ = f.ws.Run(context.Background(), id)
	}()

	var events []string
	for lines.Scan() {
		line := lines.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, name)
			if name == api.EventRunEnd {
				break
			}
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, api.EventRunStart, events[0])
	assert.Equal(t, api.EventRunEnd, events[len(events)-1])
	// running + completed for each of the three nodes.
	assert.Len(t, events, 8)
}

func TestSubscribeEvents_UnknownWorkflow(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(t, http.MethodGet, "/workflows/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
