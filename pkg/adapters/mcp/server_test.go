package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/adapters/memory"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/executors"
	"github.com/aretw0/flowcanvas/pkg/registry"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

func newServer(t *testing.T, docs ...*domain.Workflow) *Server {
	t.Helper()
	reg := registry.NewRegistry()
	executors.Register(reg)
	ws := workspace.New(memory.NewStore(docs...), catalog.Builtin(), reg)
	return NewServer(ws, catalog.Builtin(), nil)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func greeting() *domain.Workflow {
	return &domain.Workflow{
		ID: "greet",
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: catalog.TypeText, Data: map[string]any{"text": "hi"}},
			{ID: "b", Type: catalog.TypeTransform, Data: map[string]any{"mode": "upper"}},
		},
		Edges: []domain.WorkflowEdge{{ID: "e", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"}},
	}
}

func TestListNodeTypes(t *testing.T) {
	s := newServer(t)
	resp, err := s.handleListNodeTypes(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Types, catalog.Builtin().Len())
}

func TestGetWorkflow(t *testing.T) {
	s := newServer(t, greeting())
	ctx := context.Background()

	res, err := s.handleGetWorkflow(ctx, callRequest(map[string]any{"id": "greet"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text

	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(text), &wf))
	assert.Len(t, wf.Nodes, 2)

	res, err = s.handleGetWorkflow(ctx, callRequest(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetWorkflow(ctx, callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListWorkflows(t *testing.T) {
	s := newServer(t, greeting())
	res, err := s.handleListWorkflows(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, `["greet"]`, res.Content[0].(mcp.TextContent).Text)
}

func TestRunWorkflow(t *testing.T) {
	failing := greeting()
	failing.ID = "failing"
	failing.Nodes[1].Data["mode"] = "shout"
	s := newServer(t, greeting(), failing)
	ctx := context.Background()

	resp, err := s.handleRunWorkflow(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "greet"})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "HI", resp.Result.Outputs["b"]["out"])

	resp, err = s.handleRunWorkflow(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "failing"})
	require.NoError(t, err, "node failures are reported in the result")
	assert.False(t, resp.Succeeded)
	assert.Equal(t, "b", resp.Result.FailedNode)

	_, err = s.handleRunWorkflow(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "missing"})
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	_, err = s.handleRunWorkflow(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestReadCatalog(t *testing.T) {
	s := newServer(t)
	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, CatalogURI, text.URI)

	var defs []domain.NodeDefinition
	require.NoError(t, json.Unmarshal([]byte(text.Text), &defs))
	assert.NotEmpty(t, defs)
}
