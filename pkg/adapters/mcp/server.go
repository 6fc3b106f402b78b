package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/flowcanvas"
	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

// CatalogURI is the resource listing every node definition.
const CatalogURI = "flowcanvas://catalog"

// Catalog lists node definitions. *catalog.Catalog satisfies it.
type Catalog interface {
	List() []domain.NodeDefinition
}

// CatalogResponse is the structured output of list_node_types.
type CatalogResponse struct {
	Types []domain.NodeDefinition `json:"types" jsonschema_description:"Every node type that can be placed in a workflow"`
}

// RunResponse is the structured output of run_workflow.
type RunResponse struct {
	WorkflowID string            `json:"workflowId" jsonschema_description:"The workflow that ran"`
	Result     *domain.RunResult `json:"result" jsonschema_description:"Per-node statuses, inputs and outputs"`
	Succeeded  bool              `json:"succeeded" jsonschema_description:"True when every node completed"`
}

// Server exposes a Workspace to MCP clients.
type Server struct {
	workspace *workspace.Workspace
	catalog   Catalog
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(ws *workspace.Workspace, cat Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		workspace: ws,
		catalog:   cat,
		logger:    logger,
		mcpServer: server.NewMCPServer("flowcanvas-mcp", strings.TrimSpace(flowcanvas.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the node types available in the catalog, with their input and output ports."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListNodeTypes))

	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List the ids of stored workflows."),
	), s.handleListWorkflows)

	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Get a workflow document: viewport, nodes (in insertion order) and edges."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workflow ID")),
	), s.handleGetWorkflow)

	s.mcpServer.AddTool(mcp.NewTool("run_workflow",
		mcp.WithDescription("Run every node of a workflow in dependency order. A failing node halts the run; its error is in the result."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workflow ID")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRunWorkflow))
}

func (s *Server) handleListNodeTypes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CatalogResponse, error) {
	return CatalogResponse{Types: s.catalog.List()}, nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.workspace.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	wf, err := s.workspace.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(wf)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleRunWorkflow reports node failures in the result. Only runs that could
// not happen at all (missing workflow, cycle) are tool errors.
func (s *Server) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return RunResponse{}, fmt.Errorf("id is required")
	}
	result, err := s.workspace.Run(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNodeExecutionFailed) {
		s.logger.Warn("MCP run_workflow: run rejected", "workflow_id", id, "err", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	return RunResponse{WorkflowID: id, Result: result, Succeeded: err == nil}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Node Catalog",
		mcp.WithResourceDescription("Every node definition with its ports and settings"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.catalog.List())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
