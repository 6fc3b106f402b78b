package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/flowcanvas/internal/logging"
	mermaid "github.com/aretw0/flowcanvas/internal/presentation/graph"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

// Catalog lists node definitions. *catalog.Catalog satisfies it.
type Catalog interface {
	List() []domain.NodeDefinition
	Get(nodeType string) (domain.NodeDefinition, bool)
}

// Server serves the workflow API over a Workspace.
type Server struct {
	Workspace *workspace.Workspace
	Catalog   Catalog
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams shares a StreamManager whose Hooks are installed on the workspace.
// Without it the events endpoint never receives anything.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h (usually promhttp.Handler()) at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for ws.
func NewHandler(ws *workspace.Workspace, cat Catalog, opts ...Option) http.Handler {
	s := &Server{Workspace: ws, Catalog: cat, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/catalog", s.GetCatalog)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.ListWorkflows)
		r.Post("/", s.CreateWorkflow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetWorkflow)
			r.Put("/", s.PutWorkflow)
			r.Delete("/", s.DeleteWorkflow)

			r.Post("/nodes", s.AddNode)
			r.Patch("/nodes/{nodeID}", s.UpdateNode)
			r.Delete("/nodes/{nodeID}", s.RemoveNode)
			r.Post("/edges", s.Connect)
			r.Delete("/edges/{edgeID}", s.Disconnect)

			r.Post("/run", s.Run)
			r.Get("/run", s.GetLastRun)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/mermaid", s.GetMermaid)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetCatalog handles GET /catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Catalog.List())
}

// WorkflowList is the body of GET /workflows.
type WorkflowList struct {
	Workflows []string `json:"workflows"`
}

func (s *Server) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Workspace.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, WorkflowList{Workflows: ids})
}

// CreateWorkflowRequest is the body of POST /workflows. The body may be empty.
type CreateWorkflowRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var body CreateWorkflowRequest
	if r.ContentLength != 0 {
		if err := decode(r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	wf, err := s.Workspace.Create(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.Workspace.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wf)
}

// PutWorkflow replaces a whole document. The id in the path wins over the body.
func (s *Server) PutWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	if err := decode(r, &wf); err != nil {
		s.writeError(w, r, err)
		return
	}
	wf.ID = chi.URLParam(r, "id")
	if wf.Viewport.Zoom == 0 {
		wf.Viewport.Zoom = 1
	}
	if err := s.Workspace.Put(r.Context(), &wf); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &wf)
}

func (s *Server) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNodeRequest is the body of POST /workflows/{id}/nodes.
type AddNodeRequest struct {
	Type     string         `json:"type"`
	Position domain.Point   `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body AddNodeRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Type == "" {
		s.writeError(w, r, fmt.Errorf("%w: type is required", errBadRequest))
		return
	}
	node, err := s.Workspace.AddNode(r.Context(), chi.URLParam(r, "id"), body.Type, body.Position, body.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, node)
}

func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var patch workspace.NodePatch
	if err := decode(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	node, err := s.Workspace.UpdateNode(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.RemoveNode(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var e domain.WorkflowEdge
	if err := decode(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	edge, err := s.Workspace.Connect(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Disconnect(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "edgeID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run handles POST /workflows/{id}/run. A run halted by a failing node is still
// a successful request: the failure is reported in the result body.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.Workspace.Run(r.Context(), id)
	switch {
	case err == nil, errors.Is(err, domain.ErrNodeExecutionFailed):
		s.writeJSON(w, http.StatusOK, result)
	case result != nil:
		s.logger.Warn("run rejected", "workflow_id", id, "err", err)
		s.writeJSON(w, StatusFor(err), result)
	default:
		s.writeError(w, r, err)
	}
}

func (s *Server) GetLastRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := s.Workspace.LastRun(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: no run recorded for %s", domain.ErrWorkflowNotFound, id))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// GetMermaid handles GET /workflows/{id}/mermaid. With ?run=true the last run
// colors the nodes.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wf, err := s.Workspace.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var overlay *domain.RunResult
	if r.URL.Query().Get("run") == "true" {
		overlay, _ = s.Workspace.LastRun(id)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(mermaid.GenerateMermaid(wf.Snapshot(), s.Catalog, overlay)))
}

// SubscribeEvents handles GET /workflows/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.Workspace.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: client subscribed", "workflow_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "workflow_id", id)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
