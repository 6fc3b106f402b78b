package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/schema"
	"github.com/aretw0/flowcanvas/pkg/workspace"
)

var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	var agg *schema.AggregateError
	switch {
	case errors.As(err, &agg), errors.Is(err, errBadRequest), errors.Is(err, domain.ErrUnknownType):
		return http.StatusBadRequest
	case workspace.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCycleDetected),
		errors.Is(err, domain.ErrDuplicateNode),
		errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownPort), errors.Is(err, domain.ErrIncompatibleConnection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRunCanceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	for _, e := range schema.ValidationErrors(err) {
		resp.Details = append(resp.Details, e.Error())
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	s.writeJSON(w, status, resp)
}
