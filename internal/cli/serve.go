package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "github.com/aretw0/flowcanvas/pkg/adapters/http"
	"github.com/aretw0/flowcanvas/pkg/adapters/mcp"
	"github.com/aretw0/flowcanvas/pkg/observability"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewServer wires the HTTP API with metrics and run event streaming.
func NewServer(eng *Engine, reg *prometheus.Registry) (http.Handler, func() error, error) {
	metrics := observability.NewMetrics(reg)
	streams := api.NewStreamManager(eng.Logger)

	ws, closeFn, err := eng.Workspace(
		metrics.Hooks(),
		streams.Hooks(),
		observability.LogHooks(eng.Logger),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := api.NewHandler(ws, eng.Catalog,
		api.WithLogger(eng.Logger),
		api.WithStreams(streams),
		api.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)
	return handler, closeFn, nil
}

// Serve runs the HTTP API on port until ctx is done.
func Serve(ctx context.Context, eng *Engine, port int) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, closeFn, err := NewServer(eng, reg)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		eng.Logger.Info("Starting flowcanvas server", "addr", srv.Addr, "store", eng.Config.Store.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		eng.Logger.Info("Start shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			eng.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		eng.Logger.Info("Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server over transport ("stdio" or "sse").
func ServeMCP(ctx context.Context, eng *Engine, transport string, port int) error {
	ws, closeFn, err := eng.Workspace(observability.LogHooks(eng.Logger))
	if err != nil {
		return err
	}
	defer closeFn()

	srv := mcp.NewServer(ws, eng.Catalog, eng.Logger)
	switch transport {
	case "stdio":
		eng.Logger.Info("Starting flowcanvas MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		eng.Logger.Info("Starting flowcanvas MCP server (sse)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
	}
}
