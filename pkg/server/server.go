// Package server exposes a diagram editor over HTTP.
//
// Rendering clients read the live state from GET /api/flow and drive every
// editor operation through JSON endpoints under /api. Errors are returned
// as {"code","message"} with the status implied by the error code.
// Prometheus metrics are served on /metrics and a liveness probe on /healthz.
//
//	ctrl := editor.New(editor.Options{Store: store, Initial: initial})
//	ctrl.Load(ctx)
//	srv := server.New(ctrl, server.Options{Logger: logger})
//	err := srv.ListenAndServe(ctx, ":8080")
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/biotree/pkg/editor"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Registry collects the server's metrics. A fresh registry is created
	// when nil.
	Registry *prometheus.Registry

	// SkipHooks leaves the global observability hooks untouched.
	SkipHooks bool
}

// Server serves the editor API.
type Server struct {
	ctrl     *editor.Controller
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// New creates a server for ctrl. Unless opts.SkipHooks is set, the server's
// metrics are installed as the global observability hooks.
func New(ctrl *editor.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		ctrl:     ctrl,
		logger:   opts.Logger,
		registry: opts.Registry,
		metrics:  NewMetrics(opts.Registry),
	}
	if !opts.SkipHooks {
		s.metrics.Install()
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/flow", s.handleFlow)
		r.Put("/mode", s.handleSetMode)

		r.Post("/taxa", s.handleAddTaxon)
		r.Patch("/taxa/{id}", s.handleUpdateTaxon)
		r.Post("/taxa/{id}/photos", s.handleAttachPhotos)
		r.Delete("/taxa/{id}/photos/{index}", s.handleRemovePhoto)

		r.Post("/branchpoints", s.handleAddBranchPoint)
		r.Patch("/branchpoints/{id}", s.handleUpdateBranchPoint)

		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Patch("/nodes/{id}/position", s.handleMoveNode)
		r.Post("/nodes/{id}/select", s.handleSelectNode)
		r.Post("/nodes/changes", s.handleNodeChanges)

		r.Post("/edges", s.handleConnect)
		r.Delete("/edges/{id}", s.handleRemoveEdge)

		r.Put("/selection", s.handleSetSelection)
		r.Delete("/selection", s.handleClearSelection)
		r.Get("/selection/detail", s.handleDetail)
		r.Post("/selection/delete", s.handleDeleteSelected)

		r.Post("/reset", s.handleReset)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Get("/render.dot", s.handleRender(formatDOT))
		r.Get("/render.svg", s.handleRender(formatSVG))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, notFound("no such endpoint"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
