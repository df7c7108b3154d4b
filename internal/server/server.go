// Package server exposes the project database and the display pipeline over
// HTTP.
//
// Routes:
//
//	GET /health                  liveness and build info
//	GET /api/projects            stored project names
//	GET /api/projects/{name}     per-project detail
//	GET /api/elements            Cytoscape elements (?names=a,b&k=5&seed=1300&relation=friends)
//
// A name containing a comma is passed in repeated parameters instead:
// ?names=a&names=b,c.
//
// Errors are JSON objects {"error": CODE, "message": text} with a status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/pipeline"
)

// Projects is the read side of the project database.
type Projects interface {
	Names(ctx context.Context) ([]string, error)
	Detail(ctx context.Context, name string) (entity.Detail, error)
}

// Elements computes display results.
type Elements interface {
	Elements(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Options configures a Server.
type Options struct {
	// Defaults fills the display options a request leaves out.
	Defaults pipeline.Options
	Logger   *log.Logger
	// RequestTimeout bounds each request. Zero means 30s.
	RequestTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	projects Projects
	elements Elements
	defaults pipeline.Options
	logger   *log.Logger
	timeout  time.Duration
	started  time.Time
}

// New creates a server over projects and elements.
func New(projects Projects, elements Elements, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		projects: projects,
		elements: elements,
		defaults: opts.Defaults,
		logger:   logger,
		timeout:  timeout,
		started:  time.Now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleProjects)
		r.Get("/projects/{name}", s.handleProject)
		r.Get("/elements", s.handleElements)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}
