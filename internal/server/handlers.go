package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/impactgraph/pkg/buildinfo"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
	"github.com/matzehuels/impactgraph/pkg/pipeline"
	"github.com/matzehuels/impactgraph/pkg/render/nodelink"
)

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Build     buildinfo.Info    `json:"build"`
	Details   map[string]string `json:"details,omitempty"`
}

// ProjectsResponse is returned by /api/projects.
type ProjectsResponse struct {
	Projects []string `json:"projects"`
}

// ElementsResponse is returned by /api/elements.
type ElementsResponse struct {
	Elements []nodelink.Element `json:"elements"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Build:     buildinfo.Get(),
		Details: map[string]string{
			"go_version": runtime.Version(),
		},
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.projects.Names(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, ProjectsResponse{Projects: names})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := s.projects.Detail(r.Context(), name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	opts, err := s.elementOptions(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	res, err := s.elements.Elements(r.Context(), opts)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if res.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, ElementsResponse{Elements: res.Elements})
}

// elementOptions reads the display options from the query, falling back to
// the server defaults.
func (s *Server) elementOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Names = splitNames(q["names"])
	opts.Refresh = false

	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 0 {
			return opts, errs.New(errs.ErrCodeInvalidOptions, "k must be a non-negative integer, got %q", v)
		}
		opts.K = k
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || seed == 0 {
			return opts, errs.New(errs.ErrCodeInvalidOptions, "seed must be a positive integer, got %q", v)
		}
		opts.Seed = seed
	}
	if v := q.Get("relation"); v != "" {
		opts.Relation = v
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidOptions, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	return opts, nil
}

// splitNames reads names from repeated parameters. A single parameter may
// also hold a comma-separated list; a name containing a comma must be sent
// on its own in a repeated parameter.
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		parts := []string{v}
		if len(values) == 1 {
			parts = strings.Split(v, ",")
		}
		for _, n := range parts {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidName, errs.ErrCodeInvalidHandle,
		errs.ErrCodeInvalidOptions:
		return http.StatusBadRequest
	case errs.ErrCodeProjectNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" && errors.Is(err, context.DeadlineExceeded) {
		code = errs.ErrCodeTimeout
		err = errs.Wrap(code, err, "request timed out")
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		writeError(w, status, string(code), "internal error")
		return
	}
	writeError(w, status, string(code), errs.UserMessage(err))
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
