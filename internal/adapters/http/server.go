package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies, which may carry inline corpus text.
const maxBodyBytes = 8 << 20

// Server exposes a ProjectEngine over JSON.
type Server struct {
	Engine  ports.ProjectEngine
	Logger  *slog.Logger
	Version string
	Metrics http.Handler

	// Capabilities names the task models a blueprint may route to.
	Capabilities []string

	// AllowedOrigins lists the browser origins granted CORS access. Empty means none.
	AllowedOrigins []string
}

// Option configures the HTTP server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithMetricsHandler replaces the default Prometheus handler mounted on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithCapabilities sets the task model names reported by /info.
func WithCapabilities(names []string) Option {
	return func(s *Server) {
		s.Capabilities = names
	}
}

// WithAllowedOrigins grants CORS access to the given browser origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.AllowedOrigins = origins
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.ProjectEngine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Logger:  logging.NewNop(),
		Version: "dev",
		Metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/healthz", s.health)
	r.Get("/info", s.info)
	r.Method(http.MethodGet, "/metrics", s.Metrics)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Post("/ingest", s.ingest)
			r.Post("/plan", s.plan)
			r.Post("/run", s.run)
			r.Post("/resume", s.resume)
		})
	})
	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !slices.Contains(s.AllowedOrigins, origin) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

// IngestRequest is the body of POST /projects/{name}/ingest.
// Entries carry already decoded text. Sources is rejected: the server never
// reads its own files or fetches URLs on behalf of a client.
type IngestRequest struct {
	Sources []string             `json:"sources,omitempty"`
	Entries []domain.CorpusEntry `json:"entries,omitempty"`
}

// RunRequest is the body of POST /projects/{name}/run.
type RunRequest struct {
	HumanFeedback bool `json:"human_feedback"`
	Steps         int  `json:"steps,omitempty"`
}

// ResumeRequest is the body of POST /projects/{name}/resume.
type ResumeRequest struct {
	Token string `json:"token"`
	Steps int    `json:"steps,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InfoResponse is the body of GET /info.
type InfoResponse struct {
	App          string   `json:"app"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	caps := s.Capabilities
	if caps == nil {
		caps = []string{}
	}
	s.writeJSON(w, http.StatusOK, InfoResponse{
		App:          "weaver-http",
		Version:      s.Version,
		Capabilities: caps,
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"projects": names})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body CreateProjectRequest
	if !s.decode(w, r, &body) {
		return
	}
	state, err := s.Engine.Initialize(r.Context(), body.Name, body.Goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, state)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Status(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var body IngestRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Sources) > 0 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "sources are not read over HTTP; send their text as entries"})
		return
	}
	state, err := s.Engine.IngestEntries(r.Context(), chi.URLParam(r, "name"), body.Entries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Plan(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}
	report, err := s.Engine.Run(r.Context(), chi.URLParam(r, "name"), ports.RunOptions{
		HumanFeedback: body.HumanFeedback,
		Steps:         body.Steps,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	var body ResumeRequest
	if !s.decode(w, r, &body) {
		return
	}
	report, err := s.Engine.Resume(r.Context(), chi.URLParam(r, "name"), body.Token, ports.RunOptions{
		Steps: body.Steps,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// decode reads an optional JSON body. An empty body leaves v at its zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		stageErr    *domain.InvalidStageError
		existsErr   *domain.AlreadyExistsError
		lockErr     *domain.ConcurrentRunError
		dupErr      *domain.DuplicateSourceError
		nameErr     *domain.InvalidNameError
		editErr     *domain.BlueprintEditError
		sourceErr   *domain.SourceUnavailableError
		planErr     *domain.PlanningError
		upstreamErr *domain.UpstreamError
		corruptErr  *domain.CorruptStateError
	)
	switch {
	case errors.As(err, &stageErr), errors.As(err, &existsErr):
		return http.StatusConflict
	case errors.As(err, &lockErr):
		return http.StatusLocked
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.As(err, &dupErr), errors.As(err, &nameErr), errors.As(err, &editErr),
		errors.Is(err, domain.ErrEmptyGoal), errors.Is(err, domain.ErrInvalidResumeToken),
		errors.Is(err, domain.ErrInvalidSteps):
		return http.StatusBadRequest
	case errors.As(err, &sourceErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &planErr), errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &corruptErr):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
