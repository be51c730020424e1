package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/compiler"
	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/internal/logging"
	"github.com/aretw0/flowstep/internal/presentation/graph"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/observability"
	"github.com/aretw0/flowstep/pkg/session"
	"github.com/aretw0/flowstep/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes session management and stepping over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger  *slog.Logger
	metrics *observability.Metrics
	mounts  map[string]http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics instruments every route.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMount serves h at pattern, outside of the API routes (e.g. /metrics).
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts[pattern] = h
	}
}

// NewServer creates a Server.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
		mounts:   map[string]http.Handler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	for pattern, h := range s.mounts {
		r.Handle(pattern, h)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/step", s.Step)
			r.Post("/undo", s.Undo)
			r.Post("/solve", s.Solve)
			r.Get("/views/{kind}", s.GetView)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "flowstep-http",
		"version": strings.TrimSpace(flowstep.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateSession: invalid request body", "err", err)
		return
	}

	def, err := compiler.NewParser().Compile(&body.NetworkFile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.Sessions.Create(r.Context(), body.ID, def.Nodes, def.Edges, flowstep.WithConfig(def.Config))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if diff := domain.Diff(sess.ID, nil, &sess.Current); diff != nil {
		s.broadcast(diff)
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, dto.FromSession(sess))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromSession(sess))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Step handles POST /sessions/{id}/step.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		return eng.Step(ctx)
	})
}

// Undo handles POST /sessions/{id}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		res, ok := eng.Undo(ctx)
		if !ok {
			return nil, domain.ErrNothingToUndo
		}
		return res, nil
	})
}

// Solve handles POST /sessions/{id}/solve. The optional max_steps query
// parameter bounds the run.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	maxSteps := 0
	if raw := r.URL.Query().Get("max_steps"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "max_steps must be a non-negative integer", http.StatusBadRequest)
			return
		}
		maxSteps = n
	}

	s.apply(w, r, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		res, err := eng.Solve(ctx, maxSteps)
		if err == nil && res == nil {
			res = &domain.StepResult{Kind: domain.KindNoopTerminated}
		}
		return res, err
	})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(context.Context, *flowstep.Engine) (*domain.StepResult, error)) {
	id := chi.URLParam(r, "id")
	var res *domain.StepResult
	before, after, err := s.Sessions.Apply(r.Context(), id, func(ctx context.Context, eng *flowstep.Engine) error {
		var err error
		res, err = fn(ctx, eng)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if diff := domain.Diff(id, &before.Current, &after.Current); diff != nil {
		s.logger.Debug("diff calculated", "session_id", id, "kind", res.Kind)
		s.broadcast(diff)
	}
	s.writeJSON(w, http.StatusOK, dto.FromStep(res, after))
}

// GetView handles GET /sessions/{id}/views/{kind}.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	kind, ok := view.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown view %q", chi.URLParam(r, "kind")), http.StatusNotFound)
		return
	}
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g := view.Build(kind, &sess.Current)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, g)
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(g)))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateDOT(g)))
	case "svg":
		svg, err := graph.RenderSVG(r.Context(), graph.GenerateDOT(g))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}

func (s *Server) broadcast(diff *domain.SnapshotDiff) {
	b, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "session_id", diff.SessionID, "err", err)
		return
	}
	s.Streams.Broadcast(diff.SessionID, string(b))
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNothingToUndo), errors.Is(err, domain.ErrLockHeld):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	resp := errorResponse{Error: err.Error()}
	if errs := domain.ConfigurationErrors(err); len(errs) > 1 {
		resp.Error = fmt.Sprintf("%d configuration errors", len(errs))
		for _, e := range errs {
			resp.Details = append(resp.Details, e.Error())
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
