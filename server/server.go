// Package server exposes the dialog engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tbxark/hotelagent/agent"
	"github.com/tbxark/hotelagent/dialogue"
	"github.com/tbxark/hotelagent/internal/logging"
	"github.com/tbxark/hotelagent/metrics"
	"github.com/tbxark/hotelagent/types"
)

type Server struct {
	engine   *agent.Engine
	manager  *agent.SessionManager
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	health   func(ctx context.Context) error
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics counts requests and serves /metrics from gatherer.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithHealthCheck makes /healthz report 503 while check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

func New(engine *agent.Engine, manager *agent.SessionManager, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MessageRequest is the body of a managed turn.
type MessageRequest struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Greeting  string         `json:"greeting,omitempty"`
	Response  string         `json:"response,omitempty"`
	Path      []agent.Node   `json:"path,omitempty"`
	Session   *types.Session `json:"session"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.Healthz)
	r.Get("/graph", s.GetGraph)
	r.Get("/schema", s.GetSchema)
	r.Post("/run_workflow/", s.RunWorkflow)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
		r.Post("/{id}/messages", s.PostMessage)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, status)
		}
		s.logger.Debug("Served request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "detail": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunWorkflow runs one turn over the snapshot in the body and returns the
// updated snapshot. Nothing is stored.
func (s *Server) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	var session types.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := s.engine.Run(r.Context(), &session)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	session, err := s.manager.Create(agent.WithSessionKey(r.Context(), id))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID: id,
		Greeting:  dialogue.Greeting,
		Session:   session,
	})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := s.manager.Load(agent.WithSessionKey(r.Context(), id))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, Session: session})
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := agent.WithSessionKey(r.Context(), chi.URLParam(r, "id"))
	exists, err := s.manager.Exists(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !exists {
		s.fail(w, agent.ErrSessionNotFound)
		return
	}
	if err := s.manager.Reset(ctx); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	turn, err := s.manager.Continue(agent.WithSessionKey(r.Context(), id), body.Message)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID: id,
		Response:  turn.Session.Response,
		Path:      turn.Path,
		Session:   turn.Session,
	})
}

// GetGraph renders the dialog graph as Mermaid. ?visited=a,b highlights
// nodes.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var visited []agent.Node
	if v := r.URL.Query().Get("visited"); v != "" {
		for _, name := range strings.Split(v, ",") {
			visited = append(visited, agent.Node(strings.TrimSpace(name)))
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(agent.RenderMermaid(visited...)))
}

func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := types.BookingInfoSchema()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write([]byte(schema))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agent.ErrEmptyUserMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, agent.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
