// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research assistant as an HTTP chat API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Answerer runs one query against a conversation state.
type Answerer interface {
	Answer(ctx context.Context, query string, state types.ConversationState, limits types.UsageLimits) (agent.Result, error)
}

// Server routes chat requests to the orchestrator.
type Server struct {
	cfg      types.ServerConfig
	answerer Answerer
	sessions *session.Store
	limits   types.UsageLimits
	gatherer prometheus.Gatherer

	router     chi.Router
	httpServer *http.Server
}

// New builds the server and its routes. gatherer backs /metrics; nil
// serves the default registry.
func New(cfg types.ServerConfig, answerer Answerer, sessions *session.Store, limits types.UsageLimits, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:      cfg,
		answerer: answerer,
		sessions: sessions,
		limits:   limits,
		gatherer: gatherer,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	r.Use(middleware.Timeout(timeout))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Get("/{id}", s.getSession)
		r.Delete("/{id}", s.deleteSession)
		r.Post("/{id}/messages", s.postMessage)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	slog.Info("research assistant listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestLogger attaches the chi request id to the context logger and
// logs each request when it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.FromContext(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// --- handlers ---

type sessionView struct {
	ID      string      `json:"id"`
	Created time.Time   `json:"created"`
	Updated time.Time   `json:"updated"`
	Turns   []turnView  `json:"turns"`
	Usage   types.Usage `json:"usage"`
}

type turnView struct {
	Kind types.TurnKind `json:"kind"`
	Turn types.Turn     `json:"turn"`
}

type messageRequest struct {
	Query string `json:"query"`
}

type messageResponse struct {
	Answer     string              `json:"answer"`
	Citations  []string            `json:"citations"`
	References []citation.Citation `json:"references"`
	Markdown   string              `json:"markdown"`
	Usage      types.Usage         `json:"usage"`
	Rejections int                 `json:"rejections"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func viewOf(sess *session.Session) sessionView {
	st := sess.State()
	turns := make([]turnView, len(st.Turns))
	for i, t := range st.Turns {
		turns[i] = turnView{Kind: t.Kind(), Turn: t}
	}
	return sessionView{
		ID:      sess.ID,
		Created: sess.Created,
		Updated: sess.Updated(),
		Turns:   turns,
		Usage:   st.Usage,
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	logging.FromContext(r.Context()).Info("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	out := make([]sessionView, len(list))
	for i, sess := range list {
		out[i] = viewOf(sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	ctx := logging.WithSessionID(r.Context(), sess.ID)
	var res agent.Result
	err = sess.Turn(func(st types.ConversationState) (types.ConversationState, error) {
		var err error
		res, err = s.answerer.Answer(ctx, req.Query, st, s.limits)
		return res.State, err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Answer:     res.Answer,
		Citations:  nonNil(res.Citations),
		References: res.References,
		Markdown:   citation.Markdown(res.References),
		Usage:      res.Usage,
		Rejections: res.Rejections,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// statusOf maps a query failure to an HTTP status.
func statusOf(err error) int {
	var rc *agent.RetryCeilingError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, agent.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrBudgetExceeded), errors.As(err, &rc):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
