// Package server implements the HTTP surface of assignmate: the answer
// endpoint, health checking, and the middleware stack around them.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"assignmate/internal/ai"
	"assignmate/internal/config"
	"assignmate/internal/database"
	"assignmate/internal/local"
	"assignmate/internal/logger"
)

// Deps contains all dependencies required by the HTTP handlers.
type Deps struct {
	Logger   *slog.Logger
	Store    database.Store
	AIClient ai.Client
	Resolver *local.Resolver
	Config   *config.Config
}

// Server wraps the http.Server and its handler dependencies.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
	store      database.Store
	aiClient   ai.Client
	resolver   *local.Resolver
	cfg        *config.Config
}

// New creates the HTTP server with all routes and middleware registered.
func New(deps Deps) *Server {
	s := &Server{
		log:      deps.Logger.With("component", "http_server"),
		store:    deps.Store,
		aiClient: deps.AIClient,
		resolver: deps.Resolver,
		cfg:      deps.Config,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/{$}", s.handleAnswer)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	handler := corsMiddleware(logger.Middleware(deps.Logger)(mux))

	s.httpServer = &http.Server{
		Addr:         deps.Config.Server.Addr,
		Handler:      handler,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	return s
}

// Start begins serving requests. It blocks until the server stops and
// returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured handler stack, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
