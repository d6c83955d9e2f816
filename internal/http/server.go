// Package http exposes the JSON API: expense submission and CRUD,
// analytics queries, and token issuance. Everything under /api/v1 is
// behind the bearer-token gate.
package http

import (
	"context"
	"net/http"
	"time"

	"spendlog/internal/auth"
	"spendlog/internal/log"
)

type Server struct {
	*http.Server
	logger *log.Logger
}

func NewServer(addr string, h *Handlers, gate *auth.Gatekeeper, logger *log.Logger) *Server {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/expenses", h.handleSubmit)
	api.HandleFunc("GET /api/v1/expenses/{user_id}", h.handleList)
	api.HandleFunc("GET /api/v1/expenses/{user_id}/{row_id}", h.handleGet)
	api.HandleFunc("PUT /api/v1/expenses/{user_id}/{row_id}", h.handleUpdate)
	api.HandleFunc("DELETE /api/v1/expenses/{user_id}/{row_id}", h.handleDelete)
	api.HandleFunc("POST /api/v1/analytics", h.handleAnalytics)
	api.HandleFunc("GET /api/v1/spending/total/{user_id}", h.handleSpendingTotal)
	api.HandleFunc("GET /api/v1/spending/category/{user_id}", h.handleSpendingByCategory)
	api.HandleFunc("GET /api/v1/search/{user_id}", h.handleSearch)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/verify", h.handleVerify)
	mux.Handle("/api/v1/", gate.Middleware(api))

	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      log.Middleware(logger)(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.WithComponent(log.ComponentHTTP),
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	return s.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}
