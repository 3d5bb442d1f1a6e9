// Package server provides the HTTP API for Quotable.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/quotable-io/quotable/internal/config"
	"github.com/quotable-io/quotable/internal/quotes"
)

// Server is the HTTP server for the Quotable API.
type Server struct {
	service *quotes.Service
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	version string
}

// NewServer creates a server with the given dependencies.
func NewServer(svc *quotes.Service, cfg *config.ServerConfig, logger *zap.Logger, version string) *Server {
	return &Server{
		service: svc,
		config:  cfg,
		logger:  logger,
		version: version,
	}
}

// Handler returns the routed HTTP handler. Exposed so tests can drive the
// full stack without binding a port.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/quotes", s.handleQuotes)
	r.Get("/quotes/random", s.handleRandomQuote)
	r.Post("/quotes/init", s.handleInitQuotes)
	r.Post("/quotes/clean", s.handleCleanQuotes)
	r.Get("/words", s.handleWords)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
