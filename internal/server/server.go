// Package server exposes the preprocessing pipeline over HTTP. It owns
// request validation, size limits, and error-status mapping; the pipeline
// itself never sees a malformed request.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Server is the preprocessing HTTP service.
type Server struct {
	config   Config
	logger   *slog.Logger
	validate *validator.Validate
	http     *http.Server
}

// New creates a Server with its routes mounted.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:   cfg,
		logger:   logger,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	r.Get("/", s.handleHome)
	r.Post("/preprocess", s.handlePreprocess)
	r.Post("/preprocess/validate", s.handleValidate)
	r.Get("/preprocess/config", s.handleConfig)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the mounted router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("preprocessing service listening", "addr", s.config.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
