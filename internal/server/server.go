// Package server exposes packet generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gompdf/claimpacket/internal/auth"
	"github.com/gompdf/claimpacket/pkg/api"
)

// Generator produces packets. *api.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, claimID, ownerID string) (*api.Packet, error)
}

// Config holds the HTTP settings
type Config struct {
	Addr           string
	JWTSecret      []byte
	RequestTimeout time.Duration
	ShutdownGrace  time.Duration
}

// Server routes export requests to a Generator
type Server struct {
	cfg       Config
	generator Generator
	logger    *slog.Logger
	router    *chi.Mux
}

// New builds the router
func New(cfg Config, generator Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	s := &Server{
		cfg:       cfg,
		generator: generator,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(cfg.JWTSecret))

	r.Get("/healthz", s.handleHealth)
	r.Get("/claims/{id}/export/pdf", s.handleExport)

	s.router = r
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
