// Package server exposes the generation engine over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/tutorleap/qgen/internal/qgen"
	"github.com/tutorleap/qgen/internal/ratelimit"
	"github.com/tutorleap/qgen/internal/store"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	Version         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the standard server settings.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Version:         "dev",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server wires the engine, the rate limiter, and persistence behind the
// HTTP routes. st may be nil; conversion history is then simply not kept.
type Server struct {
	engine  *qgen.Service
	limiter *ratelimit.Limiter
	st      *store.Store
	cfg     Config
}

// New creates a Server.
func New(engine *qgen.Service, limiter *ratelimit.Limiter, st *store.Store, cfg Config) *Server {
	return &Server{engine: engine, limiter: limiter, st: st, cfg: cfg}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/generate-questions", s.handleGenerate)
	mux.HandleFunc("/api/conversions", s.handleListConversions)
	mux.HandleFunc("/api/conversions/", s.handleGetConversion)

	return corsMiddleware(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
