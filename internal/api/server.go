// Package api implements the minorminer HTTP service.
//
// The service exposes a synchronous embedding endpoint for small problems
// and asynchronous job endpoints for long-running searches:
//
//	POST /api/v1/embeddings        run an embedding, wait for the result
//	POST /api/v1/jobs              create an embedding job
//	GET  /api/v1/jobs/{id}         poll job status
//	GET  /api/v1/jobs/{id}/result  fetch the finished embedding
//	GET  /api/v1/health            liveness probe
//
// Long searches are CPU-bound, so the router carries a concurrency limiter
// sized to the host in addition to the usual recovery and logging
// middleware.
package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds server configuration.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
}

// DefaultConfig returns sensible defaults for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:          addr,
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  5 * time.Minute,
		MaxConcurrent: runtime.NumCPU(),
	}
}

// NewServer builds the HTTP server with all routes and middleware.
func NewServer(cfg Config, h *Handlers) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(limitConcurrency(cfg.MaxConcurrent))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Post("/embeddings", h.HandleEmbed)
		r.Post("/jobs", h.HandleCreateJob)
		r.Get("/jobs/{id}", h.HandleJobStatus)
		r.Get("/jobs/{id}/result", h.HandleJobResult)
	})

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and shuts it down gracefully when ctx is
// cancelled.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each request with its duration.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).Round(time.Microsecond))
		})
	}
}

// limitConcurrency rejects requests beyond n in flight with a 503 rather
// than queueing CPU-bound searches unboundedly.
func limitConcurrency(n int) func(http.Handler) http.Handler {
	sem := make(chan struct{}, n)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, r)
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			}
		})
	}
}
