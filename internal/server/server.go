// Package server exposes routed runs over HTTP.
//
// The server pairs a [store.RunStore] with a [pipeline.Runner]: POST
// /api/route executes the pipeline and records the run, and the read
// endpoints serve recorded runs, their SVG artifacts, and region queries
// over their routed geometry.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tracelayer/gridroute/pkg/cache"
	"github.com/tracelayer/gridroute/pkg/observability"
	"github.com/tracelayer/gridroute/pkg/pipeline"
	"github.com/tracelayer/gridroute/pkg/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8173"

// Config carries the server's collaborators.
type Config struct {
	Addr   string           // listen address (default DefaultAddr)
	Store  store.RunStore   // run persistence, required
	Runner *pipeline.Runner // pipeline executor; a default one is built when nil
	Logger *log.Logger      // request and lifecycle logging; silent when nil
}

// Server is the HTTP face of the router.
type Server struct {
	store  store.RunStore
	runner *pipeline.Runner
	logger *log.Logger
	http   *http.Server
}

// New assembles the server and its routes. The runner's Store is pointed at
// cfg.Store so executed routes land in the same place the read endpoints
// serve from.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		// Scoped keys keep server cache entries apart from CLI entries on
		// a shared backend.
		runner = pipeline.NewRunner(nil, cache.NewScopedKeyer(nil, "api:"), logger)
	}
	runner.Store = cfg.Store

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		store:  cfg.Store,
		runner: runner,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the configured route tree.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// routes wires the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/route", s.handleRoute)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
				r.Get("/svg", s.handleRunSVG)
				r.Get("/elements", s.handleRunElements)
			})
		})
	})
	return r
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		return s.http.Close()
	}
	return nil
}

// Close shuts the server down immediately.
func (s *Server) Close() error {
	return s.http.Close()
}

// requestLogger logs one line per request with the chi request id and feeds
// the registered observability hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
