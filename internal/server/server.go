// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness check
//	POST /api/v1/layout   frames for a dataset window (JSON)
//	POST /api/v1/render   rendered artifact (?format=svg|png|json)
//	GET  /metrics         Prometheus exposition, when a gatherer is set
//
// Both API routes take the same body:
//
//	{
//	  "items":   [{"id": "a", "width": 100, "height": 80}, ...],
//	  "options": {"lanes": 3, "position": 40, "offset": 0, "count": 12}
//	}
//
// Engine settings missing from options fall back to the server's
// configuration. Snapshots are shared with the CLI when both use the same
// cache backend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stagger/pkg/config"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 15 * time.Second
	maxBodyBytes    = 32 << 20
)

// Server serves layout requests through a pipeline runner. It is safe for
// concurrent use: every request builds its own engine.
type Server struct {
	runner   *pipeline.Runner
	defaults config.Config
	logger   *log.Logger
	gatherer prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// New creates a server. cfg supplies engine defaults and the dataset size
// limit; it is validated here.
func New(runner *pipeline.Runner, cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	s := &Server{runner: runner, defaults: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(s.logger))
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/layout", s.handleLayout)
			r.Post("/render", s.handleRender)
		})
	})

	return r
}

// Run listens on addr until ctx is done, then shuts down gracefully. A
// shutdown triggered by ctx is not an error.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request with charmbracelet/log.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
