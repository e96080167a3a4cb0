package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/engine"
	"github.com/vango-dev/engine/internal/store"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/middleware"
	"github.com/vango-dev/engine/pkg/shell"
)

// Server renders a module factory over HTTP.
type Server struct {
	factory *app.ModuleFactory
	config  *Config

	engine    *engine.Engine
	shell     *shell.Shell
	store     store.Store
	providers []inject.Provider

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	logger     *slog.Logger

	// Renders in flight, keyed by request URL.
	group singleflight.Group

	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithEngine sets the engine used to render. Default: engine.New() with the
// server logger.
func WithEngine(e *engine.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}

// WithShell sets the document shell. Default: the platform default shell.
func WithShell(sh *shell.Shell) Option {
	return func(s *Server) {
		s.shell = sh
	}
}

// WithStore enables the snapshot cache.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithProviders adds platform providers to every render, e.g. an
// app.RendererToken override.
func WithProviders(providers ...inject.Provider) Option {
	return func(s *Server) {
		s.providers = append(s.providers, providers...)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry registers HTTP metrics with registry and exposes it on
// /metrics. Default: the Prometheus default registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registerer = registry
		s.gatherer = registry
	}
}

// New creates a Server for factory.
func New(factory *app.ModuleFactory, config *Config, opts ...Option) *Server {
	s := &Server{
		factory:    factory,
		config:     config.withDefaults(),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.engine == nil {
		s.engine = engine.New(engine.WithLogger(s.logger))
	}
	base := s.logger
	s.logger = s.logger.With("component", "server")
	s.handler = s.routes(base)
	return s
}

func (s *Server) routes(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing(middleware.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
	})))
	r.Use(middleware.Prometheus(middleware.WithRegistry(s.registerer)))
	r.Use(chimw.GetHead)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/*", s.handleRender)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
