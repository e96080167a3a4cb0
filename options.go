package engine

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/engine/internal/metrics"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/platform"
)

// RenderOptions describe a single render request.
type RenderOptions struct {
	// Document is the full HTML document to render into. Empty means the
	// platform default shell.
	Document string

	// URL is the URL of the request being rendered.
	URL string

	// ExtraProviders are platform-level providers for this render. They are
	// registered after the initial config and may override it.
	ExtraProviders []inject.Provider
}

func (o RenderOptions) providers() []inject.Provider {
	out := make([]inject.Provider, 0, len(o.ExtraProviders)+1)
	out = append(out, inject.Value(platform.InitialConfigToken, platform.InitialConfig{
		Document: o.Document,
		URL:      o.URL,
	}))
	return append(out, o.ExtraProviders...)
}

// RenderResult is the outcome of a successful render.
type RenderResult struct {
	// HTML is the serialized document.
	HTML string

	// ModuleRef is the application context of the render. Its platform has
	// already been destroyed; use it for read-only inspection.
	ModuleRef *app.ModuleRef
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry registers render metrics with registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = metrics.New(metrics.WithRegistry(registry))
	}
}

// WithTracer sets the tracer. Default: the global provider's "vango-engine"
// tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}
