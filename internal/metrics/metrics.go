// Package metrics holds the Prometheus collectors of the render engine.
//
// Metrics collected:
//   - vango_engine_renders_total: Counter of renders by entry point and status
//   - vango_engine_render_duration_seconds: Histogram of render duration by entry point
//   - vango_engine_stabilize_duration_seconds: Histogram of time spent waiting for stability
//   - vango_engine_hook_failures_total: Counter of failed before-app-serialized hooks
//   - vango_engine_platforms_active: Gauge of platforms not yet destroyed
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "vango").
	Namespace string

	// Subsystem is the metrics subsystem (default: "engine").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vango",
		Subsystem: "engine",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Render statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the engine collectors.
type Metrics struct {
	rendersTotal      *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	stabilizeDuration prometheus.Histogram
	hookFailures      prometheus.Counter
	platformsActive   prometheus.Gauge
}

// New registers the collectors. Registering twice with the same registry
// panics, like promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of renders by entry point and status",
			ConstLabels: config.ConstLabels,
		}, []string{"entry", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render duration in seconds, bootstrap to serialization",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"entry"}),

		stabilizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stabilize_duration_seconds",
			Help:        "Time spent waiting for the application to become stable",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		hookFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hook_failures_total",
			Help:        "Total number of before-app-serialized hooks that failed",
			ConstLabels: config.ConstLabels,
		}),

		platformsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "platforms_active",
			Help:        "Number of render platforms created and not yet destroyed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender records a finished render.
func (m *Metrics) ObserveRender(entry string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.rendersTotal.WithLabelValues(entry, status).Inc()
	m.renderDuration.WithLabelValues(entry).Observe(d.Seconds())
}

// ObserveStabilize records the stability wait.
func (m *Metrics) ObserveStabilize(d time.Duration) {
	if m == nil {
		return
	}
	m.stabilizeDuration.Observe(d.Seconds())
}

// HookFailed counts a failed hook.
func (m *Metrics) HookFailed() {
	if m == nil {
		return
	}
	m.hookFailures.Inc()
}

// PlatformCreated increments the active platform gauge.
func (m *Metrics) PlatformCreated() {
	if m == nil {
		return
	}
	m.platformsActive.Inc()
}

// PlatformDestroyed decrements the active platform gauge.
func (m *Metrics) PlatformDestroyed() {
	if m == nil {
		return
	}
	m.platformsActive.Dec()
}
