// Package middleware provides net/http middleware for the render server.
//
// This package includes:
//   - OpenTelemetry request tracing
//   - Prometheus request metrics
//   - Structured request logging with log/slog
//
// Each constructor returns a func(http.Handler) http.Handler and can be
// passed to chi's Router.Use:
//
//	r := chi.NewRouter()
//	r.Use(chimw.RequestID)
//	r.Use(middleware.Tracing())
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Use(middleware.Logger(logger))
//
// # Prometheus Metrics
//
// Prometheus records, per chi route pattern:
//   - vango_http_requests_total{route,code}
//   - vango_http_request_duration_seconds{route}
//   - vango_http_requests_in_flight
//
// Unlike the process-wide default, every call registers its own collectors
// with the configured registry, so tests can use a fresh prometheus.Registry.
package middleware
