package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the render server.
const defaultTracerName = "vango-engine/http"

// TraceConfig configures the tracing middleware.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "vango-engine/http").
	TracerName string

	// Filter determines which requests to trace. Return false to skip.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures the tracing middleware.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly, bypassing the global provider.
func WithTracer(tracer trace.Tracer) TraceOption {
	return func(c *TraceConfig) {
		c.tracer = tracer
	}
}

// WithFilter sets a filter function for requests.
func WithFilter(filter func(r *http.Request) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// Tracing starts a server span for every request and stores it in the
// request context, so the render span started by the engine becomes its
// child. The span is named after the matched chi route once the request
// has been served. 5xx responses mark the span as failed.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure it in main() before starting the server:
//
//	otel.SetTracerProvider(tp)
func Tracing(opts ...TraceOption) func(http.Handler) http.Handler {
	config := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.tracer == nil {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Filter != nil && !config.Filter(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := config.tracer.Start(r.Context(), "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.RequestURI()),
					attribute.String("http.host", r.Host),
				),
			)
			defer span.End()

			if id := chimw.GetReqID(r.Context()); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(ctx)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			span.SetName(fmt.Sprintf("HTTP %s %s", r.Method, route))
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// SpanFromRequest returns the span started by Tracing for r. It returns a
// non-recording span when r was not traced.
func SpanFromRequest(r *http.Request) trace.Span {
	return trace.SpanFromContext(r.Context())
}
