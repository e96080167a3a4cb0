// Package server serves server-rendered pages over HTTP.
//
// A Server owns a precompiled *app.ModuleFactory and renders it for every
// GET request through the engine. Concurrent requests for the same URL
// share one render. When a snapshot store is configured, rendered pages are
// written to it and served from it on later requests.
//
// Routes:
//
//	GET /healthz   liveness probe
//	GET /metrics   Prometheus exposition
//	GET /*         rendered page
//
// The handler is a chi router and can be mounted into a larger application:
//
//	srv := server.New(factory, server.DefaultConfig(), server.WithShell(sh))
//	r := chi.NewRouter()
//	r.Mount("/", srv.Handler())
package server
