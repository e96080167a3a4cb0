package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/engine/internal/store"
	"github.com/vango-dev/engine/pkg/server"
)

func serveCmd(env *cli) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered pages over HTTP",
		Long: `Start an HTTP server that renders the application for every request.

Concurrent requests for the same URL share one render. When a snapshot
store is configured, rendered pages are cached in it. Set server.public_url
to render every page for one canonical origin and share prerendered snapshots.

Endpoints:
  /healthz   liveness probe
  /metrics   Prometheus metrics
  /*         rendered pages

Examples:
  vango-engine serve
  vango-engine serve --port=8080
  vango-engine serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				env.config.Server.Port = port
			}
			if host != "" {
				env.config.Server.Host = host
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, env)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default server.port)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default server.host)")

	return cmd
}

func runServe(ctx context.Context, env *cli) error {
	f, err := env.factory()
	if err != nil {
		return err
	}
	sh, err := env.shell()
	if err != nil {
		return err
	}
	st, err := store.Open(env.config.Store)
	if err != nil {
		return err
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	eng := env.newEngine()
	opts := []server.Option{
		server.WithEngine(eng),
		server.WithShell(sh),
		server.WithLogger(env.logger),
		server.WithRegistry(env.registry),
		server.WithProviders(env.providers()...),
	}
	if st != nil {
		opts = append(opts, server.WithStore(st))
	}

	srv := server.New(f, server.ConfigFrom(env.config), opts...)

	printBanner()
	info("Listening on http://%s", srv.Config().Address)
	return srv.Run(ctx)
}
