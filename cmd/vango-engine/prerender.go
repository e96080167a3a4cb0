package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/engine/internal/config"
	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/internal/prerender"
	"github.com/vango-dev/engine/internal/store"
)

func prerenderCmd(env *cli) *cobra.Command {
	var (
		manifest    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Render every route of a manifest into the snapshot store",
		Long: `Render the routes listed in a YAML manifest and write each document
to the configured snapshot store. Without a configured store, snapshots
are written to store.dir on disk.

Manifest format:
  routes:
    - /
    - /products/1

Examples:
  vango-engine prerender --manifest routes.yaml
  vango-engine prerender --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifest != "" {
				env.config.Prerender.Manifest = manifest
			}
			if concurrency > 0 {
				env.config.Prerender.Concurrency = concurrency
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPrerender(ctx, env)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "Route manifest (default prerender.manifest)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Routes rendered at once (default prerender.concurrency)")

	return cmd
}

func runPrerender(ctx context.Context, env *cli) error {
	cfg := env.config
	if cfg.Prerender.Manifest == "" {
		return errors.New("E401").
			WithDetail("no manifest given").
			WithSuggestion("Pass --manifest or set prerender.manifest")
	}
	m, err := prerender.LoadManifest(cfg.Prerender.Manifest)
	if err != nil {
		return err
	}

	storeCfg := cfg.Store
	if storeCfg.Backend == config.BackendNone || storeCfg.Backend == "" {
		storeCfg.Backend = config.BackendDir
	}
	st, err := store.Open(storeCfg)
	if err != nil {
		return err
	}

	f, err := env.factory()
	if err != nil {
		return err
	}
	sh, err := env.shell()
	if err != nil {
		return err
	}

	printBanner()
	info("Prerendering %d routes (%s store)", len(m.Routes), storeCfg.Backend)

	start := time.Now()
	report, err := prerender.Run(ctx, f, st, m, prerender.Options{
		Renderer:    env.newEngine(),
		Concurrency: cfg.Prerender.Concurrency,
		Document:    sh.ForURL,
		Origin:      cfg.Server.PublicURL,
		Providers:   env.providers(),
		Logger:      env.logger,
	})
	if report != nil {
		for _, res := range report.Results {
			if res.Err != nil {
				errorMsg("%s: %v", res.Route, res.Err)
			}
		}
		done := len(report.Results) - len(report.Failed())
		success("%d/%d routes prerendered in %s", done, len(m.Routes), time.Since(start).Round(time.Millisecond))
	}
	return err
}
