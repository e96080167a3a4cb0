package main

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/engine"
	"github.com/vango-dev/engine/internal/config"
	"github.com/vango-dev/engine/internal/demo"
	"github.com/vango-dev/engine/internal/logging"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/render"
	"github.com/vango-dev/engine/pkg/shell"
)

// cli holds the state shared by all commands after setup.
type cli struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string

	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

// setup loads .env files and the configuration, then installs the logger.
func (c *cli) setup() error {
	if err := config.LoadDotEnv(c.envFiles...); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg

	c.logger = logging.New(os.Stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	slog.SetDefault(c.logger)
	c.logger.Debug("configuration loaded", "path", cfg.Path())
	return nil
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadFile(c.configPath)
	}
	if _, err := os.Stat(config.ConfigFileName); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return config.LoadFile("")
		}
		return nil, err
	}
	return config.Load(".")
}

// newEngine returns an engine whose metrics land in the CLI registry.
func (c *cli) newEngine() *engine.Engine {
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return engine.New(engine.WithLogger(c.logger), engine.WithRegistry(c.registry))
}

// factory compiles the application module once for all renders.
func (c *cli) factory() (*app.ModuleFactory, error) {
	return app.Compile(demo.Module(c.config.Render.AppID))
}

// shell builds the document shell from the render configuration.
func (c *cli) shell() (*shell.Shell, error) {
	r := c.config.Render
	defaults := shell.Data{
		Title:    r.Title,
		Lang:     r.Lang,
		BaseHref: r.BaseHref,
		AppID:    r.AppID,
		Styles:   r.Styles,
		Scripts:  r.Scripts,
	}
	assets := shell.NewAssets(r.AssetPrefix, nil)
	if r.Assets != "" {
		var err error
		if assets, err = shell.LoadAssets(r.Assets, r.AssetPrefix); err != nil {
			return nil, err
		}
		c.logger.Debug("asset manifest loaded", "path", r.Assets, "entries", assets.Len())
	}
	if r.Shell != "" {
		return shell.Load(r.Shell, defaults, shell.WithAssets(assets))
	}
	return shell.New("", defaults, shell.WithAssets(assets))
}

// providers returns the platform providers added to every render.
func (c *cli) providers() []inject.Provider {
	if !c.config.Render.Sanitize {
		return nil
	}
	return []inject.Provider{
		inject.Value(app.RendererToken, render.NewRenderer(render.RendererConfig{Sanitize: true})),
	}
}
