// Package prerender renders a fixed list of routes ahead of time and writes
// the resulting documents to a snapshot store.
package prerender

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/engine"
	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/internal/store"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/inject"
)

// Manifest lists the routes to prerender.
type Manifest struct {
	// Routes are request URLs relative to the site root, e.g. "/about".
	Routes []string `yaml:"routes"`
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E401").WithDetail("read " + path).Wrap(err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Routes are trimmed and
// deduplicated, keeping the first occurrence.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New("E401").Wrap(err)
	}

	seen := make(map[string]bool, len(m.Routes))
	routes := make([]string, 0, len(m.Routes))
	for _, r := range m.Routes {
		r = strings.TrimSpace(r)
		if !strings.HasPrefix(r, "/") {
			return nil, errors.New("E401").WithDetail(fmt.Sprintf("route %q must start with /", r))
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		routes = append(routes, r)
	}
	if len(routes) == 0 {
		return nil, errors.New("E401").WithDetail("no routes")
	}
	m.Routes = routes
	return &m, nil
}

// Renderer renders a compiled module. *engine.Engine implements it.
type Renderer interface {
	RenderModuleFactory(ctx context.Context, f *app.ModuleFactory, opts engine.RenderOptions) (*engine.RenderResult, error)
}

// Options configure Run.
type Options struct {
	// Renderer defaults to engine.New().
	Renderer Renderer

	// Concurrency bounds the number of renders in flight. Default: 4.
	Concurrency int

	// Document builds the document shell for a render URL (Origin followed
	// by the route). Nil uses the platform default shell.
	Document func(url string) (string, error)

	// Origin is prepended to each route to form the render URL, e.g.
	// "https://shop.example". Snapshot keys do not depend on it.
	Origin string

	// Providers are added to the platform of every render.
	Providers []inject.Provider

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result describes one prerendered route.
type Result struct {
	Route    string
	Key      string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Report is the outcome of Run, ordered by manifest position.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Run renders every manifest route and stores the result under
// store.Key(route). A failing route does not stop the others; if any route
// fails Run returns the full report together with an E402 error.
func Run(ctx context.Context, f *app.ModuleFactory, st store.Store, m *Manifest, opts Options) (*Report, error) {
	if st == nil {
		return nil, errors.New("E122").WithDetail("prerender requires a snapshot store")
	}
	if opts.Renderer == nil {
		opts.Renderer = engine.New()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "prerender")

	report := &Report{Results: make([]Result, len(m.Routes))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, route := range m.Routes {
		g.Go(func() error {
			// Routes queued behind the limit do not start once the run is over.
			if err := ctx.Err(); err != nil {
				mu.Lock()
				report.Results[i] = Result{Route: route, Key: store.Key(route), Err: err}
				mu.Unlock()
				return err
			}

			res := renderRoute(gctx, f, st, route, opts)
			mu.Lock()
			report.Results[i] = res
			mu.Unlock()

			if res.Err != nil {
				logger.Error("prerender failed", "route", route, "error", res.Err)
			} else {
				logger.Info("prerendered", "route", route, "key", res.Key,
					"bytes", res.Bytes, "duration", res.Duration)
			}
			// Only the caller's context ending aborts the run.
			if res.Err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	failed := report.Failed()
	if len(failed) == 0 {
		return report, nil
	}
	routes := make([]string, len(failed))
	errs := make([]error, len(failed))
	for i, res := range failed {
		routes[i] = res.Route
		errs[i] = fmt.Errorf("%s: %w", res.Route, res.Err)
	}
	sort.Strings(routes)
	return report, errors.New("E402").
		WithDetail(fmt.Sprintf("%d of %d routes failed: %s", len(failed), len(m.Routes), strings.Join(routes, ", "))).
		Wrap(stderrors.Join(errs...))
}

func renderRoute(ctx context.Context, f *app.ModuleFactory, st store.Store, route string, opts Options) (res Result) {
	start := time.Now()
	res = Result{Route: route, Key: store.Key(route)}
	defer func() { res.Duration = time.Since(start) }()

	target := strings.TrimRight(opts.Origin, "/") + route

	var doc string
	if opts.Document != nil {
		var err error
		if doc, err = opts.Document(target); err != nil {
			res.Err = err
			return res
		}
	}

	out, err := opts.Renderer.RenderModuleFactory(ctx, f, engine.RenderOptions{
		Document:       doc,
		URL:            target,
		ExtraProviders: opts.Providers,
	})
	if err != nil {
		res.Err = err
		return res
	}
	if err := st.Put(ctx, res.Key, []byte(out.HTML)); err != nil {
		res.Err = err
		return res
	}
	res.Bytes = len(out.HTML)
	return res
}
