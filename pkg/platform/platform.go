package platform

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
)

var (
	// InitialConfigToken resolves to the InitialConfig of the render.
	InitialConfigToken = inject.NewToken("InitialConfig")

	// StateToken resolves to the platform *State.
	StateToken = inject.NewToken("PlatformState")
)

// InitialConfig carries the request document and URL into the platform.
type InitialConfig struct {
	Document string
	URL      string
}

// Platform is a single-use server platform.
type Platform struct {
	name     string
	dynamic  bool
	injector *inject.Injector
	state    *State
	logger   *slog.Logger

	mu           sync.Mutex
	module       *app.ModuleRef
	bootstrapped bool
	destroyed    bool
	onDestroy    []func()
}

// NewDynamicServer creates a platform that can compile module descriptors.
func NewDynamicServer(providers ...inject.Provider) (*Platform, error) {
	return newPlatform("dynamic-server", true, providers)
}

// NewServer creates a platform for precompiled module factories.
func NewServer(providers ...inject.Provider) (*Platform, error) {
	return newPlatform("server", false, providers)
}

func newPlatform(name string, dynamic bool, providers []inject.Provider) (*Platform, error) {
	core := []inject.Provider{
		inject.Value(InitialConfigToken, InitialConfig{}),
		inject.Factory(app.DocumentToken, func(r inject.Resolver) (any, error) {
			cfg := inject.Lookup(r, InitialConfigToken, InitialConfig{})
			return dom.Parse(cfg.Document)
		}),
		inject.Factory(app.LocationToken, func(r inject.Resolver) (any, error) {
			cfg := inject.Lookup(r, InitialConfigToken, InitialConfig{})
			return app.ParseLocation(cfg.URL)
		}),
		inject.Factory(StateToken, func(r inject.Resolver) (any, error) {
			doc, err := inject.Resolve[*dom.Document](r, app.DocumentToken)
			if err != nil {
				return nil, err
			}
			return &State{doc: doc}, nil
		}),
	}

	inj := inject.New(name, nil, append(core, providers...)...)
	state, err := inject.Resolve[*State](inj, StateToken)
	if err == nil {
		_, err = inj.Get(app.LocationToken)
	}
	if err != nil {
		_ = inj.Destroy()
		return nil, fmt.Errorf("create %s platform: %w", name, err)
	}

	return &Platform{
		name:     name,
		dynamic:  dynamic,
		injector: inj,
		state:    state,
		logger:   slog.Default().With("component", "platform", "platform", name),
	}, nil
}

// Name returns the platform kind.
func (p *Platform) Name() string { return p.name }

// Injector returns the platform injector.
func (p *Platform) Injector() *inject.Injector { return p.injector }

// State returns the platform state holding the document.
func (p *Platform) State() *State { return p.state }

// Module returns the bootstrapped module, or nil.
func (p *Platform) Module() *app.ModuleRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.module
}

// BootstrapModule compiles mod and bootstraps it. Only dynamic platforms can
// compile.
func (p *Platform) BootstrapModule(ctx context.Context, mod *app.Module) (*app.ModuleRef, error) {
	if !p.dynamic {
		return nil, errors.New("E205").
			WithDetail(fmt.Sprintf("platform %q has no module compiler", p.name)).
			WithSuggestion("Precompile the module with app.Compile and call BootstrapModuleFactory")
	}
	f, err := app.Compile(mod)
	if err != nil {
		return nil, err
	}
	return p.BootstrapModuleFactory(ctx, f)
}

// BootstrapModuleFactory creates the module from f under the platform
// injector. A platform bootstraps at most one module.
func (p *Platform) BootstrapModuleFactory(ctx context.Context, f *app.ModuleFactory) (*app.ModuleRef, error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil, errors.New("E202")
	}
	if p.bootstrapped {
		p.mu.Unlock()
		return nil, errors.New("E203").WithDetail(fmt.Sprintf("cannot bootstrap %s", f.Name()))
	}
	p.bootstrapped = true
	p.mu.Unlock()

	ref, err := f.Create(ctx, p.injector)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		_ = ref.Destroy()
		return nil, errors.New("E202").WithDetail("destroyed during bootstrap")
	}
	p.module = ref
	p.logger.Debug("module bootstrapped", "module", ref.Name())
	return ref, nil
}

// OnDestroy registers fn to run when the platform is destroyed. Callbacks
// run in registration order. Registering after destroy runs fn immediately.
func (p *Platform) OnDestroy(fn func()) {
	p.mu.Lock()
	if !p.destroyed {
		p.onDestroy = append(p.onDestroy, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn()
}

// Destroy tears down the module, runs OnDestroy callbacks and destroys the
// platform injector. Only the first call has an effect.
func (p *Platform) Destroy() error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil
	}
	p.destroyed = true
	module := p.module
	callbacks := p.onDestroy
	p.onDestroy = nil
	p.mu.Unlock()

	var errs []error
	if module != nil {
		if err := module.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, fn := range callbacks {
		fn()
	}
	if err := p.injector.Destroy(); err != nil {
		errs = append(errs, err)
	}
	p.logger.Debug("platform destroyed")
	return stderrors.Join(errs...)
}

// Destroyed reports whether Destroy has been called.
func (p *Platform) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}
