package app

import (
	"context"
	"sync"

	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/render"
	"github.com/vango-dev/engine/pkg/stability"
)

// ModuleRef is a created module: the application context of a render.
type ModuleRef struct {
	name     string
	injector *inject.Injector
	appRef   *ApplicationRef

	once       sync.Once
	mu         sync.Mutex
	destroyed  bool
	destroyErr error
}

// Name returns the module name.
func (m *ModuleRef) Name() string { return m.name }

// Injector returns the module injector. It stays readable after Destroy.
func (m *ModuleRef) Injector() *inject.Injector { return m.injector }

// ApplicationRef returns the application of the module.
func (m *ModuleRef) ApplicationRef() *ApplicationRef { return m.appRef }

// Destroy stops the application and destroys the module injector. It is
// safe to call more than once; later calls return the first result.
func (m *ModuleRef) Destroy() error {
	m.once.Do(func() {
		m.appRef.destroy()
		err := m.injector.Destroy()
		m.mu.Lock()
		m.destroyed = true
		m.destroyErr = err
		m.mu.Unlock()
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyErr
}

// Destroyed reports whether Destroy has run.
func (m *ModuleRef) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// Create instantiates the factory under parent, which must provide
// DocumentToken. Initializers run in order, then every bootstrap component
// is mounted and rendered once. On failure the partially created module is
// destroyed and the error is returned unchanged.
func (f *ModuleFactory) Create(ctx context.Context, parent *inject.Injector) (*ModuleRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := inject.Resolve[*dom.Document](parent, DocumentToken)
	if err != nil {
		return nil, err
	}
	renderer := inject.Lookup[*render.Renderer](parent, RendererToken, nil)
	if renderer == nil {
		renderer = render.NewRenderer(render.RendererConfig{})
	}

	appRef := newApplicationRef(ctx, doc, renderer)
	providers := make([]inject.Provider, 0, len(f.providers)+1)
	providers = append(providers, f.providers...)
	providers = append(providers, inject.Value(ApplicationRefToken, appRef))

	ref := &ModuleRef{
		name:     f.name,
		injector: inject.New(f.name, parent, providers...),
		appRef:   appRef,
	}

	appRef.stable = inject.Lookup[*stability.Signal](ref.injector, StabilityToken, nil)

	if err := f.init(ctx, ref); err != nil {
		_ = ref.Destroy()
		return nil, err
	}
	return ref, nil
}

func (f *ModuleFactory) init(ctx context.Context, ref *ModuleRef) error {
	inits, err := inject.All[Initializer](ref.injector, AppInitializer)
	if err != nil {
		return err
	}
	for _, init := range inits {
		if err := init(ctx, ref.injector); err != nil {
			return err
		}
	}

	for _, b := range f.bootstrap {
		comp, err := b.Component(ref.injector)
		if err != nil {
			return err
		}
		if err := ref.appRef.mount(b.Selector, comp); err != nil {
			return err
		}
	}
	return ref.appRef.Tick()
}
