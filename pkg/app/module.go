package app

import (
	"fmt"
	"strings"

	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/vdom"
)

// Module is an application descriptor.
type Module struct {
	// Name identifies the module in logs and errors.
	Name string

	// Imports are compiled before this module. Their providers can be
	// overridden by the importing module.
	Imports []*Module

	// Providers are registered in the module injector.
	Providers []inject.Provider

	// Bootstrap lists root components and the host elements they mount into.
	Bootstrap []Bootstrap

	// Initializers run in order during Create, after imported initializers.
	Initializers []Initializer
}

// Bootstrap binds a root component to its host element.
type Bootstrap struct {
	// Selector is a tag name ("app-root") or an id ("#app").
	Selector string

	// Component builds the root component from the module injector.
	Component func(r inject.Resolver) (vdom.Component, error)
}

// ImportCycleError reports a module that transitively imports itself.
type ImportCycleError struct {
	Path []string
}

func (e ImportCycleError) Error() string {
	return "module import cycle: " + strings.Join(e.Path, " -> ")
}

// ModuleFactory is a compiled Module. It is immutable and may be created any
// number of times, concurrently.
type ModuleFactory struct {
	name      string
	modules   []string
	providers []inject.Provider
	bootstrap []Bootstrap
}

// Name returns the root module name.
func (f *ModuleFactory) Name() string { return f.name }

// Modules returns the compiled module names in registration order.
func (f *ModuleFactory) Modules() []string {
	out := make([]string, len(f.modules))
	copy(out, f.modules)
	return out
}

// Compile flattens mod and its imports into a ModuleFactory. Imports are
// visited depth first; a module imported more than once is registered once.
func Compile(mod *Module) (*ModuleFactory, error) {
	if mod == nil {
		return nil, errors.New("E205").WithDetail("module is nil")
	}

	c := &compiler{visited: make(map[*Module]bool)}
	if err := c.visit(mod, nil); err != nil {
		return nil, errors.New("E205").
			WithDetail(fmt.Sprintf("compiling %s", moduleName(mod))).
			Wrap(err)
	}

	return &ModuleFactory{
		name:      moduleName(mod),
		modules:   c.names,
		providers: c.providers,
		bootstrap: mod.Bootstrap,
	}, nil
}

type compiler struct {
	visited   map[*Module]bool
	names     []string
	providers []inject.Provider
}

func (c *compiler) visit(mod *Module, path []*Module) error {
	for i, m := range path {
		if m == mod {
			names := make([]string, 0, len(path)-i+1)
			for _, p := range path[i:] {
				names = append(names, moduleName(p))
			}
			return ImportCycleError{Path: append(names, moduleName(mod))}
		}
	}
	if c.visited[mod] {
		return nil
	}

	path = append(path, mod)
	for _, imp := range mod.Imports {
		if imp == nil {
			return fmt.Errorf("%s imports a nil module", moduleName(mod))
		}
		if err := c.visit(imp, path); err != nil {
			return err
		}
	}

	for _, b := range mod.Bootstrap {
		if strings.TrimSpace(b.Selector) == "" {
			return fmt.Errorf("%s bootstraps a component without selector", moduleName(mod))
		}
		if b.Component == nil {
			return fmt.Errorf("%s bootstraps %q without component", moduleName(mod), b.Selector)
		}
	}

	c.visited[mod] = true
	c.names = append(c.names, moduleName(mod))
	c.providers = append(c.providers, mod.Providers...)
	for _, init := range mod.Initializers {
		if init != nil {
			c.providers = append(c.providers, inject.Multi(AppInitializer, init))
		}
	}
	return nil
}

func moduleName(mod *Module) string {
	if mod.Name == "" {
		return "<anonymous>"
	}
	return mod.Name
}
