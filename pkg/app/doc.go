// Package app describes server-renderable applications.
//
// A Module is a declarative descriptor: providers, imported modules, root
// components to bootstrap and initializers to run first. Compile flattens a
// Module into a ModuleFactory, the precompiled form. Create instantiates the
// factory under a platform injector and returns a ModuleRef, the live
// application context.
//
// The ApplicationRef of a module owns the stability stream. Work started with
// ApplicationRef.Go is tracked: the stream reports false while any task is
// pending and true once the last one finishes and the document has been
// re-rendered.
//
//	mod := &app.Module{
//	    Name:    "shop",
//	    Imports: []*app.Module{app.ServerTransition("shop")},
//	    Bootstrap: []app.Bootstrap{{
//	        Selector:  "app-root",
//	        Component: newRoot,
//	    }},
//	}
//	factory, err := app.Compile(mod)
package app
