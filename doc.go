// Package engine renders server-side applications to HTML.
//
// Each render creates a fresh platform, bootstraps one application module
// into the request document, waits until the application reports itself
// stable, runs the before-app-serialized hooks, serializes the document and
// destroys the platform:
//
//	f, err := app.Compile(shopModule)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.RenderModuleFactory(ctx, f, engine.RenderOptions{
//	    Document: shell,
//	    URL:      r.URL.String(),
//	})
//
// RenderModule accepts an uncompiled *app.Module and compiles it on every
// call. Prefer RenderModuleFactory with a factory compiled once at startup.
//
// The root module must import app.ServerTransition; otherwise rendering fails
// with ErrMissingTransitionID before anything is serialized.
//
// Renders wait for stability as long as ctx allows. The engine imposes no
// timeout of its own: cancel ctx to abandon a render.
package engine
