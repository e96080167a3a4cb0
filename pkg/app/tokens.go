package app

import (
	"context"

	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
)

var (
	// TransitionID holds the application id shared with the client bootstrap.
	// A module rendered on the server must provide a non-empty value; see
	// ServerTransition.
	TransitionID = inject.NewToken("TransitionID")

	// BeforeAppSerialized collects Hook callbacks run right before the
	// document is serialized.
	BeforeAppSerialized = inject.NewToken("BeforeAppSerialized")

	// AppInitializer collects Initializer callbacks run during Create, before
	// any component is mounted.
	AppInitializer = inject.NewToken("AppInitializer")

	// DocumentToken resolves to the *dom.Document being rendered. Platforms
	// provide it.
	DocumentToken = inject.NewToken("Document")

	// LocationToken resolves to the Location of the render request.
	LocationToken = inject.NewToken("Location")

	// ApplicationRefToken resolves to the module's *ApplicationRef.
	ApplicationRefToken = inject.NewToken("ApplicationRef")

	// StabilityToken optionally replaces the stability stream of the
	// application with a *stability.Signal driven elsewhere.
	StabilityToken = inject.NewToken("Stability")

	// RendererToken optionally overrides the *render.Renderer used to mount
	// components.
	RendererToken = inject.NewToken("Renderer")
)

// Hook runs before serialization. It may patch the document.
type Hook func(ctx context.Context, doc *dom.Document) error

// Initializer runs while a module is created. Long-running work should be
// handed to ApplicationRef.Go so it is tracked for stability.
type Initializer func(ctx context.Context, r inject.Resolver) error

// OnBeforeSerialize registers fn as a BeforeAppSerialized hook.
func OnBeforeSerialize(fn Hook) inject.Provider {
	return inject.Multi(BeforeAppSerialized, fn)
}

// OnInit registers fn as an AppInitializer.
func OnInit(fn Initializer) inject.Provider {
	return inject.Multi(AppInitializer, fn)
}
