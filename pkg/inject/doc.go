// Package inject provides the hierarchical service resolver used by platforms
// and application modules.
//
// Services are registered under a *Token through providers:
//
//   - Value binds a ready instance
//   - Factory builds an instance lazily, once, on first resolution
//   - Multi contributes one element to an ordered collection
//   - Existing aliases another token
//
// An Injector looks a token up locally and then walks to its parent. Multi
// collections concatenate across the hierarchy, parent contributions first,
// each level in registration order.
//
// Lookup mirrors the "get with default" contract of dependency injection
// containers: it never fails and returns the supplied default when the token
// is not provided.
package inject
