// Package platform provides the per-render server platform.
//
// A Platform owns the document of exactly one render. It is created from
// platform-level providers (InitialConfig first, then any extra providers),
// bootstraps one application module and is destroyed once the document has
// been serialized.
//
// NewDynamicServer can compile module descriptors at bootstrap time.
// NewServer only accepts precompiled factories.
package platform
