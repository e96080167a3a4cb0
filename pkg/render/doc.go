// Package render converts VNode trees into HTML.
//
// Two outputs are supported:
//
//   - RenderToString / RenderToWriter produce HTML text, used for fragments
//     and for tests.
//   - ToNodes builds golang.org/x/net/html nodes, used to mount a component
//     into a platform document before the whole document is serialized.
//
// Both paths share attribute handling: keys are emitted in sorted order for
// deterministic output, boolean attributes are emitted bare, internal props
// (leading underscore) are skipped, and className/htmlFor are mapped to
// class/for.
//
// # Security
//
// Text content and attribute values are always escaped. Raw nodes are
// inserted verbatim unless the renderer has a sanitizing policy:
//
//	r := render.NewRenderer(render.RendererConfig{Sanitize: true})
package render
