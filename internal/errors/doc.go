// Package errors provides structured, coded errors for the render engine.
//
// Every failure the engine raises on its own behalf carries a code (e.g.
// "E201") that maps to a registered template with a category, a short
// message, a longer explanation and a documentation URL. Errors coming from
// application code (bootstrap failures, initializers, factories) are never
// converted: they propagate to callers unchanged.
//
// # Categories
//
//   - config: misconfiguration of the application or the engine
//   - platform: lifecycle violations of a platform or injector
//   - render: failures while producing HTML
//   - store: snapshot storage failures
//   - cli: command line errors
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetail("module \"shop\" has no transition id").
//	    WithSuggestion("Import app.ServerTransition(\"shop\") in the root module")
//
//	fmt.Println(err.Format())
//
// Coded errors compare equal under errors.Is when their codes match, so
// callers can test against a zero-detail instance:
//
//	if errors.Is(err, errors.New("E201")) { ... }
package errors
