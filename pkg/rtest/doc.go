// Package rtest provides testing helpers for server-rendered applications.
//
// The rtest package reduces boilerplate when testing renders by providing a
// fluent module builder, recording hooks, disposal spies and HTML
// assertions.
//
// # Quick Start
//
//	func TestHomePage(t *testing.T) {
//	    mod := rtest.NewModule("home").
//	        WithTransition("home").
//	        WithRoot("app-root", func() *vdom.VNode { return vdom.H1("Welcome") }).
//	        Build()
//	    res, err := engine.RenderModule(ctx, mod, engine.RenderOptions{})
//	    if err != nil {
//	        t.Fatalf("unexpected error: %v", err)
//	    }
//	    rtest.ExpectContains(t, res.HTML, "<h1>Welcome</h1>")
//	}
//
// # Recording Hooks
//
// A Recorder hands out hooks that log their invocation order:
//
//	rec := rtest.NewRecorder()
//	mod := rtest.NewModule("app").
//	    WithTransition("app").
//	    WithHook(rec.Hook("first", nil)).
//	    WithHook(rec.Hook("second", func(context.Context, *dom.Document) error {
//	        return errors.New("boom")
//	    })).
//	    Build()
//	// ... render ...
//	// rec.Calls() == []string{"first", "second"}
//
// # Disposal Spies
//
// A Spy is an io.Closer registered as a platform provider. It counts how
// often the platform injector closed it:
//
//	spy := rtest.NewSpy()
//	opts := engine.RenderOptions{ExtraProviders: []inject.Provider{spy.Provider()}}
//	mod := rtest.NewModule("app").WithTransition("app").WithInit(spy.Touch).Build()
package rtest
