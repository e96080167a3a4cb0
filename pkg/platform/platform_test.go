package platform

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/vdom"
)

func rootModule(text string) *app.Module {
	return &app.Module{
		Name: "root",
		Bootstrap: []app.Bootstrap{{
			Selector: "app-root",
			Component: func(inject.Resolver) (vdom.Component, error) {
				return vdom.Func(func() *vdom.VNode { return vdom.H1(text) }), nil
			},
		}},
	}
}

func TestPlatformUsesInitialConfig(t *testing.T) {
	p, err := NewDynamicServer(inject.Value(InitialConfigToken, InitialConfig{
		Document: `<html><head><title>Shop</title></head><body><app-root></app-root></body></html>`,
		URL:      "/cart?step=2",
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if got := p.State().Document().Title(); got != "Shop" {
		t.Errorf("title = %q", got)
	}
	loc, err := inject.Resolve[app.Location](p.Injector(), app.LocationToken)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/cart" || loc.Query.Get("step") != "2" {
		t.Errorf("location = %+v", loc)
	}
}

func TestPlatformDefaultShell(t *testing.T) {
	p, err := NewServer()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if !p.State().Document().HasElement("app-root") {
		t.Error("default shell should contain <app-root>")
	}
}

func TestExtraProvidersOverrideDefaults(t *testing.T) {
	doc := dom.MustParse(`<html><body><app-root></app-root><footer></footer></body></html>`)
	p, err := NewServer(inject.Value(app.DocumentToken, doc))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()
	if p.State().Document() != doc {
		t.Error("extra provider should replace the platform document")
	}
}

func TestBootstrapModuleRenders(t *testing.T) {
	p, err := NewDynamicServer()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	ref, err := p.BootstrapModule(context.Background(), rootModule("Hello"))
	if err != nil {
		t.Fatalf("BootstrapModule: %v", err)
	}
	if p.Module() != ref {
		t.Error("Module should return the bootstrapped ref")
	}
	out, err := p.State().RenderToString()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<app-root><h1>Hello</h1></app-root>") {
		t.Errorf("output = %s", out)
	}
}

func TestServerPlatformCannotCompile(t *testing.T) {
	p, _ := NewServer()
	defer p.Destroy()
	if _, err := p.BootstrapModule(context.Background(), rootModule("x")); !errors.HasCode(err, "E205") {
		t.Errorf("err = %v, want E205", err)
	}
}

func TestSecondBootstrapFails(t *testing.T) {
	p, _ := NewServer()
	defer p.Destroy()
	f, _ := app.Compile(rootModule("x"))

	if _, err := p.BootstrapModuleFactory(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if _, err := p.BootstrapModuleFactory(context.Background(), f); !errors.HasCode(err, "E203") {
		t.Errorf("err = %v, want E203", err)
	}
}

func TestDestroy(t *testing.T) {
	p, _ := NewServer()
	f, _ := app.Compile(rootModule("x"))
	ref, err := p.BootstrapModuleFactory(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}

	var calls []string
	p.OnDestroy(func() { calls = append(calls, "first") })
	p.OnDestroy(func() { calls = append(calls, "second") })

	if err := p.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := p.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("callbacks = %v, want [first second] exactly once", calls)
	}
	if !p.Destroyed() || !ref.Destroyed() || !p.Injector().Destroyed() {
		t.Error("platform, module and injector should be destroyed")
	}

	late := false
	p.OnDestroy(func() { late = true })
	if !late {
		t.Error("OnDestroy after destroy should run immediately")
	}

	if _, err := p.BootstrapModuleFactory(context.Background(), f); !errors.HasCode(err, "E202") {
		t.Errorf("err = %v, want E202", err)
	}
}
