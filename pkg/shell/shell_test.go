package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/engine/pkg/dom"
)

func TestDefaultTemplate(t *testing.T) {
	s, err := New("", Data{Title: "Shop", AppID: "shop"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := s.ForURL("/cart")
	if err != nil {
		t.Fatalf("ForURL() error = %v", err)
	}

	for _, want := range []string{
		`<html lang="en">`,
		"<title>Shop</title>",
		`<body data-app="shop">`,
		"<app-root></app-root>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<base") {
		t.Errorf("unexpected <base> without base href:\n%s", out)
	}

	doc, err := dom.Parse(out)
	if err != nil {
		t.Fatalf("dom.Parse() error = %v", err)
	}
	if got := doc.Title(); got != "Shop" {
		t.Errorf("Title() = %q, want Shop", got)
	}
	if !doc.HasElement("app-root") {
		t.Error("document has no app-root")
	}
}

func TestRenderOverridesDefaults(t *testing.T) {
	s, err := New("", Data{Title: "Shop", Lang: "de", BaseHref: "/store/"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := s.Render(Data{Title: "Cart"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "<title>Cart</title>") {
		t.Errorf("title not overridden:\n%s", out)
	}
	if !strings.Contains(out, `<html lang="de">`) || !strings.Contains(out, `<base href="/store/">`) {
		t.Errorf("defaults not applied:\n%s", out)
	}
}

func TestRenderEscapes(t *testing.T) {
	s, err := New(`<title>{{ title }}</title><p>{{ url }}</p>`, Data{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := s.Render(Data{Title: "<script>alert(1)</script>", URL: `/q?a="b"`})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("title not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped title: %s", out)
	}
	if !strings.Contains(out, "&quot;b&quot;") {
		t.Errorf("expected escaped url: %s", out)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.html"),
		[]byte(`<html><head><title>{% block title %}{{ title }}{% endblock %}</title></head><body>{% block body %}{% endblock %}</body></html>`), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path,
		[]byte(`{% extends "base.html" %}{% block body %}<app-root data-url="{{ url }}"></app-root>{% endblock %}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path, Data{Title: "Docs"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	out, err := s.ForURL("/guide")
	if err != nil {
		t.Fatalf("ForURL() error = %v", err)
	}
	want := `<html><head><title>Docs</title></head><body><app-root data-url="/guide"></app-root></body></html>`
	if out != want {
		t.Errorf("ForURL() =\n%s\nwant\n%s", out, want)
	}
}

func TestErrors(t *testing.T) {
	if _, err := New("{% if %}", Data{}); err == nil {
		t.Error("New() with invalid template: expected error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.html"), Data{}); err == nil {
		t.Error("Load() of missing file: expected error")
	}
}
