package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAssetsURL(t *testing.T) {
	a := NewAssets("/static/", map[string]string{
		"app.js":  "app.a1b2c3d4.js",
		"app.css": "app.e5f6a7b8.css",
	})

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"fingerprinted script", "app.js", "/static/app.a1b2c3d4.js"},
		{"fingerprinted style", "app.css", "/static/app.e5f6a7b8.css"},
		{"missing entry keeps name", "logo.svg", "/static/logo.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.URL(tt.source); got != tt.expected {
				t.Errorf("URL(%q) = %q, want %q", tt.source, got, tt.expected)
			}
		})
	}

	var none *Assets
	if got := none.URL("app.js"); got != "app.js" {
		t.Errorf("nil Assets URL = %q, want passthrough", got)
	}
	if none.Len() != 0 || a.Len() != 2 {
		t.Errorf("Len() = %d/%d, want 0/2", none.Len(), a.Len())
	}
}

func TestNewAssetsCopiesEntries(t *testing.T) {
	entries := map[string]string{"app.js": "app.1.js"}
	a := NewAssets("", entries)
	entries["app.js"] = "app.2.js"

	if got := a.URL("app.js"); got != "app.1.js" {
		t.Errorf("URL() = %q, want app.1.js", got)
	}
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(`{"app.css": "app.123.css"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadAssets(path, "/public/")
	if err != nil {
		t.Fatalf("LoadAssets() error = %v", err)
	}
	if got := a.URL("app.css"); got != "/public/app.123.css" {
		t.Errorf("URL() = %q", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAssets(bad, ""); err == nil {
		t.Error("LoadAssets(bad) expected error")
	}
	if _, err := LoadAssets(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("LoadAssets(missing) expected error")
	}
}

func TestDefaultTemplateLinksAssets(t *testing.T) {
	assets := NewAssets("/static/", map[string]string{"app.css": "app.e5f6.css", "app.js": "app.a1b2.js"})
	s, err := New("", Data{Styles: []string{"app.css"}, Scripts: []string{"app.js"}}, WithAssets(assets))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := s.ForURL("/")
	if err != nil {
		t.Fatalf("ForURL() error = %v", err)
	}

	head, body, ok := strings.Cut(out, "</head>")
	if !ok {
		t.Fatalf("no </head> in:\n%s", out)
	}
	if !strings.Contains(head, `<link rel="stylesheet" href="/static/app.e5f6.css">`) {
		t.Errorf("stylesheet not linked in head:\n%s", head)
	}
	if !strings.Contains(body, `<script src="/static/app.a1b2.js" defer></script>`) {
		t.Errorf("script not linked in body:\n%s", body)
	}
}

func TestCustomTemplateCallsAsset(t *testing.T) {
	s, err := New(`<img src="{{ asset("logo.svg") }}">`, Data{}, WithAssets(NewAssets("/img/", nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := s.Render(Data{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != `<img src="/img/logo.svg">` {
		t.Errorf("Render() = %q", out)
	}
}
