package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/engine/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "engine.yaml")
	writeFile(t, cfg, "render:\n  app_id: shop\n  title: Shop\n  lang: nl\nlog:\n  level: error\n")

	out, err := execute(t, "--config", cfg, "render", "/products/1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		`<html lang="nl">`,
		"<h1>Espresso Cup</h1>",
		`<style data-transition="shop">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
}

func TestRenderCommandToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "engine.yaml")
	writeFile(t, cfg, "log:\n  level: error\n")
	target := filepath.Join(dir, "home.html")

	if _, err := execute(t, "--config", cfg, "render", "/", "--out", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<h1>Products</h1>") {
		t.Errorf("file content = %s", data)
	}
}

func TestPrerenderCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "engine.yaml")
	writeFile(t, cfg, `
log:
  level: error
store:
  backend: dir
  dir: out
prerender:
  manifest: routes.yaml
  concurrency: 2
`)
	writeFile(t, filepath.Join(dir, "routes.yaml"), "routes:\n  - /\n  - /products/2\n")

	if _, err := execute(t, "--config", cfg, "prerender"); err != nil {
		t.Fatalf("prerender: %v", err)
	}
	for _, rel := range []string{"out/index.html", "out/products/2/index.html"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("snapshot %s: %v", rel, err)
		}
	}
}

func TestPrerenderRequiresManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "engine.yaml")
	writeFile(t, cfg, "log:\n  level: error\n")

	_, err := execute(t, "--config", cfg, "prerender")
	if !errors.HasCode(err, "E401") {
		t.Errorf("prerender without manifest = %v, want E401", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "engine.yaml")
	writeFile(t, cfg, "server:\n  port: 70000\n")

	_, err := execute(t, "--config", cfg, "render", "/")
	if !errors.HasCode(err, "E122") {
		t.Errorf("render with invalid config = %v, want E122", err)
	}

	_, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), "render", "/")
	if !errors.HasCode(err, "E141") {
		t.Errorf("render with missing config = %v, want E141", err)
	}
}
