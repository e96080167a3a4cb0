package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/engine/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Store.Backend != BackendNone {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendNone)
	}
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("Server.RequestTimeout = %v, want no timeout", cfg.Server.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "E141") {
		t.Errorf("err = %v, want E141", err)
	}

	configYAML := `
server:
  port: 8080
  host: 0.0.0.0
  request_timeout: 2s
render:
  app_id: shop
  shell: shell.html
  title: Shop
  assets: dist/manifest.json
  styles: [app.css]
store:
  backend: redis
  redis:
    addr: cache:6379
    ttl: 1m
prerender:
  manifest: routes.yaml
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Render.AppID != "shop" || cfg.Render.Title != "Shop" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Render.Lang != "en" {
		t.Errorf("Lang default not applied: %q", cfg.Render.Lang)
	}
	if cfg.Store.Redis.Addr != "cache:6379" || cfg.Store.Redis.TTL != time.Minute {
		t.Errorf("redis = %+v", cfg.Store.Redis)
	}
	if cfg.Store.Redis.Prefix != "vango:engine:" {
		t.Errorf("redis prefix default not applied: %q", cfg.Store.Redis.Prefix)
	}
	if want := filepath.Join(tmpDir, "shell.html"); cfg.Render.Shell != want {
		t.Errorf("Shell = %q, want %q", cfg.Render.Shell, want)
	}
	if want := filepath.Join(tmpDir, "dist", "manifest.json"); cfg.Render.Assets != want {
		t.Errorf("Assets = %q, want %q", cfg.Render.Assets, want)
	}
	if len(cfg.Render.Styles) != 1 || cfg.Render.Styles[0] != "app.css" || cfg.Render.AssetPrefix != "/" {
		t.Errorf("styles = %v prefix = %q", cfg.Render.Styles, cfg.Render.AssetPrefix)
	}
	if want := filepath.Join(tmpDir, "routes.yaml"); cfg.Prerender.Manifest != want {
		t.Errorf("Manifest = %q, want %q", cfg.Prerender.Manifest, want)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q", cfg.Dir())
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	if err := os.WriteFile(path, []byte(`{"server": {"port": 9000}, "log": {"format": "json"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.Log.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.HasCode(err, "E120") {
		t.Errorf("err = %v, want E120", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("VANGO_ENGINE_SERVER_PORT", "4321")
	t.Setenv("VANGO_ENGINE_STORE_BACKEND", "dir")
	t.Setenv("VANGO_ENGINE_LOG_LEVEL", "debug")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("Port = %d, want 4321", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendDir || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Path() != "" || cfg.Dir() != "" {
		t.Error("config without file should have no path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative timeout", func(c *Config) { c.Server.RequestTimeout = -time.Second }},
		{"empty app id", func(c *Config) { c.Render.AppID = " " }},
		{"zero concurrency", func(c *Config) { c.Prerender.Concurrency = 0 }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "memcache" }},
		{"dir without dir", func(c *Config) { c.Store.Backend = BackendDir; c.Store.Dir = "" }},
		{"s3 without bucket", func(c *Config) { c.Store.Backend = BackendS3 }},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Store.Redis.Addr = "" }},
		{"public url without scheme", func(c *Config) { c.Server.PublicURL = "shop.example" }},
		{"public url with path", func(c *Config) { c.Server.PublicURL = "https://shop.example/shop" }},
		{"public url ftp", func(c *Config) { c.Server.PublicURL = "ftp://shop.example" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, "E122") {
				t.Errorf("Validate() = %v, want E122", err)
			}
		})
	}

	cfg := New()
	cfg.Server.PublicURL = "https://shop.example/"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with origin public url = %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(first, []byte("ENGINE_TEST_A=first\nENGINE_TEST_B=first\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("ENGINE_TEST_A=second\nENGINE_TEST_C=second\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENGINE_TEST_B", "env")
	t.Setenv("ENGINE_TEST_A", "")
	os.Unsetenv("ENGINE_TEST_A")
	t.Setenv("ENGINE_TEST_C", "")
	os.Unsetenv("ENGINE_TEST_C")

	if err := LoadDotEnv(first, filepath.Join(dir, "missing.env"), second); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("ENGINE_TEST_A"); got != "first" {
		t.Errorf("A = %q, want first", got)
	}
	if got := os.Getenv("ENGINE_TEST_B"); got != "env" {
		t.Errorf("B = %q, want env", got)
	}
	if got := os.Getenv("ENGINE_TEST_C"); got != "second" {
		t.Errorf("C = %q, want second", got)
	}
}
