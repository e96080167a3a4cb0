package server

import (
	"strings"
	"time"

	"github.com/vango-dev/engine/internal/config"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address. Default: "localhost:3000".
	Address string

	// ReadTimeout and WriteTimeout bound the HTTP connection.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// RequestTimeout bounds a single render, including waiting for the
	// application to stabilize. Zero means no limit.
	RequestTimeout time.Duration

	// PublicURL is the canonical origin renders use, e.g.
	// "https://shop.example". When set, the Host and X-Forwarded-Proto
	// request headers are ignored and snapshots share the keys written by
	// prerender. When empty, the origin comes from the request and snapshot
	// keys include scheme and host.
	PublicURL string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Address:         "localhost:3000",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  15 * time.Second,
	}
}

// ConfigFrom converts the server section of the engine configuration.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Address:         cfg.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		PublicURL:       cfg.Server.PublicURL,
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	out.PublicURL = strings.TrimRight(out.PublicURL, "/")
	return &out
}
