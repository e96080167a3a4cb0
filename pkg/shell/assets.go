package shell

import (
	"encoding/json"
	"fmt"
	"os"
)

// Assets resolves asset names to their fingerprinted URLs using a build
// manifest such as:
//
//	{
//	  "app.js": "app.a1b2c3d4.js",
//	  "app.css": "app.e5f6a7b8.css"
//	}
//
// Names missing from the manifest resolve to themselves, so a nil manifest
// behaves as a passthrough in development. Assets is read-only after
// construction and safe for concurrent use.
type Assets struct {
	prefix  string
	entries map[string]string
}

// NewAssets returns assets served below prefix, e.g. "/static/".
func NewAssets(prefix string, entries map[string]string) *Assets {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Assets{prefix: prefix, entries: copied}
}

// LoadAssets reads a JSON manifest.
func LoadAssets(path, prefix string) (*Assets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shell: read asset manifest: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("shell: parse asset manifest %s: %w", path, err)
	}
	return &Assets{prefix: prefix, entries: entries}, nil
}

// URL returns the public URL of the asset name.
func (a *Assets) URL(name string) string {
	if a == nil {
		return name
	}
	if resolved, ok := a.entries[name]; ok {
		return a.prefix + resolved
	}
	return a.prefix + name
}

// Len returns the number of manifest entries.
func (a *Assets) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}
