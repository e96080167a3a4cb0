// Package store persists rendered HTML snapshots.
//
// Snapshots are keyed by request URL (see Key). The filesystem backend serves
// prerendered sites; S3 and Redis back shared caches for the render server.
// Remote backends sit behind a circuit breaker so an unavailable store
// degrades to rendering instead of stalling requests.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"net/url"
	"path"
	"strings"

	"github.com/vango-dev/engine/internal/config"
	"github.com/vango-dev/engine/internal/errors"
)

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = stderrors.New("store: snapshot not found")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get returns the snapshot stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous snapshot.
	Put(ctx context.Context, key string, data []byte) error
}

// Key derives a snapshot key from a request URL: the cleaned path with an
// index.html leaf. A query string adds a short hash so distinct queries do
// not collide.
//
//	/                 -> index.html
//	/products/42      -> products/42/index.html
//	/search?q=shoes   -> search/index-1a2b3c4d5e6f7a8b.html
func Key(rawURL string) string {
	u, err := url.Parse(rawURL)
	p := rawURL
	query := ""
	if err == nil {
		p = u.Path
		query = u.RawQuery
	}

	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	leaf := "index.html"
	if query != "" {
		sum := sha256.Sum256([]byte(query))
		leaf = "index-" + hex.EncodeToString(sum[:8]) + ".html"
	}
	if p == "" {
		return leaf
	}
	return p + "/" + leaf
}

// OriginKey is Key prefixed with the scheme and host of rawURL, for caches
// shared by several origins. URLs without a host fall back to Key.
//
//	https://shop.example:8443/about -> https/shop.example_8443/about/index.html
func OriginKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Key(rawURL)
	}
	scheme := "http"
	if strings.EqualFold(u.Scheme, "https") {
		scheme = "https"
	}
	return scheme + "/" + hostSegment(u.Host) + "/" + Key(u.RequestURI())
}

// hostSegment maps a host to a single path segment.
func hostSegment(host string) string {
	host = strings.ToLower(host)
	var b strings.Builder
	b.Grow(len(host))
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '.' && b.Len() > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Open builds the store selected by cfg.Backend. The none backend yields a
// nil Store.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendDir:
		return NewDirStore(cfg.Dir)
	case config.BackendS3:
		return NewS3Store(cfg.S3), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.Redis), nil
	default:
		return nil, errors.New("E122").WithDetail("unknown store backend " + cfg.Backend)
	}
}
