package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/vango-dev/engine"
	"github.com/vango-dev/engine/internal/store"
)

// CacheHeader reports how a page was produced: hit (served from the
// snapshot store), miss (rendered for this request) or shared (rendered for
// a concurrent request to the same URL).
const CacheHeader = "X-Render-Cache"

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	target, key := s.target(r)

	if s.store != nil {
		data, err := s.store.Get(r.Context(), key)
		switch {
		case err == nil:
			writePage(w, data, "hit")
			return
		case !stderrors.Is(err, store.ErrNotFound):
			s.logger.Warn("snapshot lookup failed", "key", key, "error", err)
		}
	}

	v, err, shared := s.group.Do(target, func() (any, error) {
		return s.render(r.Context(), target, key)
	})
	if err != nil {
		s.fail(w, r, target, err)
		return
	}
	result := "miss"
	if shared {
		result = "shared"
	}
	writePage(w, v.([]byte), result)
}

// render runs detached from the request that started it so that a client
// disconnect does not fail the requests sharing the render.
func (s *Server) render(ctx context.Context, target, key string) ([]byte, error) {
	ctx = context.WithoutCancel(ctx)
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	var doc string
	if s.shell != nil {
		var err error
		if doc, err = s.shell.ForURL(target); err != nil {
			return nil, err
		}
	}

	res, err := s.engine.RenderModuleFactory(ctx, s.factory, engine.RenderOptions{
		Document:       doc,
		URL:            target,
		ExtraProviders: s.providers,
	})
	if err != nil {
		return nil, err
	}
	page := []byte(res.HTML)

	if s.store != nil {
		if err := s.store.Put(ctx, key, page); err != nil {
			s.logger.Warn("snapshot write failed", "key", key, "error", err)
		}
	}
	return page, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, target string, err error) {
	code := http.StatusInternalServerError
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
	}
	s.logger.ErrorContext(r.Context(), "render failed", "url", target, "status", code, "error", err)
	http.Error(w, http.StatusText(code), code)
}

func writePage(w http.ResponseWriter, page []byte, cache string) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(page)))
	h.Set(CacheHeader, cache)
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// target returns the absolute URL to render for r and its snapshot key.
func (s *Server) target(r *http.Request) (string, string) {
	if s.config.PublicURL != "" {
		uri := r.URL.RequestURI()
		return s.config.PublicURL + uri, store.Key(uri)
	}
	target := requestURL(r)
	return target, store.OriginKey(target)
}

// requestURL reconstructs the absolute URL of r from its headers.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
