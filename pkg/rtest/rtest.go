package rtest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/render"
	"github.com/vango-dev/engine/pkg/stability"
	"github.com/vango-dev/engine/pkg/vdom"
)

// ModuleBuilder allows fluent construction of test modules.
type ModuleBuilder struct {
	mod *app.Module
}

// NewModule creates a builder for a module named name.
func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{mod: &app.Module{Name: name}}
}

// WithTransition imports app.ServerTransition(appID).
func (b *ModuleBuilder) WithTransition(appID string) *ModuleBuilder {
	b.mod.Imports = append(b.mod.Imports, app.ServerTransition(appID))
	return b
}

// WithImport adds an imported module.
func (b *ModuleBuilder) WithImport(mod *app.Module) *ModuleBuilder {
	b.mod.Imports = append(b.mod.Imports, mod)
	return b
}

// WithRoot bootstraps a component rendering fn into selector.
func (b *ModuleBuilder) WithRoot(selector string, fn func() *vdom.VNode) *ModuleBuilder {
	b.mod.Bootstrap = append(b.mod.Bootstrap, app.Bootstrap{
		Selector: selector,
		Component: func(inject.Resolver) (vdom.Component, error) {
			return vdom.Func(fn), nil
		},
	})
	return b
}

// WithProvider registers a module provider.
func (b *ModuleBuilder) WithProvider(p inject.Provider) *ModuleBuilder {
	b.mod.Providers = append(b.mod.Providers, p)
	return b
}

// WithHook registers a before-app-serialized hook.
func (b *ModuleBuilder) WithHook(h app.Hook) *ModuleBuilder {
	return b.WithProvider(app.OnBeforeSerialize(h))
}

// WithInit registers an initializer.
func (b *ModuleBuilder) WithInit(fn app.Initializer) *ModuleBuilder {
	b.mod.Initializers = append(b.mod.Initializers, fn)
	return b
}

// WithStability replaces the application stability stream with sig.
func (b *ModuleBuilder) WithStability(sig *stability.Signal) *ModuleBuilder {
	return b.WithProvider(inject.Value(app.StabilityToken, sig))
}

// Build returns the module.
func (b *ModuleBuilder) Build() *app.Module {
	return b.mod
}

// Recorder records hook invocations in order. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hook returns a hook that records name and then runs fn, if any.
func (r *Recorder) Hook(name string, fn app.Hook) app.Hook {
	return func(ctx context.Context, doc *dom.Document) error {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
		if fn == nil {
			return nil
		}
		return fn(ctx, doc)
	}
}

// Calls returns the recorded names in invocation order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Spy is a disposal marker. Provide it on a platform, touch it from the
// application, and count how often the platform closed it.
type Spy struct {
	token  *inject.Token
	mu     sync.Mutex
	closed int
}

// NewSpy creates a spy with its own token.
func NewSpy() *Spy {
	return &Spy{token: inject.NewToken("rtest.Spy")}
}

// Provider returns the factory provider that builds the spy.
func (s *Spy) Provider() inject.Provider {
	return inject.Factory(s.token, func(inject.Resolver) (any, error) {
		return s, nil
	})
}

// Touch resolves the spy so its owning injector tracks it. It has the
// app.Initializer signature.
func (s *Spy) Touch(_ context.Context, r inject.Resolver) error {
	_, err := r.Get(s.token)
	return err
}

// Close implements io.Closer.
func (s *Spy) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Closed returns how many times Close ran.
func (s *Spy) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LogCapture collects JSON log records.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogCapture returns a capture and a logger writing into it at debug level.
func NewLogCapture() (*LogCapture, *slog.Logger) {
	c := &LogCapture{}
	return c, slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Write implements io.Writer.
func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Records returns the decoded records. Lines that fail to decode are skipped.
func (c *LogCapture) Records() []map[string]any {
	c.mu.Lock()
	data := c.buf.String()
	c.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the records with the given level and message.
func (c *LogCapture) Find(level slog.Level, msg string) []map[string]any {
	var out []map[string]any
	for _, rec := range c.Records() {
		if rec["level"] == level.String() && rec["msg"] == msg {
			out = append(out, rec)
		}
	}
	return out
}

// RenderToString renders a VNode and returns the HTML string.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that html contains expected.
func ExpectContains(t testing.TB, html, expected string) {
	t.Helper()
	if !strings.Contains(html, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that html does not contain unexpected.
func ExpectNotContains(t testing.TB, html, unexpected string) {
	t.Helper()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that html contains a tag.
func ExpectElement(t testing.TB, html, tag string) {
	t.Helper()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that html contains an attribute value.
func ExpectAttribute(t testing.TB, html, attr, value string) {
	t.Helper()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
