package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/render"
	"github.com/vango-dev/engine/pkg/stability"
	"github.com/vango-dev/engine/pkg/vdom"
)

// ApplicationRef tracks the mounted root components of a module and the
// asynchronous work that keeps it from being stable.
type ApplicationRef struct {
	doc      *dom.Document
	renderer *render.Renderer
	tracker  *stability.Tracker
	stable   *stability.Signal
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	tickMu sync.Mutex
	roots  []mountedRoot

	mu        sync.Mutex
	errs      []error
	destroyed bool
}

type mountedRoot struct {
	selector  string
	component vdom.Component
}

func newApplicationRef(ctx context.Context, doc *dom.Document, renderer *render.Renderer) *ApplicationRef {
	ctx, cancel := context.WithCancel(ctx)
	return &ApplicationRef{
		doc:      doc,
		renderer: renderer,
		tracker:  stability.NewTracker(),
		logger:   slog.Default().With("component", "app"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// IsStable returns the stability stream. It replays the current state to
// new subscribers.
func (a *ApplicationRef) IsStable() *stability.Signal {
	if a.stable != nil {
		return a.stable
	}
	return a.tracker.Signal()
}

// Pending returns the number of unfinished tasks.
func (a *ApplicationRef) Pending() int {
	return a.tracker.Pending()
}

// Document returns the document roots are mounted into.
func (a *ApplicationRef) Document() *dom.Document {
	return a.doc
}

// Go runs fn in a tracked goroutine. When fn returns, the roots are
// re-rendered before the task counts as finished. A failing or panicking
// task is logged and recorded in Errors. Go is a no-op once the application
// has been destroyed.
func (a *ApplicationRef) Go(fn func(ctx context.Context) error) {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		a.logger.Debug("task dropped after destroy")
		return
	}
	done := a.tracker.Begin()
	a.mu.Unlock()

	go func() {
		defer done()
		if err := runTask(a.ctx, fn); err != nil {
			a.fail(err)
		}
		if err := a.Tick(); err != nil {
			a.fail(err)
		}
	}()
}

func runTask(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (a *ApplicationRef) fail(err error) {
	a.logger.Error("application task failed", "error", err)
	a.mu.Lock()
	a.errs = append(a.errs, err)
	a.mu.Unlock()
}

// Errors returns the failures recorded by tracked tasks.
func (a *ApplicationRef) Errors() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]error, len(a.errs))
	copy(out, a.errs)
	return out
}

// Components returns the mounted root components in bootstrap order.
func (a *ApplicationRef) Components() []vdom.Component {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()
	out := make([]vdom.Component, len(a.roots))
	for i, r := range a.roots {
		out[i] = r.component
	}
	return out
}

// Tick re-renders every root component into its host element.
func (a *ApplicationRef) Tick() error {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	if a.Destroyed() {
		return nil
	}
	for _, root := range a.roots {
		if err := a.renderRoot(root); err != nil {
			return err
		}
	}
	return nil
}

func (a *ApplicationRef) mount(selector string, comp vdom.Component) error {
	found := false
	a.doc.View(func(root *html.Node) {
		found = dom.FindFirst(root, hostMatcher(selector)) != nil
	})
	if !found {
		return errors.New("E207").
			WithDetail(fmt.Sprintf("selector %q did not match any element", selector))
	}

	a.tickMu.Lock()
	a.roots = append(a.roots, mountedRoot{selector: selector, component: comp})
	a.tickMu.Unlock()
	return nil
}

func (a *ApplicationRef) renderRoot(root mountedRoot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("E207").WithDetail(fmt.Sprintf("%s panicked: %v", root.selector, r))
		}
	}()

	nodes, err := a.renderer.ToNodes(root.component.Render())
	if err != nil {
		return errors.New("E207").WithDetail(root.selector).Wrap(err)
	}
	return a.doc.Update(func(doc *html.Node) error {
		host := dom.FindFirst(doc, hostMatcher(root.selector))
		if host == nil {
			return errors.New("E207").
				WithDetail(fmt.Sprintf("host %q removed from document", root.selector))
		}
		dom.ReplaceChildren(host, nodes...)
		return nil
	})
}

// Destroyed reports whether the application has been torn down.
func (a *ApplicationRef) Destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}

func (a *ApplicationRef) destroy() {
	a.mu.Lock()
	a.destroyed = true
	a.mu.Unlock()
	a.cancel()
}

func hostMatcher(selector string) func(*html.Node) bool {
	if len(selector) > 1 && selector[0] == '#' {
		return dom.ByID(selector[1:])
	}
	return dom.ByTag(selector)
}
