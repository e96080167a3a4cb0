package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/engine/internal/errors"
	"github.com/vango-dev/engine/internal/metrics"
	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
	"github.com/vango-dev/engine/pkg/platform"
	"github.com/vango-dev/engine/pkg/stability"
)

const tracerName = "vango-engine"

// Render entry points, used as the "entry" metric label.
const (
	entryModule  = "module"
	entryFactory = "factory"
)

// ErrMissingTransitionID is matched (via errors.Is) by the error returned
// when the rendered module does not provide app.TransitionID.
var ErrMissingTransitionID = errors.New("E201")

// Engine renders application modules. An Engine holds no per-render state
// and is safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "engine")
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// RenderModule renders mod with the default Engine.
func RenderModule(ctx context.Context, mod *app.Module, opts RenderOptions) (*RenderResult, error) {
	return defaultEngine().RenderModule(ctx, mod, opts)
}

// RenderModuleFactory renders f with the default Engine.
func RenderModuleFactory(ctx context.Context, f *app.ModuleFactory, opts RenderOptions) (*RenderResult, error) {
	return defaultEngine().RenderModuleFactory(ctx, f, opts)
}

// RenderModule compiles mod on a dynamic server platform and renders it.
func (e *Engine) RenderModule(ctx context.Context, mod *app.Module, opts RenderOptions) (*RenderResult, error) {
	name := "<nil>"
	if mod != nil {
		name = mod.Name
	}
	return e.render(ctx, entryModule, name, opts, platform.NewDynamicServer,
		func(ctx context.Context, p *platform.Platform) (*app.ModuleRef, error) {
			return p.BootstrapModule(ctx, mod)
		})
}

// RenderModuleFactory renders a precompiled module factory on a server
// platform.
func (e *Engine) RenderModuleFactory(ctx context.Context, f *app.ModuleFactory, opts RenderOptions) (*RenderResult, error) {
	if f == nil {
		return nil, errors.New("E205").WithDetail("module factory is nil")
	}
	return e.render(ctx, entryFactory, f.Name(), opts, platform.NewServer,
		func(ctx context.Context, p *platform.Platform) (*app.ModuleRef, error) {
			return p.BootstrapModuleFactory(ctx, f)
		})
}

type platformFactory func(providers ...inject.Provider) (*platform.Platform, error)

type bootstrapFunc func(ctx context.Context, p *platform.Platform) (*app.ModuleRef, error)

func (e *Engine) render(ctx context.Context, entry, module string, opts RenderOptions,
	newPlatform platformFactory, bootstrap bootstrapFunc) (res *RenderResult, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("engine.entry", entry),
			attribute.String("engine.module", module),
			attribute.String("engine.url", opts.URL),
		),
	)
	defer func() {
		e.metrics.ObserveRender(entry, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.DebugContext(ctx, "render failed", "entry", entry, "module", module, "url", opts.URL, "error", err)
		} else {
			span.SetStatus(codes.Ok, "")
			e.logger.DebugContext(ctx, "render finished", "entry", entry, "module", module, "url", opts.URL,
				"duration", time.Since(start))
		}
		span.End()
	}()

	p, err := newPlatform(opts.providers()...)
	if err != nil {
		return nil, err
	}
	e.metrics.PlatformCreated()
	p.OnDestroy(e.metrics.PlatformDestroyed)

	// Failed renders still release their platform.
	defer func() {
		if err != nil {
			e.destroy(ctx, p)
		}
	}()

	ref, err := bootstrap(ctx, p)
	if err != nil {
		return nil, err
	}
	span.AddEvent("bootstrapped")

	return e.finalize(ctx, p, ref)
}

func (e *Engine) finalize(ctx context.Context, p *platform.Platform, ref *app.ModuleRef) (*RenderResult, error) {
	span := trace.SpanFromContext(ctx)

	id, err := transitionID(ref)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("E201").
			WithDetail(fmt.Sprintf("module %s does not provide app.TransitionID", ref.Name())).
			WithSuggestion("Import app.ServerTransition(appID) in the root module")
	}

	waitStart := time.Now()
	if _, err := stability.First(ctx, ref.ApplicationRef().IsStable(), stability.IsTrue); err != nil {
		return nil, err
	}
	e.metrics.ObserveStabilize(time.Since(waitStart))
	span.AddEvent("stable")

	if err := e.runHooks(ctx, ref, p.State().Document()); err != nil {
		return nil, err
	}

	html, err := p.State().RenderToString()
	if err != nil {
		return nil, err
	}
	span.AddEvent("serialized", trace.WithAttributes(attribute.Int("engine.html_bytes", len(html))))

	e.destroy(ctx, p)
	return &RenderResult{HTML: html, ModuleRef: ref}, nil
}

// transitionID resolves app.TransitionID. An absent token yields "" and no
// error; any other resolution failure is returned unchanged.
func transitionID(ref *app.ModuleRef) (string, error) {
	v, err := ref.Injector().Get(app.TransitionID)
	if err != nil {
		var nf inject.NotFoundError
		if stderrors.As(err, &nf) && nf.Token == app.TransitionID {
			return "", nil
		}
		return "", err
	}
	id, _ := v.(string)
	return id, nil
}

// runHooks runs every BeforeAppSerialized hook in registration order. A
// failing hook is logged and skipped. Only a failure to resolve the hooks
// is returned.
func (e *Engine) runHooks(ctx context.Context, ref *app.ModuleRef, doc *dom.Document) error {
	hooks, err := inject.All[any](ref.Injector(), app.BeforeAppSerialized)
	if err != nil {
		return err
	}
	for idx, h := range hooks {
		if err := callHook(ctx, h, doc); err != nil {
			e.metrics.HookFailed()
			e.logger.WarnContext(ctx, "ignoring before-app-serialized hook failure",
				"hook", idx,
				"error", errors.New("E204").WithDetail(fmt.Sprintf("hook %d", idx)).Wrap(err))
		}
	}
	return nil
}

func callHook(ctx context.Context, h any, doc *dom.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()

	switch fn := h.(type) {
	case app.Hook:
		return fn(ctx, doc)
	case func(context.Context, *dom.Document) error:
		return fn(ctx, doc)
	case func():
		fn()
		return nil
	default:
		return fmt.Errorf("unsupported hook type %T", h)
	}
}

func (e *Engine) destroy(ctx context.Context, p *platform.Platform) {
	if err := p.Destroy(); err != nil {
		e.logger.WarnContext(ctx, "platform teardown failed", "error", err)
	}
}
