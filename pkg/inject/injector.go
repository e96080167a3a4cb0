package inject

import (
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/engine/internal/errors"
)

// Resolver resolves services by token.
type Resolver interface {
	Get(tok *Token) (any, error)
}

// Injector is a hierarchical service container.
type Injector struct {
	name   string
	parent *Injector

	records map[*Token]Provider
	multi   map[*Token][]any

	mu        sync.RWMutex
	instances map[*Token]any
	built     []*Token
	destroyed bool

	sf singleflight.Group
}

// New creates an injector with the given providers. Later single providers
// for the same token replace earlier ones; Multi providers accumulate.
func New(name string, parent *Injector, providers ...Provider) *Injector {
	inj := &Injector{
		name:      name,
		parent:    parent,
		records:   make(map[*Token]Provider, len(providers)),
		multi:     make(map[*Token][]any),
		instances: make(map[*Token]any),
	}
	for _, p := range providers {
		if p.Token == nil {
			continue
		}
		if p.kind == kindMulti {
			inj.multi[p.Token] = append(inj.multi[p.Token], p.value)
			continue
		}
		inj.records[p.Token] = p
	}
	return inj
}

// Name returns the injector's debug name.
func (i *Injector) Name() string { return i.name }

// Parent returns the parent injector, or nil for a root.
func (i *Injector) Parent() *Injector { return i.parent }

// Get resolves tok from this injector or its ancestors.
func (i *Injector) Get(tok *Token) (any, error) {
	return i.get(tok, nil)
}

// Has reports whether tok is provided anywhere in the hierarchy.
func (i *Injector) Has(tok *Token) bool {
	for cur := i; cur != nil; cur = cur.parent {
		if _, ok := cur.records[tok]; ok {
			return true
		}
		if _, ok := cur.multi[tok]; ok {
			return true
		}
	}
	return false
}

// Destroyed reports whether Destroy has been called.
func (i *Injector) Destroyed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyed
}

// Destroy closes factory-built instances in reverse build order. Values
// provided with Value are owned by the caller and left untouched. Destroy is
// idempotent.
//
// A destroyed injector stays readable: values, collections and instances
// built before destruction still resolve, but no new factory instance is
// built.
func (i *Injector) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return nil
	}
	i.destroyed = true
	built := append([]*Token(nil), i.built...)
	instances := make(map[*Token]any, len(i.instances))
	for tok, inst := range i.instances {
		instances[tok] = inst
	}
	i.mu.Unlock()

	var errs []error
	for idx := len(built) - 1; idx >= 0; idx-- {
		tok := built[idx]
		closer, ok := instances[tok].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", tok, err))
		}
	}
	return stderrors.Join(errs...)
}

func (i *Injector) get(tok *Token, stack []*Token) (any, error) {
	if tok == nil {
		return nil, NotFoundError{Token: tok}
	}
	for _, seen := range stack {
		if seen == tok {
			return nil, CycleError{Path: push(stack, tok)}
		}
	}

	if _, ok := i.multi[tok]; ok {
		return i.collect(tok, stack)
	}

	p, ok := i.records[tok]
	if !ok {
		if i.parent == nil {
			return nil, NotFoundError{Token: tok}
		}
		return i.parent.get(tok, stack)
	}

	switch p.kind {
	case kindValue:
		return p.value, nil
	case kindExisting:
		return i.get(p.existing, push(stack, tok))
	case kindFactory:
		return i.build(p, stack)
	default:
		return nil, fmt.Errorf("unknown provider kind for %s", tok)
	}
}

// collect gathers a multi collection, ancestors first.
func (i *Injector) collect(tok *Token, stack []*Token) (any, error) {
	var out []any
	if i.parent != nil && i.parent.Has(tok) {
		inherited, err := i.parent.get(tok, stack)
		if err != nil {
			return nil, err
		}
		if items, ok := inherited.([]any); ok {
			out = append(out, items...)
		}
	}
	out = append(out, i.multi[tok]...)
	return out, nil
}

func (i *Injector) build(p Provider, stack []*Token) (any, error) {
	i.mu.RLock()
	cached, ok := i.instances[p.Token]
	destroyed := i.destroyed
	i.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if destroyed {
		return nil, errors.New("E206").WithDetail(fmt.Sprintf("injector %q cannot build %s", i.name, p.Token))
	}

	key := fmt.Sprintf("%p", p.Token)
	v, err, _ := i.sf.Do(key, func() (any, error) {
		i.mu.RLock()
		cachedAgain, ok := i.instances[p.Token]
		i.mu.RUnlock()
		if ok {
			return cachedAgain, nil
		}

		r := &stackResolver{inj: i, stack: push(stack, p.Token)}
		instance, err := p.factory(r)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", p.Token, err)
		}

		i.mu.Lock()
		defer i.mu.Unlock()
		if i.destroyed {
			if closer, ok := instance.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil, errors.New("E206").WithDetail(fmt.Sprintf("injector %q destroyed while building %s", i.name, p.Token))
		}
		i.instances[p.Token] = instance
		i.built = append(i.built, p.Token)
		return instance, nil
	})
	return v, err
}

func push(stack []*Token, tok *Token) []*Token {
	out := make([]*Token, len(stack), len(stack)+1)
	copy(out, stack)
	return append(out, tok)
}

// stackResolver carries the resolution path into factories for cycle detection.
type stackResolver struct {
	inj   *Injector
	stack []*Token
}

func (r *stackResolver) Get(tok *Token) (any, error) {
	return r.inj.get(tok, r.stack)
}

// Lookup resolves tok and converts it to T. It returns def when the token is
// not provided, resolves to nil, has a different type, or fails to build.
func Lookup[T any](r Resolver, tok *Token, def T) T {
	v, err := r.Get(tok)
	if err != nil || v == nil {
		return def
	}
	typed, ok := v.(T)
	if !ok {
		return def
	}
	return typed
}

// Resolve resolves tok and converts it to T.
func Resolve[T any](r Resolver, tok *Token) (T, error) {
	var zero T
	v, err := r.Get(tok)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Token:    tok,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}

// All resolves a Multi collection and converts each element to T. A token
// that is not provided yields a nil slice and no error.
func All[T any](r Resolver, tok *Token) ([]T, error) {
	v, err := r.Get(tok)
	if err != nil {
		var nf NotFoundError
		if stderrors.As(err, &nf) && nf.Token == tok {
			return nil, nil
		}
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, TypeMismatchError{Token: tok, Expected: "[]any", Actual: fmt.Sprintf("%T", v)}
	}
	out := make([]T, 0, len(items))
	for idx, item := range items {
		typed, ok := item.(T)
		if !ok {
			return nil, TypeMismatchError{
				Token:    tok,
				Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
				Actual:   fmt.Sprintf("%T at index %d", item, idx),
			}
		}
		out = append(out, typed)
	}
	return out, nil
}
