// Package demo is a small storefront application used by the CLI and the
// integration tests. It routes on the request location, loads catalog data
// asynchronously through the ApplicationRef, inlines critical CSS and names
// the document after the rendered page.
package demo

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/engine/pkg/app"
	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
	. "github.com/vango-dev/engine/pkg/vdom"
)

// CatalogToken resolves to the Catalog used by the pages.
var CatalogToken = inject.NewToken("Catalog")

// SiteName is appended to every page title.
const SiteName = "Vango Shop"

// CriticalCSS is inlined into the document head.
const CriticalCSS = `body{margin:0;font-family:system-ui,sans-serif}main{max-width:48rem;margin:0 auto;padding:1rem}`

// Module returns the storefront module for the application appID. A
// CatalogToken provider in extra overrides the default catalog.
func Module(appID string, extra ...inject.Provider) *app.Module {
	providers := []inject.Provider{
		inject.Factory(CatalogToken, func(inject.Resolver) (any, error) {
			return DefaultCatalog(), nil
		}),
		app.OnInit(inlineCriticalCSS),
		app.OnBeforeSerialize(setTitle),
	}
	return &app.Module{
		Name:      "Demo",
		Imports:   []*app.Module{app.ServerTransition(appID)},
		Providers: append(providers, extra...),
		Bootstrap: []app.Bootstrap{{
			Selector:  "app-root",
			Component: newShop,
		}},
	}
}

func inlineCriticalCSS(_ context.Context, r inject.Resolver) error {
	doc, err := inject.Resolve[*dom.Document](r, app.DocumentToken)
	if err != nil {
		return err
	}
	style := dom.NewElement("style")
	style.AppendChild(&html.Node{Type: html.TextNode, Data: CriticalCSS})
	return doc.AppendHead(style)
}

// setTitle names the document after the first heading of the page.
func setTitle(_ context.Context, doc *dom.Document) error {
	var heading string
	doc.View(func(root *html.Node) {
		if h := dom.FindFirst(root, dom.ByAtom(atom.H1)); h != nil {
			heading = strings.TrimSpace(dom.TextContent(h))
		}
	})
	if heading == "" {
		doc.SetTitle(SiteName)
		return nil
	}
	doc.SetTitle(heading + " | " + SiteName)
	return nil
}

// shop is the root component. Page data is loaded by a tracked task and
// read under mu by Render.
type shop struct {
	loc app.Location

	mu       sync.Mutex
	loaded   bool
	products []Product
	product  Product
	err      error
}

func newShop(r inject.Resolver) (Component, error) {
	loc, err := inject.Resolve[app.Location](r, app.LocationToken)
	if err != nil {
		return nil, err
	}
	catalog, err := inject.Resolve[Catalog](r, CatalogToken)
	if err != nil {
		return nil, err
	}
	appRef, err := inject.Resolve[*app.ApplicationRef](r, app.ApplicationRefToken)
	if err != nil {
		return nil, err
	}

	s := &shop{loc: loc}
	switch id, ok := productID(loc.Path); {
	case loc.Path == "/":
		appRef.Go(func(ctx context.Context) error {
			products, err := catalog.Products(ctx)
			s.mu.Lock()
			s.products, s.err, s.loaded = products, err, true
			s.mu.Unlock()
			return err
		})
	case ok:
		appRef.Go(func(ctx context.Context) error {
			p, err := catalog.Product(ctx, id)
			s.mu.Lock()
			s.product, s.err, s.loaded = p, err, true
			s.mu.Unlock()
			if stderrors.Is(err, ErrNoProduct) {
				return nil
			}
			return err
		})
	default:
		s.loaded = true
	}
	return s, nil
}

func productID(path string) (string, bool) {
	id, ok := strings.CutPrefix(path, "/products/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (s *shop) Render() *VNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Main(ID("shop"),
		Nav(A(Href("/"), Text(SiteName))),
		s.page(),
	)
}

func (s *shop) page() *VNode {
	if !s.loaded {
		return P(Class("loading"), Text("Loading…"))
	}
	_, isProduct := productID(s.loc.Path)
	switch {
	case stderrors.Is(s.err, ErrNoProduct), s.loc.Path != "/" && !isProduct:
		return Section(H1(Text("Not found")), P(Textf("No page at %s.", s.loc.Path)))
	case s.err != nil:
		return Section(H1(Text("Something went wrong")), P(Text("Please try again later.")))
	case isProduct:
		return Article(Data("product", s.product.ID),
			H1(Text(s.product.Name)),
			P(Text(s.product.Description)),
			P(Class("price"), Text(s.product.Price())),
		)
	default:
		return Section(
			H1(Text("Products")),
			Ul(Range(s.products, func(p Product, _ int) *VNode {
				return Li(A(Href("/products/"+p.ID), Text(p.Name)))
			})),
		)
	}
}
