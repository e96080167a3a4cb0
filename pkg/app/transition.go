package app

import (
	"context"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/engine/pkg/dom"
	"github.com/vango-dev/engine/pkg/inject"
)

// TransitionAttr marks server styles with the application id so the client
// can take them over.
const TransitionAttr = "data-transition"

// ServerTransition returns a module that enables server rendering for the
// application appID. Import it from the root module.
func ServerTransition(appID string) *Module {
	return &Module{
		Name: "ServerTransition",
		Providers: []inject.Provider{
			inject.Value(TransitionID, appID),
			OnBeforeSerialize(stampStyles(appID)),
		},
	}
}

func stampStyles(appID string) Hook {
	return func(_ context.Context, doc *dom.Document) error {
		return doc.Update(func(root *html.Node) error {
			head := dom.FindFirst(root, dom.ByAtom(atom.Head))
			if head == nil {
				return nil
			}
			for _, style := range dom.FindAll(head, dom.ByAtom(atom.Style)) {
				if _, ok := dom.Attr(style, TransitionAttr); !ok {
					dom.SetAttr(style, TransitionAttr, appID)
				}
			}
			return nil
		})
	}
}
