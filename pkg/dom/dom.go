// Package dom holds the server-side document a render mutates and
// serializes.
//
// A Document wraps a parsed golang.org/x/net/html tree. Components are
// mounted into host elements, before-app-serialized hooks patch the head, and
// String produces the final HTML. All access goes through the Document so it
// can be shared between the application and asynchronous tasks.
package dom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultShell is used when no document is supplied.
const DefaultShell = `<!DOCTYPE html><html><head></head><body><app-root></app-root></body></html>`

// Document is a mutable HTML document.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse parses src as a full HTML document. An empty src parses DefaultShell.
// The HTML parser is lenient: missing html/head/body elements are created.
func Parse(src string) (*Document, error) {
	if strings.TrimSpace(src) == "" {
		src = DefaultShell
	}
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Document {
	doc, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return doc
}

// Update runs fn with exclusive access to the document root.
func (d *Document) Update(fn func(root *html.Node) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.root)
}

// View runs fn with shared access to the document root. fn must not mutate.
func (d *Document) View(fn func(root *html.Node)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.root)
}

// String serializes the document.
func (d *Document) String() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	return buf.String(), nil
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	var title string
	d.View(func(root *html.Node) {
		if n := FindFirst(root, ByAtom(atom.Title)); n != nil {
			title = TextContent(n)
		}
	})
	return title
}

// SetTitle sets the document title, creating <title> in head when missing.
func (d *Document) SetTitle(title string) {
	_ = d.Update(func(root *html.Node) error {
		n := FindFirst(root, ByAtom(atom.Title))
		if n == nil {
			head := FindFirst(root, ByAtom(atom.Head))
			if head == nil {
				return nil
			}
			n = NewElement("title")
			head.AppendChild(n)
		}
		ReplaceChildren(n, &html.Node{Type: html.TextNode, Data: title})
		return nil
	})
}

// AppendHead appends nodes to <head>.
func (d *Document) AppendHead(nodes ...*html.Node) error {
	return d.Update(func(root *html.Node) error {
		head := FindFirst(root, ByAtom(atom.Head))
		if head == nil {
			return fmt.Errorf("document has no head")
		}
		for _, n := range nodes {
			head.AppendChild(n)
		}
		return nil
	})
}

// SetAttr sets an attribute on the first element matching pred.
func (d *Document) SetAttr(pred func(*html.Node) bool, key, val string) bool {
	found := false
	_ = d.Update(func(root *html.Node) error {
		if n := FindFirst(root, pred); n != nil {
			SetAttr(n, key, val)
			found = true
		}
		return nil
	})
	return found
}

// HasElement reports whether an element with the tag exists.
func (d *Document) HasElement(tag string) bool {
	found := false
	d.View(func(root *html.Node) {
		found = FindFirst(root, ByTag(tag)) != nil
	})
	return found
}
