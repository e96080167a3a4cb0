package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/engine/pkg/vdom"
)

var fragmentContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// ToNodes converts a VNode tree into detached DOM nodes. Fragments and
// components flatten into their output, so the result may hold any number
// of siblings.
func (r *Renderer) ToNodes(node *vdom.VNode) ([]*html.Node, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case vdom.KindText:
		return []*html.Node{{Type: html.TextNode, Data: node.Text}}, nil

	case vdom.KindRaw:
		nodes, err := html.ParseFragment(strings.NewReader(r.raw(node.Text)), fragmentContext)
		if err != nil {
			return nil, fmt.Errorf("parse raw html: %w", err)
		}
		return nodes, nil

	case vdom.KindComponent:
		if node.Comp == nil {
			return nil, nil
		}
		return r.ToNodes(node.Comp.Render())

	case vdom.KindFragment:
		return r.childNodes(node)

	case vdom.KindElement:
		if node.Tag == "" {
			return nil, fmt.Errorf("element without tag")
		}
		el := &html.Node{
			Type:     html.ElementNode,
			Data:     node.Tag,
			DataAtom: atom.Lookup([]byte(node.Tag)),
		}
		for _, a := range attributes(node) {
			el.Attr = append(el.Attr, html.Attribute{Key: a.key, Val: a.value})
		}
		if isVoidElement(node.Tag) {
			return []*html.Node{el}, nil
		}
		children, err := r.childNodes(node)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			el.AppendChild(c)
		}
		return []*html.Node{el}, nil

	default:
		return nil, fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) childNodes(node *vdom.VNode) ([]*html.Node, error) {
	var out []*html.Node
	for _, child := range node.Children {
		nodes, err := r.ToNodes(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}
