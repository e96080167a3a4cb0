package platform

import "github.com/vango-dev/engine/pkg/dom"

// State exposes the rendered document of a platform.
type State struct {
	doc *dom.Document
}

// Document returns the platform document.
func (s *State) Document() *dom.Document {
	return s.doc
}

// RenderToString serializes the current document.
func (s *State) RenderToString() (string, error) {
	return s.doc.String()
}
