package render

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vango-dev/engine/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// Sanitize passes Raw nodes through Policy before output.
	Sanitize bool

	// Policy is the sanitizing policy. Defaults to bluemonday's UGC policy.
	Policy *bluemonday.Policy
}

var (
	defaultPolicyOnce sync.Once
	defaultPolicy     *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	defaultPolicyOnce.Do(func() {
		defaultPolicy = bluemonday.UGCPolicy()
	})
	return defaultPolicy
}

// Renderer handles server-side rendering of VNode trees.
// A Renderer holds no per-render state and is safe for concurrent use.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	if config.Sanitize && config.Policy == nil {
		config.Policy = ugcPolicy()
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	ew := &errWriter{w: w}
	if err := r.renderNode(ew, node, 0); err != nil {
		return err
	}
	return ew.err
}

// raw returns the output for a Raw node.
func (r *Renderer) raw(s string) string {
	if r.config.Sanitize {
		return r.config.Policy.Sanitize(s)
	}
	return s
}

func (r *Renderer) renderNode(w *errWriter, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		w.WriteString(escapeHTML(node.Text))
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
	case vdom.KindComponent:
		if node.Comp != nil {
			return r.renderNode(w, node.Comp.Render(), depth)
		}
	case vdom.KindRaw:
		w.WriteString(r.raw(node.Text))
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
	return w.err
}

func (r *Renderer) renderElement(w *errWriter, node *vdom.VNode, depth int) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("element without tag")
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.WriteString("<" + tag)
	for _, a := range attributes(node) {
		if a.bare {
			w.WriteString(" " + a.key)
			continue
		}
		w.WriteString(fmt.Sprintf(` %s="%s"`, a.key, escapeAttr(a.value)))
	}
	w.WriteString(">")

	if isVoidElement(tag) {
		if r.config.Pretty {
			w.WriteString("\n")
		}
		return w.err
	}

	block := !isInlineElement(tag) && hasElementChildren(node)
	if r.config.Pretty && block {
		w.WriteString("\n")
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}
	if r.config.Pretty && block {
		r.writeIndent(w, depth)
	}

	w.WriteString("</" + tag + ">")
	if r.config.Pretty {
		w.WriteString("\n")
	}
	return w.err
}

func hasElementChildren(node *vdom.VNode) bool {
	for _, c := range node.Children {
		if c != nil && c.Kind != vdom.KindText && c.Kind != vdom.KindRaw {
			return true
		}
	}
	return false
}

func (r *Renderer) writeIndent(w *errWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(r.config.Indent)
	}
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) WriteString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
