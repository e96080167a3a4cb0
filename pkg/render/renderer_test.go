package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	. "github.com/vango-dev/engine/pkg/vdom"
)

func TestRenderElement(t *testing.T) {
	r := NewRenderer(RendererConfig{})

	tests := []struct {
		name string
		node *VNode
		want string
	}{
		{"empty div", Div(), "<div></div>"},
		{"text child", P("hello"), "<p>hello</p>"},
		{"sorted attrs", Div(ID("x"), Class("a")), `<div class="a" id="x"></div>`},
		{"void element", Img(Src("/a.png"), Alt("a")), `<img alt="a" src="/a.png">`},
		{"boolean attr", Input(Disabled()), "<input disabled>"},
		{"false boolean", Input(Attribute("disabled", false)), "<input>"},
		{"escaped text", Span("<b>&"), "<span>&lt;b&gt;&amp;</span>"},
		{"escaped attr", Div(Data("v", `a"b`)), `<div data-v="a&quot;b"></div>`},
		{"fragment", Fragment(Li("a"), Li("b")), "<li>a</li><li>b</li>"},
		{"raw", Div(Raw("<em>x</em>")), "<div><em>x</em></div>"},
		{"component", Div(Func(func() *VNode { return Span("c") })), "<div><span>c</span></div>"},
		{"key omitted", Li(Key("k"), "x"), "<li>x</li>"},
		{"handler omitted", Button(Attribute("onClick", func() {}), "go"), "<button>go</button>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNil(t *testing.T) {
	got, err := NewRenderer(RendererConfig{}).RenderToString(nil)
	if err != nil || got != "" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(Ul(Li("a"), Li("b")))
	if err != nil {
		t.Fatal(err)
	}
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSanitize(t *testing.T) {
	r := NewRenderer(RendererConfig{Sanitize: true})
	got, err := r.RenderToString(Div(Raw(`<p>ok</p><script>alert(1)</script>`)))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "script") {
		t.Errorf("script survived sanitizing: %q", got)
	}
	if !strings.Contains(got, "<p>ok</p>") {
		t.Errorf("safe markup dropped: %q", got)
	}
}

func TestRenderMissingTag(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(&VNode{Kind: KindElement})
	if err == nil {
		t.Fatal("expected error for element without tag")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderToWriterError(t *testing.T) {
	err := NewRenderer(RendererConfig{}).RenderToWriter(failWriter{}, Div("x"))
	if err == nil || err.Error() != "closed" {
		t.Errorf("err = %v, want closed", err)
	}
}

func TestToNodes(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	nodes, err := r.ToNodes(Fragment(
		Div(ID("a"), Span("x")),
		Text("tail"),
		Raw("<b>bold</b>"),
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			t.Fatal(err)
		}
	}
	want := `<div id="a"><span>x</span></div>tail<b>bold</b>`
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToNodesMatchesString(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	tree := Section(Class("card"), H2("Title"), P("body & more"))

	s, err := r.RenderToString(tree)
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := r.ToNodes(tree)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	if buf.String() != s {
		t.Errorf("ToNodes = %q, RenderToString = %q", buf.String(), s)
	}
}
