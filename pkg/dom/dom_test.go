package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestParseDefaultShell(t *testing.T) {
	doc, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.String()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != DefaultShell {
		t.Errorf("String() = %q, want %q", out, DefaultShell)
	}
	if !doc.HasElement("app-root") {
		t.Error("default shell should contain app-root")
	}
}

func TestParseFragmentShellIsCompleted(t *testing.T) {
	doc := MustParse(`<title>Shop</title><app-root>loading</app-root>`)
	out, _ := doc.String()
	for _, want := range []string{"<html>", "<head><title>Shop</title></head>", "<body><app-root>loading</app-root></body>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestTitle(t *testing.T) {
	doc := MustParse(`<html><head></head><body></body></html>`)
	if doc.Title() != "" {
		t.Errorf("Title() = %q, want empty", doc.Title())
	}
	doc.SetTitle("Cart <3")
	if doc.Title() != "Cart <3" {
		t.Errorf("Title() = %q", doc.Title())
	}
	doc.SetTitle("Checkout")
	out, _ := doc.String()
	if strings.Count(out, "<title>") != 1 || !strings.Contains(out, "<title>Checkout</title>") {
		t.Errorf("String() = %q", out)
	}
}

func TestAppendHeadAndSetAttr(t *testing.T) {
	doc := MustParse("")
	style := NewElement("style")
	style.AppendChild(&html.Node{Type: html.TextNode, Data: "body{margin:0}"})
	if err := doc.AppendHead(style); err != nil {
		t.Fatalf("AppendHead: %v", err)
	}
	if !doc.SetAttr(ByAtom(atom.Html), "lang", "en") {
		t.Error("SetAttr should find <html>")
	}
	if doc.SetAttr(ByID("missing"), "x", "y") {
		t.Error("SetAttr should report a missing element")
	}

	out, _ := doc.String()
	if !strings.Contains(out, `<html lang="en">`) {
		t.Errorf("lang not set: %q", out)
	}
	if !strings.Contains(out, "<head><style>body{margin:0}</style></head>") {
		t.Errorf("style not appended: %q", out)
	}
}

func TestQueries(t *testing.T) {
	doc := MustParse(`<body><div id="a"><p>one</p><p id="b">two</p></div></body>`)
	doc.View(func(root *html.Node) {
		if n := FindFirst(root, ByID("b")); n == nil || TextContent(n) != "two" {
			t.Error("ByID lookup failed")
		}
		if ps := FindAll(root, ByTag("P")); len(ps) != 2 {
			t.Errorf("FindAll(p) = %d, want 2", len(ps))
		}
		if FindFirst(nil, ByTag("p")) != nil {
			t.Error("FindFirst(nil) should be nil")
		}
		div := FindFirst(root, ByID("a"))
		if got := TextContent(div); got != "onetwo" {
			t.Errorf("TextContent = %q", got)
		}
	})
}

func TestReplaceChildren(t *testing.T) {
	doc := MustParse(`<body><app-root><span>old</span>text</app-root></body>`)
	_ = doc.Update(func(root *html.Node) error {
		host := FindFirst(root, ByTag("app-root"))
		ReplaceChildren(host, NewElement("main"))
		return nil
	})
	out, _ := doc.String()
	if !strings.Contains(out, "<app-root><main></main></app-root>") {
		t.Errorf("String() = %q", out)
	}
}

func TestAttrHelpers(t *testing.T) {
	n := NewElement("DIV", html.Attribute{Key: "id", Val: "x"})
	if n.Data != "div" || n.DataAtom != atom.Div {
		t.Errorf("NewElement = %+v", n)
	}
	SetAttr(n, "id", "y")
	SetAttr(n, "class", "c")
	if v, _ := Attr(n, "id"); v != "y" {
		t.Errorf("id = %q", v)
	}
	if _, ok := Attr(n, "missing"); ok {
		t.Error("missing attr reported present")
	}
	if len(n.Attr) != 2 {
		t.Errorf("attrs = %v", n.Attr)
	}
}
