package decor

import (
	"testing"

	"golang.org/x/net/html"
)

func element(style string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: "div"}
	if style != "" {
		n.Attr = []html.Attribute{{Key: "style", Val: style}}
	}
	return n
}

func TestSetStyleReplacesInPlace(t *testing.T) {
	n := element("color:red;padding:2px")
	if !SetStyle(n, "padding", "8px") {
		t.Fatalf("expected change")
	}
	if got := getAttr(n, "style"); got != "color: red; padding: 8px;" {
		t.Fatalf("style = %q", got)
	}
	if SetStyle(n, "padding", "8px") {
		t.Fatalf("second SetStyle should be a no-op")
	}
}

func TestSetStyleDropsImportantOnOverride(t *testing.T) {
	n := element("height: 10px !important")
	SetStyle(n, "height", "100%")
	if got := getAttr(n, "style"); got != "height: 100%;" {
		t.Fatalf("style = %q", got)
	}
}

func TestSetStyleAppends(t *testing.T) {
	n := element("")
	SetStyle(n, "border-right", "1px solid")
	SetStyle(n, "Border-Top-Right-Radius", "7px")
	if got := getAttr(n, "style"); got != "border-right: 1px solid; border-top-right-radius: 7px;" {
		t.Fatalf("style = %q", got)
	}
	if v := StyleValue(n, "BORDER-RIGHT"); v != "1px solid" {
		t.Fatalf("StyleValue = %q", v)
	}
}

func TestRemoveStyle(t *testing.T) {
	n := element("display: none; margin: 0")
	if !RemoveStyle(n, "display") {
		t.Fatalf("expected removal")
	}
	if got := getAttr(n, "style"); got != "margin: 0;" {
		t.Fatalf("style = %q", got)
	}
	RemoveStyle(n, "margin")
	if hasAttr(n, "style") {
		t.Fatalf("empty style attribute should be dropped")
	}
	if RemoveStyle(n, "margin") {
		t.Fatalf("nothing left to remove")
	}
}

func TestClassHelpers(t *testing.T) {
	n := &html.Node{Type: html.ElementNode, Data: "dl", Attr: []html.Attribute{{Key: "class", Val: "reflist  wide"}}}
	addClass(n, "todo")
	removeClass(n, "reflist")
	if got := getAttr(n, "class"); got != "wide todo" {
		t.Fatalf("class = %q", got)
	}
	removeClass(n, "wide")
	removeClass(n, "todo")
	if hasAttr(n, "class") {
		t.Fatalf("empty class attribute should be dropped")
	}
}
