package decor

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Doxygen emits section headings as `<h2 class="groupheader"><a ...></a>\nMacros</h2>`,
// so the heading titles carry a leading newline. Navigation links and group
// headers do not.
const (
	MacrosTitle       = "\nMacros"
	MacrosNavText     = "Macros"
	TypedefsTitle     = "\nTypedefs"
	TypeFunctionsText = "Type Functions"
)

var (
	selHeadingRows   = cascadia.MustCompile(".heading")
	selFirstCell     = cascadia.MustCompile("td")
	selLeftCells     = cascadia.MustCompile(".memberdecls > tbody > tr:not(.heading) > .memItemLeft")
	selSectionTitles = cascadia.MustCompile(".memberdecls > tbody > tr.heading > td > h2")
	selSections      = cascadia.MustCompile(".memberdecls")
	selNavEntries    = cascadia.MustCompile(".summary > a")
	selGroupHeaders  = cascadia.MustCompile("div.groupHeader")
	selAutogenTitle  = cascadia.MustCompile(".ititle")
	selMemproto      = cascadia.MustCompile("div.memproto")
	selNotes         = cascadia.MustCompile("dl.note")
)

// textOf concatenates every descendant text node verbatim. Whitespace is kept
// so that exact comparisons see the same string a browser's textContent does.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(x *html.Node) {
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				rec(c)
			}
		}
	}
	rec(n)
	return b.String()
}

func hasExactText(n *html.Node, want string) bool {
	return textOf(n) == want
}

// queryAll returns the matches below root in document order.
func queryAll(root *html.Node, sel cascadia.Matcher) []*html.Node {
	if root == nil {
		return nil
	}
	return cascadia.QueryAll(root, sel)
}

func queryFirst(root *html.Node, sel cascadia.Matcher) *html.Node {
	if root == nil {
		return nil
	}
	return cascadia.Query(root, sel)
}

// indexOfText returns the position of the last node whose text equals want,
// or -1. The last match wins, matching a scan that keeps overwriting its
// location.
func indexOfText(nodes []*html.Node, want string) int {
	loc := -1
	for i, n := range nodes {
		if hasExactText(n, want) {
			loc = i
		}
	}
	return loc
}
