package decor

import (
	"strings"

	"golang.org/x/net/html"
)

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

// setAttr replaces the first attribute called name, or appends one.
func setAttr(n *html.Node, name, val string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func hasClass(n *html.Node, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == want {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, cls string) {
	if hasClass(n, cls) {
		return
	}
	cur := strings.TrimSpace(getAttr(n, "class"))
	if cur == "" {
		setAttr(n, "class", cls)
		return
	}
	setAttr(n, "class", cur+" "+cls)
}

func removeClass(n *html.Node, cls string) {
	if !hasClass(n, cls) {
		return
	}
	fields := strings.Fields(getAttr(n, "class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != cls {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// elementChildren counts element children only; whitespace text between
// cells does not count.
func elementChildren(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

func detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// insertAfter places n right after ref. n must already be detached.
func insertAfter(n, ref *html.Node) {
	if ref == nil || ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// attached reports whether n still hangs off root.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && getAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findFirstByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirstByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// closestAncestor walks up from n (exclusive) to the first element with cls.
func closestAncestor(n *html.Node, cls string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if hasClass(p, cls) {
			return p
		}
	}
	return nil
}
