package decor

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

type styleDecl struct {
	property  string
	value     string
	important bool
}

// parseInlineStyle splits a style attribute into ordered declarations. When
// douceur rejects the text the attribute is split by hand so hand-edited pages
// still round-trip.
func parseInlineStyle(inline string) []styleDecl {
	inline = strings.TrimSpace(inline)
	if inline == "" {
		return nil
	}
	var out []styleDecl
	if decls, err := parser.ParseDeclarations(inline); err == nil {
		for _, d := range decls {
			if d == nil {
				continue
			}
			prop := strings.ToLower(strings.TrimSpace(d.Property))
			if prop == "" {
				continue
			}
			out = append(out, styleDecl{property: prop, value: strings.TrimSpace(d.Value), important: d.Important})
		}
		return out
	}
	for _, part := range strings.Split(inline, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])
		if prop == "" {
			continue
		}
		important := false
		if strings.HasSuffix(strings.ToLower(value), "!important") {
			important = true
			value = strings.TrimSpace(value[:len(value)-len("!important")])
		}
		out = append(out, styleDecl{property: prop, value: value, important: important})
	}
	return out
}

func formatInlineStyle(decls []styleDecl) string {
	if len(decls) == 0 {
		return ""
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		v := d.value
		if d.important {
			v += " !important"
		}
		parts = append(parts, d.property+": "+v)
	}
	return strings.Join(parts, "; ") + ";"
}

// StyleValue returns the inline value of prop on n, or "" when unset.
func StyleValue(n *html.Node, prop string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	val := ""
	for _, d := range parseInlineStyle(getAttr(n, "style")) {
		if d.property == prop {
			val = d.value
		}
	}
	return val
}

// SetStyle writes prop into the element's style attribute, replacing any
// earlier inline value in place. It reports whether the attribute changed.
func SetStyle(n *html.Node, prop, value string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	before := getAttr(n, "style")
	decls := parseInlineStyle(before)
	replaced := false
	kept := decls[:0]
	for _, d := range decls {
		if d.property == prop {
			if replaced {
				continue
			}
			d.value = value
			d.important = false
			replaced = true
		}
		kept = append(kept, d)
	}
	if !replaced {
		kept = append(kept, styleDecl{property: prop, value: value})
	}
	after := formatInlineStyle(kept)
	if after == before {
		return false
	}
	setAttr(n, "style", after)
	return true
}

// RemoveStyle drops prop from the inline style; an empty attribute is removed.
func RemoveStyle(n *html.Node, prop string) bool {
	if n == nil || n.Type != html.ElementNode || !hasAttr(n, "style") {
		return false
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	decls := parseInlineStyle(getAttr(n, "style"))
	kept := decls[:0]
	for _, d := range decls {
		if d.property != prop {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(decls) {
		return false
	}
	if len(kept) == 0 {
		removeAttr(n, "style")
		return true
	}
	setAttr(n, "style", formatInlineStyle(kept))
	return true
}
