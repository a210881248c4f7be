package decor

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

const (
	maxImportDepth = 8
	maxSheetLoads  = 16
)

// Loader fetches a stylesheet referenced from base. ref is the raw href or
// @import target.
type Loader func(base, ref string) (text []byte, abs string, ok bool)

// FileLoader resolves references against the directory of the page, which
// is how Doxygen lays out doxygen.css, navtree.css and tabs.css.
func FileLoader(base, ref string) ([]byte, string, bool) {
	if strings.Contains(ref, "://") {
		return nil, "", false
	}
	ref = strings.SplitN(ref, "?", 2)[0]
	abs := ref
	if !filepath.IsAbs(ref) {
		abs = filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", false
	}
	return b, abs, true
}

type propState struct {
	val       string
	spec      cascadia.Specificity
	order     int
	important bool
}

type cssRule struct {
	selector     cascadia.Sel
	specificity  cascadia.Specificity
	declarations []styleDecl
	order        int
}

// Stylesheet is the flattened rule list of a page, in cascade order.
type Stylesheet struct {
	rules []cssRule
}

func (s *Stylesheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

type sheetContext struct {
	base    string
	load    Loader
	logger  *log.Logger
	depth   int
	visited map[string]struct{}
	budget  *int
}

func (ctx *sheetContext) child(base string) *sheetContext {
	next := *ctx
	next.base = base
	next.depth = ctx.depth + 1
	return &next
}

// BuildStylesheet collects <style> blocks and <link rel=stylesheet> targets
// of doc. pagePath is the base passed to load; load may be nil to skip
// linked sheets.
func BuildStylesheet(doc *html.Node, pagePath string, load Loader, logger *log.Logger) *Stylesheet {
	if doc == nil {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	budget := maxSheetLoads
	ctx := &sheetContext{
		base:    pagePath,
		load:    load,
		logger:  logger,
		visited: map[string]struct{}{},
		budget:  &budget,
	}
	ss := &Stylesheet{}
	order := 0

	// Linked sheets come first in a Doxygen page head, so collect in
	// document order across both kinds.
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "style":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					rs, ord := parseSheet(n.FirstChild.Data, order, ctx)
					ss.rules = append(ss.rules, rs...)
					order = ord
				}
			case "link":
				rel := strings.ToLower(getAttr(n, "rel"))
				href := strings.TrimSpace(getAttr(n, "href"))
				if strings.Contains(rel, "stylesheet") && href != "" {
					if b, abs, ok := ctx.fetch(ctx.base, href); ok {
						rs, ord := parseSheet(string(b), order, ctx.child(abs))
						ss.rules = append(ss.rules, rs...)
						order = ord
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(doc)
	return ss
}

func (ctx *sheetContext) fetch(base, ref string) ([]byte, string, bool) {
	if ctx.load == nil || *ctx.budget <= 0 {
		return nil, "", false
	}
	b, abs, ok := ctx.load(base, ref)
	if !ok {
		return nil, "", false
	}
	if _, seen := ctx.visited[abs]; seen {
		return nil, "", false
	}
	ctx.visited[abs] = struct{}{}
	*ctx.budget--
	return b, abs, true
}

func parseSheet(txt string, startOrder int, ctx *sheetContext) ([]cssRule, int) {
	trimmed := strings.TrimSpace(txt)
	if trimmed == "" || ctx.depth >= maxImportDepth {
		return nil, startOrder
	}
	sheet, err := parser.Parse(trimmed)
	if err != nil {
		ctx.logger.Printf("css: parse %s: %v", ctx.base, err)
		return nil, startOrder
	}
	rules := make([]cssRule, 0, len(sheet.Rules))
	order := startOrder

	var walk func([]*cssast.Rule)
	walk = func(list []*cssast.Rule) {
		for _, rule := range list {
			if rule == nil {
				continue
			}
			switch rule.Kind {
			case cssast.AtRule:
				switch strings.ToLower(strings.TrimSpace(rule.Name)) {
				case "@media":
					if screenMedia(rule.Prelude) {
						walk(rule.Rules)
					}
				case "@supports":
					walk(rule.Rules)
				case "@import":
					target, media := importTarget(rule.Prelude)
					if target == "" || (media != "" && !screenMedia(media)) {
						continue
					}
					if b, abs, ok := ctx.fetch(ctx.base, target); ok {
						rs, ord := parseSheet(string(b), order, ctx.child(abs))
						rules = append(rules, rs...)
						order = ord
					}
				}
			case cssast.QualifiedRule:
				decls := convertDeclarations(rule.Declarations)
				if len(decls) == 0 || len(rule.Selectors) == 0 {
					continue
				}
				group, err := cascadia.ParseGroup(strings.Join(rule.Selectors, ","))
				if err != nil {
					continue
				}
				for _, sel := range group {
					if sel == nil || sel.PseudoElement() != "" {
						continue
					}
					rules = append(rules, cssRule{selector: sel, specificity: sel.Specificity(), declarations: decls, order: order})
					order++
				}
			}
		}
	}
	walk(sheet.Rules)
	return rules, order
}

func convertDeclarations(list []*cssast.Declaration) []styleDecl {
	out := make([]styleDecl, 0, len(list))
	for _, d := range list {
		if d == nil {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		val := strings.TrimSpace(d.Value)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, styleDecl{property: prop, value: val, important: d.Important})
	}
	return out
}

func importTarget(prelude string) (string, string) {
	s := strings.TrimSpace(prelude)
	if s == "" {
		return "", ""
	}
	if strings.HasPrefix(strings.ToLower(s), "url(") {
		end := strings.Index(s, ")")
		if end == -1 {
			return "", ""
		}
		return unquote(s[4:end]), strings.TrimSpace(s[end+1:])
	}
	if (s[0] == '"' || s[0] == '\'') && len(s) > 1 {
		if idx := strings.IndexByte(s[1:], s[0]); idx != -1 {
			return s[1 : idx+1], strings.TrimSpace(s[idx+2:])
		}
	}
	fields := strings.Fields(s)
	return unquote(fields[0]), strings.TrimSpace(strings.TrimPrefix(s, fields[0]))
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// screenMedia accepts queries a desktop screen would match. Feature tests are
// assumed true.
func screenMedia(prelude string) bool {
	if strings.TrimSpace(prelude) == "" {
		return true
	}
	for _, raw := range strings.Split(prelude, ",") {
		q := strings.ToLower(strings.TrimSpace(raw))
		if q == "" {
			continue
		}
		fields := strings.Fields(q)
		if strings.HasPrefix(fields[0], "(") {
			return true
		}
		switch fields[0] {
		case "all", "screen":
			return true
		case "not":
			if len(fields) > 1 && fields[1] == "print" {
				return true
			}
		case "only":
			if len(fields) > 1 && fields[1] == "screen" {
				return true
			}
		}
	}
	return false
}

// ComputeStyle cascades ss and the inline style attribute onto n.
func ComputeStyle(n *html.Node, ss *Stylesheet) map[string]string {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	props := map[string]propState{}
	if ss != nil {
		for _, rule := range ss.rules {
			if rule.selector == nil || !rule.selector.Match(n) {
				continue
			}
			for _, decl := range rule.declarations {
				applyDeclaration(props, decl, rule.specificity, rule.order)
			}
		}
	}
	for i, decl := range parseInlineStyle(getAttr(n, "style")) {
		applyDeclaration(props, decl, cascadia.Specificity{1 << 12, 0, 0}, (1<<30)+i)
	}
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, st := range props {
		out[k] = st.val
	}
	return out
}

func applyDeclaration(store map[string]propState, decl styleDecl, spec cascadia.Specificity, order int) {
	if decl.property == "" || decl.value == "" {
		return
	}
	entry := propState{val: decl.value, spec: spec, order: order, important: decl.important}
	prev, ok := store[decl.property]
	switch {
	case !ok:
	case prev.important && !decl.important:
		return
	case decl.important && !prev.important:
	case prev.spec.Less(spec):
	case spec.Less(prev.spec):
		return
	case order < prev.order:
		return
	}
	store[decl.property] = entry
}
