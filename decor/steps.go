package decor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Step names, in run order.
const (
	StepColspan   = "colspan"
	StepMacros    = "macros"
	StepTypeFuncs = "typefuncs"
	StepAutogen   = "autogen"
	StepCorners   = "corners"
	StepNotes     = "notes"
	StepRelabel   = "relabel"
	StepReflow    = "reflow"
	StepViewport  = "viewport"
	StepFadeIn    = "fadein"
)

// Step is one independent correction. Apply returns how many elements it
// changed.
type Step struct {
	Name  string
	Apply func(doc *html.Node, o *Options) int
}

func defaultSteps() []Step {
	return []Step{
		{StepColspan, fixDualHeadingColspan},
		{StepMacros, moveMacrosToEnd},
		{StepTypeFuncs, dropTypeFunctions},
		{StepAutogen, dropAutogenNotice},
		{StepCorners, squareProtoCorners},
		{StepNotes, padNotes},
		{StepRelabel, relabelRefLists},
		{StepReflow, toggleSections},
		{StepViewport, sizeToViewport},
		{StepFadeIn, fadeInBody},
	}
}

// fixDualHeadingColspan widens lone left-hand cells in tables whose heading
// spans two columns. Only the first such cell on the page gets the rounded
// corner.
func fixDualHeadingColspan(doc *html.Node, o *Options) int {
	touched := 0
	cornered := false
	for _, row := range queryAll(doc, selHeadingRows) {
		first := queryFirst(row, selFirstCell)
		if first == nil || strings.TrimSpace(getAttr(first, "colspan")) != "2" {
			continue
		}
		table := closestAncestor(row, "memberdecls")
		if table == nil {
			continue
		}
		for _, cell := range queryAll(table, selLeftCells) {
			if closestAncestor(cell, "memberdecls") != table {
				continue
			}
			if elementChildren(cell.Parent) != 1 {
				continue
			}
			changed := false
			if getAttr(cell, "colspan") != "2" {
				setAttr(cell, "colspan", "2")
				changed = true
			}
			if SetStyle(cell, "border-right", o.BorderRight) {
				changed = true
			}
			if !cornered {
				cornered = true
				if SetStyle(cell, "border-top-right-radius", o.CornerRadius) {
					changed = true
				}
			}
			if changed {
				touched++
			}
		}
	}
	return touched
}

// moveMacrosToEnd moves the Macros block behind the last section and its
// summary link behind the last summary link.
func moveMacrosToEnd(doc *html.Node, o *Options) int {
	titles := queryAll(doc, selSectionTitles)
	loc := indexOfText(titles, o.MacrosTitle)
	if loc < 0 {
		return 0
	}
	moved := 0
	block := closestAncestor(titles[loc], "memberdecls")
	sections := queryAll(doc, selSections)
	if block != nil && len(sections) > 0 {
		last := sections[len(sections)-1]
		if last != block && !attached(last, block) {
			detach(block)
			insertAfter(block, last)
			moved++
		}
	}

	entries := queryAll(doc, selNavEntries)
	i := indexOfText(entries, o.MacrosNavText)
	if i >= 0 && i != len(entries)-1 {
		link, lastLink := entries[i], entries[len(entries)-1]
		// The " | " delimiter after the link travels with it.
		sep := link.NextSibling
		if sep != nil && sep.Type != html.TextNode {
			sep = nil
		}
		detach(link)
		if sep != nil {
			detach(sep)
			insertAfter(sep, lastLink)
			insertAfter(link, sep)
		} else {
			insertAfter(link, lastLink)
		}
		moved++
	}
	return moved
}

func dropTypeFunctions(doc *html.Node, o *Options) int {
	hasTypedefs := indexOfText(queryAll(doc, selSectionTitles), o.TypedefsTitle) >= 0
	if o.RequireTypedefs && !hasTypedefs {
		return 0
	}
	removed := 0
	for _, h := range queryAll(doc, selGroupHeaders) {
		if !attached(h, doc) || !hasExactText(h, o.TypeFunctionsText) {
			continue
		}
		if h.Parent == nil || h.Parent.Parent == nil {
			continue
		}
		block := h.Parent.Parent
		if block.Type != html.ElementNode {
			continue
		}
		detach(block)
		removed++
	}
	return removed
}

// dropAutogenNotice removes the "automatically generated" title wrapper that
// breaks the table header layout.
func dropAutogenNotice(doc *html.Node, _ *Options) int {
	removed := 0
	for _, n := range queryAll(doc, selAutogenTitle) {
		if !attached(n, doc) || n.Parent == nil || n.Parent.Type != html.ElementNode {
			continue
		}
		detach(n.Parent)
		removed++
	}
	return removed
}

func squareProtoCorners(doc *html.Node, _ *Options) int {
	touched := 0
	for _, n := range queryAll(doc, selMemproto) {
		changed := SetStyle(n, "border-top-left-radius", "0px")
		changed = SetStyle(n, "border-bottom-left-radius", "0px") || changed
		changed = SetStyle(n, "border-bottom-right-radius", "0px") || changed
		if changed {
			touched++
		}
	}
	return touched
}

func padNotes(doc *html.Node, o *Options) int {
	touched := 0
	for _, n := range queryAll(doc, selNotes) {
		if SetStyle(n, "padding", o.NotePadding) {
			touched++
		}
	}
	return touched
}

func relabelRefLists(doc *html.Node, o *Options) int {
	touched := 0
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, o.RelabelFrom) {
			addClass(n, o.RelabelTo)
			removeClass(n, o.RelabelFrom)
			touched++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(doc)
	return touched
}

// toggleSections hides and re-shows every section block. Browsers that keep
// stale table layout after the moves above recompute it on the toggle; in the
// serialised page the previous display value is what remains.
func toggleSections(doc *html.Node, _ *Options) int {
	toggled := 0
	for _, n := range queryAll(doc, selSections) {
		prev := StyleValue(n, "display")
		SetStyle(n, "display", "none")
		if prev == "" {
			RemoveStyle(n, "display")
		} else {
			SetStyle(n, "display", prev)
		}
		toggled++
	}
	return toggled
}

func sizeToViewport(doc *html.Node, o *Options) int {
	touched := 0
	height := "calc(100vh - " + o.ViewportOffset + ")"
	for _, id := range []string{"doc-content", "nav-tree"} {
		if n := findByID(doc, id); n != nil && SetStyle(n, "height", height) {
			touched++
		}
	}
	if n := findByID(doc, "side-nav"); n != nil && SetStyle(n, "height", "100%") {
		touched++
	}
	return touched
}

const fadeInStyleID = "doxydecor-fadein"

// fadeInBody reveals the body through a CSS animation. Reapplying it restarts
// the same animation and changes nothing else.
func fadeInBody(doc *html.Node, o *Options) int {
	body := findFirstByTag(doc, "body")
	if body == nil {
		return 0
	}
	if head := findFirstByTag(doc, "head"); head != nil && findByID(head, fadeInStyleID) == nil {
		style := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Style,
			Data:     "style",
			Attr:     []html.Attribute{{Key: "id", Val: fadeInStyleID}},
		}
		style.AppendChild(&html.Node{
			Type: html.TextNode,
			Data: "@keyframes " + fadeInStyleID + " { from { opacity: 0; } to { opacity: 1; } }",
		})
		head.AppendChild(style)
	}
	SetStyle(body, "display", "block")
	SetStyle(body, "animation", fmt.Sprintf("%s %dms ease-in both", fadeInStyleID, o.FadeIn.Milliseconds()))
	return 1
}
