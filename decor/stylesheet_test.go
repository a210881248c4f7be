package decor

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doxygenCSS = `
@import url("tabs.css");
div.memproto {
	border-top-left-radius: 4px;
	border-top-right-radius: 4px;
	padding: 6px 0 6px 0;
}
@media print {
	div.memproto { border-top-right-radius: 0; }
}
dl.note { padding: 2px !important; }
`

func TestComputedStyleAfterDecoration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doxygen.css"), []byte(doxygenCSS), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tabs.css"), []byte(`.memproto { color: #333; }`), 0o644))

	page := strings.Replace(samplePage, "<title>", `<link href="doxygen.css" rel="stylesheet" type="text/css"/><style>div.memproto { border-bottom-left-radius: 3px; }</style><title>`, 1)
	pagePath := filepath.Join(dir, "gimbal_test_8h.html")

	doc := mustParse(t, page)
	newTestDecorator(DefaultOptions()).Run(doc)
	ss := BuildStylesheet(doc, pagePath, FileLoader, log.New(io.Discard, "", 0))
	require.NotNil(t, ss)

	proto := find(doc, "div.memproto")[0]
	props := ComputeStyle(proto, ss)
	assert.Equal(t, "0px", props["border-top-left-radius"])
	assert.Equal(t, "0px", props["border-bottom-left-radius"])
	assert.Equal(t, "4px", props["border-top-right-radius"], "inline 4px, print rule ignored")
	assert.Equal(t, "#333", props["color"], "imported sheet applies")
	assert.Equal(t, "6px 0 6px 0", props["padding"])

	note := find(doc, "dl.note")[0]
	assert.Equal(t, "2px", ComputeStyle(note, ss)["padding"], "important rule beats plain inline")
}

func TestBuildStylesheetWithoutLoader(t *testing.T) {
	doc := mustParse(t, `<html><head><link rel="stylesheet" href="doxygen.css"><style>p { color: red } p.x { color: blue }</style></head><body><p class="x">hi</p></body></html>`)
	ss := BuildStylesheet(doc, "", nil, log.New(io.Discard, "", 0))
	assert.Equal(t, 2, ss.Len())
	p := find(doc, "p")[0]
	assert.Equal(t, "blue", ComputeStyle(p, ss)["color"])
}

func TestImportTarget(t *testing.T) {
	cases := []struct {
		in, target, media string
	}{
		{`url("tabs.css")`, "tabs.css", ""},
		{`url(navtree.css) screen`, "navtree.css", "screen"},
		{`"search/search.css" print`, "search/search.css", "print"},
		{`plain.css`, "plain.css", ""},
	}
	for _, tc := range cases {
		target, media := importTarget(tc.in)
		if target != tc.target || media != tc.media {
			t.Fatalf("importTarget(%q) = (%q,%q), want (%q,%q)", tc.in, target, media, tc.target, tc.media)
		}
	}
}
