package site

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"doxydecor/decor"
)

const page = `<!DOCTYPE html><html><head><title>t</title></head><body>
<div class="summary"><a href="#define-members">Macros</a> &#124;
<a href="#func-members">Functions</a></div>
<table class="memberdecls">
<tr class="heading"><td colspan="2"><h2 class="groupheader"><a name="define-members"></a>
Macros</h2></td></tr>
</table>
<table class="memberdecls">
<tr class="heading"><td colspan="2"><h2 class="groupheader"><a name="func-members"></a>
Functions</h2></td></tr>
</table>
<dl class="reflist"><dt>x</dt></dl>
</body></html>`

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newRewriter() *Rewriter {
	return NewRewriter(decor.New(decor.DefaultOptions(), quietLogger()), 2, quietLogger())
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func macrosLast(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	s := string(b)
	fn, mr := strings.Index(s, "\nFunctions</h2>"), strings.Index(s, "\nMacros</h2>")
	return fn >= 0 && mr > fn
}

func TestRewriteMirrorsTree(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTree(t, in, map[string]string{
		"index.html":       page,
		"group/a_8h.html":  page,
		"doxygen.css":      "body{}",
		"search/search.js": "var x;",
	})

	sum, err := newRewriter().Rewrite(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Pages)
	assert.Equal(t, 2, sum.Written)
	assert.Equal(t, 2, sum.Copied)
	assert.Positive(t, sum.Touched)

	assert.True(t, macrosLast(filepath.Join(out, "group", "a_8h.html")))
	assert.FileExists(t, filepath.Join(out, "search", "search.js"))

	src, err := os.ReadFile(filepath.Join(in, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, page, string(src), "input left alone")

	sum, err = newRewriter().Rewrite(context.Background(), out, out)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Unchanged, "decorated output is stable")
	assert.Zero(t, sum.Written)
}

func TestRewriteInPlaceSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"files.html": page})
	path := filepath.Join(dir, "files.html")

	sum, err := newRewriter().Rewrite(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.True(t, macrosLast(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `class="todo"`)
}

func TestRewriteMissingInput(t *testing.T) {
	_, err := newRewriter().Rewrite(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
}

func TestWatcherRedecoratesChangedPages(t *testing.T) {
	defer goleak.VerifyNone(t)

	in, out := t.TempDir(), t.TempDir()
	w, err := NewWatcher(newRewriter(), in, out, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeTree(t, in, map[string]string{"globals.html": page})
	dst := filepath.Join(out, "globals.html")
	require.Eventually(t, func() bool {
		return macrosLast(dst)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, w.Close())
}

func TestWatcherIgnoresNestedOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	in := t.TempDir()
	out := filepath.Join(in, "decorated")
	require.NoError(t, os.MkdirAll(out, 0o755))

	w, err := NewWatcher(newRewriter(), in, out, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, w.inOutput(filepath.Join(out, "globals.html")))
	assert.False(t, w.inOutput(filepath.Join(in, "globals.html")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeTree(t, in, map[string]string{"globals.html": page})
	require.Eventually(t, func() bool {
		return macrosLast(filepath.Join(out, "globals.html"))
	}, 5*time.Second, 20*time.Millisecond)

	// Several debounce windows: a feedback loop would have produced a
	// second level by now.
	time.Sleep(200 * time.Millisecond)
	assert.NoDirExists(t, filepath.Join(out, "decorated"))

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, w.Close())
}
