package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
</body></html>`

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T, root string, ttl time.Duration, clock *fakeClock) *Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	opts := decor.DefaultOptions()
	opts.Disabled = []string{"fadein"}
	return New(Config{
		Root:      root,
		Decorator: decor.New(opts, logger),
		Logger:    logger,
		Clock:     clock.Now,
		CacheTTL:  ttl,
	})
}

func get(s http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, t.TempDir(), time.Minute, &fakeClock{now: time.Unix(0, 0)})
	rec := get(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStepsListsDisabled(t *testing.T) {
	s := newTestServer(t, t.TempDir(), time.Minute, &fakeClock{now: time.Unix(0, 0)})
	rec := get(s, "/steps")
	require.Equal(t, http.StatusOK, rec.Code)

	var steps []struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	require.Len(t, steps, len(decor.StepNames()))
	for _, st := range steps {
		assert.Equal(t, st.Name != "fadein", st.Enabled, st.Name)
	}
}

func TestServesDecoratedPage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "files.html"), page)

	s := newTestServer(t, root, time.Minute, &fakeClock{now: time.Unix(0, 0)})
	rec := get(s, "/files.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	fn, mr := strings.Index(body, "\nFunctions</h2>"), strings.Index(body, "\nMacros</h2>")
	assert.True(t, fn >= 0 && mr > fn, "macros block moved last")

	src, err := os.ReadFile(filepath.Join(root, "files.html"))
	require.NoError(t, err)
	assert.Equal(t, page, string(src), "source untouched")
}

func TestDirectoryServesIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), page)
	writeFile(t, filepath.Join(root, "group", "index.html"), page)

	s := newTestServer(t, root, 0, &fakeClock{now: time.Unix(0, 0)})
	assert.Equal(t, http.StatusOK, get(s, "/").Code)
	assert.Equal(t, http.StatusOK, get(s, "/group/").Code)

	rec := get(s, "/group")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/group/", rec.Header().Get("Location"))
}

func TestStaticFilesPassThrough(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "doxygen.css"), "body{color:red}")

	s := newTestServer(t, root, time.Minute, &fakeClock{now: time.Unix(0, 0)})
	rec := get(s, "/doxygen.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{color:red}", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Doxydecor-Cache"))
}

func TestMissingAndTraversal(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "html")
	writeFile(t, filepath.Join(root, "index.html"), page)
	writeFile(t, filepath.Join(parent, "secret.html"), "secret")

	s := newTestServer(t, root, time.Minute, &fakeClock{now: time.Unix(0, 0)})
	assert.Equal(t, http.StatusNotFound, get(s, "/nope.html").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/../secret.html").Code)

	_, ok := s.localPath("/../../secret.html")
	assert.True(t, ok, "cleaned paths stay inside the root")
	local, _ := s.localPath("/../secret.html")
	assert.True(t, strings.HasPrefix(local, root))
}

func TestPageCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	writeFile(t, path, page)

	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestServer(t, root, time.Minute, clock)

	assert.Equal(t, "miss", get(s, "/a.html").Header().Get("X-Doxydecor-Cache"))
	assert.Equal(t, "hit", get(s, "/a.html").Header().Get("X-Doxydecor-Cache"))

	clock.now = clock.now.Add(2 * time.Minute)
	assert.Equal(t, "miss", get(s, "/a.html").Header().Get("X-Doxydecor-Cache"), "ttl expired")

	writeFile(t, path, strings.Replace(page, "<title>t</title>", "<title>changed</title>", 1))
	rec := get(s, "/a.html")
	assert.Equal(t, "miss", rec.Header().Get("X-Doxydecor-Cache"), "size changed")
	assert.Contains(t, rec.Body.String(), "changed")

	hits, misses := s.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
}

func TestCacheDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.html"), page)

	s := newTestServer(t, root, 0, &fakeClock{now: time.Unix(0, 0)})
	get(s, "/a.html")
	assert.Equal(t, "miss", get(s, "/a.html").Header().Get("X-Doxydecor-Cache"))
}

func TestHeadServesHeadersOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.html"), page)

	s := newTestServer(t, root, time.Minute, &fakeClock{now: time.Unix(0, 0)})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/a.html", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}
