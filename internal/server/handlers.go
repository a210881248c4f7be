package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	disabled := make(map[string]bool)
	for _, name := range s.cfg.Decorator.Options().Disabled {
		disabled[name] = true
	}
	type step struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	var out []step
	for _, name := range s.cfg.Decorator.Steps() {
		out = append(out, step{Name: name, Enabled: !disabled[name]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	local, ok := s.localPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(local)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		local = filepath.Join(local, "index.html")
		if info, err = os.Stat(local); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
	}
	if !isHTMLPath(local) {
		s.files.ServeHTTP(w, r)
		return
	}

	if body, ok := s.cache.Load(local, info); ok {
		writePage(w, r, body, "hit")
		return
	}
	src, err := os.ReadFile(local)
	if err != nil {
		http.Error(w, "read page", http.StatusInternalServerError)
		return
	}
	body, rep, err := s.cfg.Decorator.DecorateBytes(src)
	if err != nil {
		s.logger.Printf("decorate %s: %v", local, err)
		http.Error(w, "decorate page", http.StatusInternalServerError)
		return
	}
	s.logger.Printf("decorated %s: %s", r.URL.Path, rep)
	s.cache.Store(local, info, body)
	writePage(w, r, body, "miss")
}

// localPath maps a request path onto the served root. Paths that would
// escape the root are rejected.
func (s *Server) localPath(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if strings.Contains(clean, "\x00") {
		return "", false
	}
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return "", false
	}
	local := filepath.Join(root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(root, local)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return local, true
}

func isHTMLPath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func writePage(w http.ResponseWriter, r *http.Request, body []byte, cache string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Doxydecor-Cache", cache)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
