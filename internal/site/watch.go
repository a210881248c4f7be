package site

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-decorates pages as Doxygen rewrites them. fsnotify watches are
// per directory, so every directory of the input tree is added up front and
// new ones as they appear.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	rewriter *Rewriter
	in       string
	out      string
	skip     string // absolute output dir when nested under in
	debounce time.Duration
	pending  map[string]time.Time
	written  map[string][sha256.Size]byte
	logger   *log.Logger
}

func NewWatcher(r *Rewriter, in, out string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		rewriter: r,
		in:       in,
		out:      out,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		written:  make(map[string][sha256.Size]byte),
		logger:   r.logger,
	}
	if out != "" && filepath.Clean(out) != filepath.Clean(in) {
		if abs, err := filepath.Abs(out); err == nil {
			w.skip = abs
		}
	}
	if err := w.addTree(in); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.inOutput(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// inOutput reports whether path lies in the output tree, whose writes must
// not feed back into the watch.
func (w *Watcher) inOutput(path string) bool {
	if w.skip == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == w.skip || strings.HasPrefix(abs, w.skip+string(filepath.Separator))
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	tick := w.debounce / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.logger.Printf("watching %s", w.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watch error: %v", err)
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if w.inOutput(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Printf("watch %s: %v", ev.Name, err)
			}
			return
		}
	}
	if !isHTML(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now().Add(w.debounce)
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	var due []string
	w.mu.Lock()
	for path, at := range w.pending {
		if !now.Before(at) {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()
	for _, path := range due {
		w.rewrite(path)
	}
}

func (w *Watcher) dstFor(src string) (string, error) {
	if w.out == "" || filepath.Clean(w.out) == filepath.Clean(w.in) {
		return src, nil
	}
	rel, err := filepath.Rel(w.in, src)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.out, rel), nil
}

func (w *Watcher) rewrite(src string) {
	data, err := os.ReadFile(src)
	if err != nil {
		// Doxygen deletes and recreates pages; a vanished file is fine.
		return
	}
	sum := sha256.Sum256(data)
	w.mu.Lock()
	last, seen := w.written[src]
	w.mu.Unlock()
	if seen && last == sum {
		return
	}
	dst, err := w.dstFor(src)
	if err != nil {
		w.logger.Printf("watch %s: %v", src, err)
		return
	}
	rep, written, err := w.rewriter.RewriteFile(src, dst)
	if err != nil {
		w.logger.Printf("watch %s: %v", src, err)
		return
	}
	if written && dst == src {
		if out, err := os.ReadFile(dst); err == nil {
			w.mu.Lock()
			w.written[src] = sha256.Sum256(out)
			w.mu.Unlock()
		}
	}
	if written {
		w.logger.Printf("decorated %s: %s", dst, rep)
	}
}
