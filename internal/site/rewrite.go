// Package site runs the decorator over a whole Doxygen output tree, either
// once or continuously as Doxygen regenerates it.
package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"doxydecor/decor"
)

// Summary totals one Rewrite pass.
type Summary struct {
	Pages     int
	Written   int
	Unchanged int
	Copied    int
	Touched   int
}

func (s Summary) String() string {
	return fmt.Sprintf("pages=%d written=%d unchanged=%d copied=%d touched=%d", s.Pages, s.Written, s.Unchanged, s.Copied, s.Touched)
}

type Rewriter struct {
	decorator *decor.Decorator
	workers   int
	logger    *log.Logger
}

func NewRewriter(d *decor.Decorator, workers int, logger *log.Logger) *Rewriter {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Rewriter{decorator: d, workers: workers, logger: logger}
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// Rewrite decorates every HTML page under in. With out empty or equal to in
// pages are rewritten in place; otherwise the tree is mirrored into out and
// non-HTML files are copied alongside. in may also name a single page.
func (r *Rewriter) Rewrite(ctx context.Context, in, out string) (Summary, error) {
	var sum Summary
	info, err := os.Stat(in)
	if err != nil {
		return sum, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		dst := in
		if out != "" {
			dst = out
			if st, err := os.Stat(out); err == nil && st.IsDir() {
				dst = filepath.Join(out, filepath.Base(in))
			}
		}
		rep, written, err := r.RewriteFile(in, dst)
		if err != nil {
			return sum, err
		}
		sum.Pages = 1
		sum.Touched = rep.Total()
		if written {
			sum.Written = 1
		} else {
			sum.Unchanged = 1
		}
		return sum, nil
	}

	inPlace := out == "" || filepath.Clean(out) == filepath.Clean(in)
	absOut := ""
	if !inPlace {
		absOut, _ = filepath.Abs(out)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	walkErr := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if absOut != "" {
				if abs, _ := filepath.Abs(path); abs == absOut {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		dst := path
		if !inPlace {
			rel, err := filepath.Rel(in, path)
			if err != nil {
				return err
			}
			dst = filepath.Join(out, rel)
		}
		src := path
		if !isHTML(src) {
			if inPlace {
				return nil
			}
			g.Go(func() error {
				if err := copyFile(src, dst); err != nil {
					return err
				}
				mu.Lock()
				sum.Copied++
				mu.Unlock()
				return nil
			})
			return nil
		}
		g.Go(func() error {
			rep, written, err := r.RewriteFile(src, dst)
			if err != nil {
				return err
			}
			mu.Lock()
			sum.Pages++
			sum.Touched += rep.Total()
			if written {
				sum.Written++
			} else {
				sum.Unchanged++
			}
			mu.Unlock()
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return sum, err
	}
	if walkErr != nil {
		return sum, fmt.Errorf("walk %s: %w", in, walkErr)
	}
	r.logger.Printf("rewrite %s -> %s: %s", in, outLabel(in, out), sum)
	return sum, nil
}

func outLabel(in, out string) string {
	if out == "" {
		return in
	}
	return out
}

// RewriteFile decorates src into dst. Nothing is written when dst already
// holds exactly the decorated bytes.
func (r *Rewriter) RewriteFile(src, dst string) (decor.Report, bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return decor.Report{}, false, fmt.Errorf("read %s: %w", src, err)
	}
	out, rep, err := r.decorator.DecorateBytes(data)
	if err != nil {
		return rep, false, fmt.Errorf("decorate %s: %w", src, err)
	}
	if existing, err := os.ReadFile(dst); err == nil && bytes.Equal(existing, out) {
		return rep, false, nil
	}
	if err := writeFileAtomic(dst, out); err != nil {
		return rep, false, err
	}
	return rep, true, nil
}

func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(dst); err == nil {
		mode = st.Mode().Perm()
	}
	tmp, err := os.CreateTemp(dir, ".doxydecor-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
