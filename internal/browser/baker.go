// Package browser renders Doxygen pages in headless Chrome so that
// script-built parts such as the navigation tree end up in the saved DOM.
package browser

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultTimeout = 25 * time.Second

// BakeOptions tunes a single bake.
type BakeOptions struct {
	Timeout time.Duration
	// WaitSelector is waited on (visible) after the body is ready.
	WaitSelector string
	// WaitNetworkIdle requires this much quiet time with no requests in
	// flight before the DOM is captured.
	WaitNetworkIdle time.Duration
	WaitAfterLoad   time.Duration
	Scripts         []string
	Width, Height   int64
}

type Baker struct {
	allocator context.Context
	cancel    context.CancelFunc
	logger    *log.Logger
}

func NewBaker(logger *log.Logger) *Baker {
	if logger == nil {
		logger = log.Default()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Baker{
		allocator: allocCtx,
		cancel:    cancel,
		logger:    logger,
	}
}

func (b *Baker) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// TargetURL turns a command line argument into something Chrome can load.
// Existing local paths become file URLs; http(s) and file URLs pass through.
func TargetURL(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("bake: empty target")
	}
	if u, err := url.Parse(arg); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return arg, nil
		}
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("bake: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("bake: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Bake loads target and returns the serialized runtime DOM.
func (b *Baker) Bake(ctx context.Context, target string, opts BakeOptions) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("bake: empty target url")
	}
	taskCtx, cancelBrowser := chromedp.NewContext(b.allocator)
	defer cancelBrowser()

	if ctx != nil {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithCancel(taskCtx)
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-taskCtx.Done():
			}
		}()
		defer cancel()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, timeout)
	defer cancelTimeout()

	var (
		mu           sync.Mutex
		active       int
		lastActivity = time.Now()
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			mu.Lock()
			active++
			lastActivity = time.Now()
			mu.Unlock()
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			mu.Lock()
			if active > 0 {
				active--
			}
			lastActivity = time.Now()
			mu.Unlock()
		}
	})

	actions := []chromedp.Action{network.Enable()}
	if opts.Width > 0 && opts.Height > 0 {
		w, h := opts.Width, opts.Height
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(w, h, 1, false).Do(ctx)
		}))
	}
	actions = append(actions,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if sel := strings.TrimSpace(opts.WaitSelector); sel != "" {
		actions = append(actions, chromedp.WaitVisible(sel, chromedp.ByQuery))
	}
	if opts.WaitNetworkIdle > 0 {
		quiet := opts.WaitNetworkIdle
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				mu.Lock()
				idle := active == 0 && time.Since(lastActivity) >= quiet
				mu.Unlock()
				if idle {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		}))
	}
	if opts.WaitAfterLoad > 0 {
		actions = append(actions, chromedp.Sleep(opts.WaitAfterLoad))
	}
	for _, snippet := range opts.Scripts {
		if code := strings.TrimSpace(snippet); code != "" {
			actions = append(actions, chromedp.Evaluate(code, nil))
		}
	}

	var out string
	actions = append(actions, chromedp.OuterHTML("html", &out, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("bake %s: %w", target, err)
	}
	b.logger.Printf("baked %s in %s (%d bytes)", target, time.Since(start).Round(time.Millisecond), len(out))
	return withDoctype(out), nil
}

// OuterHTML drops the doctype; put the HTML5 one back so the saved page
// keeps standards mode.
func withDoctype(s string) string {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") {
		return s
	}
	return "<!DOCTYPE html>\n" + s
}
