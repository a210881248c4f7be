package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doxydecor/internal/browser"
)

var (
	bakeOut       string
	waitSelector  string
	waitAfterLoad time.Duration
	waitIdle      time.Duration
	scripts       []string
)

var bakeCmd = &cobra.Command{
	Use:   "bake <url|file>",
	Short: "Render a page in headless Chrome, decorate the runtime DOM and save it",
	Long: `Doxygen builds the navigation tree with JavaScript, so the static file on
disk lacks it. bake loads the page in headless Chrome, captures the DOM once
the page settles, decorates it and writes the result to --out (stdout when
unset).`,
	Args: cobra.ExactArgs(1),
	RunE: runBake,
}

func runBake(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("disable") {
		cfg.Decor.Disabled = append(cfg.Decor.Disabled, disabled...)
	}
	d, err := newDecorator()
	if err != nil {
		return err
	}
	target, err := browser.TargetURL(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	b := browser.NewBaker(stdLogger("browser"))
	defer b.Close()

	baked, err := b.Bake(ctx, target, browser.BakeOptions{
		Timeout:         cfg.ChromeTimeout,
		WaitSelector:    waitSelector,
		WaitNetworkIdle: waitIdle,
		WaitAfterLoad:   waitAfterLoad,
		Scripts:         scripts,
	})
	if err != nil {
		return err
	}
	// The DOM comes back from Chrome as UTF-8 whatever the page declared.
	out, rep, err := d.Decorate([]byte(baked), "text/html; charset=utf-8")
	if err != nil {
		return err
	}
	logger.Info("baked", zap.String("target", target), zap.Stringer("report", rep))

	if bakeOut == "" || bakeOut == "-" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(bakeOut, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", bakeOut, err)
	}
	return nil
}

func init() {
	bakeCmd.Flags().StringVarP(&bakeOut, "out", "o", "", "Output file (default: stdout)")
	bakeCmd.Flags().StringVar(&waitSelector, "wait-selector", "#nav-tree", "CSS selector to wait for before capturing")
	bakeCmd.Flags().DurationVar(&waitAfterLoad, "wait", 0, "Extra delay after load")
	bakeCmd.Flags().DurationVar(&waitIdle, "wait-idle", 500*time.Millisecond, "Network quiet time required before capturing")
	bakeCmd.Flags().StringArrayVar(&scripts, "script", nil, "JavaScript to evaluate before capturing (repeatable)")
	bakeCmd.Flags().StringSliceVar(&disabled, "disable", nil, "Steps to skip (see 'doxydecor steps')")
}
