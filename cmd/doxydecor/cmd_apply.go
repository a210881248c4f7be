package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doxydecor/internal/site"
)

var (
	outDir   string
	workers  int
	disabled []string
)

var applyCmd = &cobra.Command{
	Use:   "apply [dir|file]",
	Short: "Decorate a Doxygen output tree or a single page",
	Long: `Decorates every .html file under the input directory. Without --out the
pages are rewritten in place; with --out the tree is mirrored there and
non-HTML files are copied alongside.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

// applyOverrides folds positional args and shared flags into cfg.
func applyOverrides(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if f := cmd.Flags().Lookup("out"); f != nil && f.Changed {
		cfg.Output = outDir
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		cfg.Workers = workers
	}
	if f := cmd.Flags().Lookup("disable"); f != nil && f.Changed {
		cfg.Decor.Disabled = append(cfg.Decor.Disabled, disabled...)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runApply(cmd *cobra.Command, args []string) error {
	applyOverrides(cmd, args)
	d, err := newDecorator()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	r := site.NewRewriter(d, cfg.Workers, stdLogger("site"))
	sum, err := r.Rewrite(ctx, cfg.Input, cfg.Output)
	if err != nil {
		return err
	}
	logger.Info("apply finished",
		zap.String("input", cfg.Input),
		zap.Int("pages", sum.Pages),
		zap.Int("written", sum.Written),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("copied", sum.Copied),
		zap.Int("touched", sum.Touched))
	fmt.Fprintln(cmd.OutOrStdout(), sum)
	return nil
}

func addRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: rewrite in place)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Pages decorated in parallel")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Steps to skip (see 'doxydecor steps')")
}

func init() {
	addRewriteFlags(applyCmd)
}
