package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doxydecor/internal/site"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Decorate the tree, then keep re-decorating pages Doxygen rewrites",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	logger.Info("initial pass", zap.Int("pages", sum.Pages), zap.Int("written", sum.Written))

	w, err := site.NewWatcher(r, cfg.Input, cfg.Output, cfg.Debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("watching", zap.String("input", cfg.Input), zap.Duration("debounce", cfg.Debounce))
	return w.Run(ctx)
}

func init() {
	addRewriteFlags(watchCmd)
}
