package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doxydecor/internal/server"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Preview a Doxygen tree with pages decorated on request",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("disable") {
		cfg.Decor.Disabled = append(cfg.Decor.Disabled, disabled...)
	}
	d, err := newDecorator()
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Root:      cfg.Input,
		Decorator: d,
		Logger:    stdLogger("http"),
		CacheTTL:  cfg.CacheTTL,
	})
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("serving", zap.String("addr", cfg.Addr), zap.String("root", cfg.Input))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8090)")
	serveCmd.Flags().StringSliceVar(&disabled, "disable", nil, "Steps to skip (see 'doxydecor steps')")
}
