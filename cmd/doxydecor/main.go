package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"doxydecor/decor"
	"doxydecor/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "doxydecor",
	Short: "Post-process Doxygen HTML output",
	Long: `doxydecor rewrites the HTML that Doxygen generates: it moves the Macros
section last, drops the Type Functions group, fixes split heading rows and
restyles cards, notes and the navigation pane.

Pages can be rewritten in bulk (apply), kept decorated while Doxygen runs
(watch), previewed through a local server (serve) or baked in headless
Chrome first so script-built navigation is captured (bake).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("input", cfg.Input),
			zap.String("output", cfg.Output),
			zap.Int("workers", cfg.Workers),
			zap.Strings("disabled", cfg.Decor.Disabled))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// stdLogger hands library packages a *log.Logger backed by zap.
func stdLogger(name string) *log.Logger {
	return zap.NewStdLog(logger.Named(name))
}

func newDecorator() (*decor.Decorator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// Per-page step counts are only interesting with --verbose.
	dl, err := zap.NewStdLogAt(logger.Named("decor"), zapcore.DebugLevel)
	if err != nil {
		return nil, err
	}
	return decor.New(cfg.DecorOptions(), dl), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $DOXYDECOR_CONFIG or ./doxydecor.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(bakeCmd)
	rootCmd.AddCommand(stepsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
