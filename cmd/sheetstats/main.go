// Package main provides the CLI entry point for sheetstats.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetstats-go/internal/config"
	"github.com/ukaji3/sheetstats-go/internal/logging"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
)

var (
	configPath string
	layoutMode string
	logLevel   string
)

// app is what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	opts   sheetstats.Options
	logger *slog.Logger
	closer io.Closer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sheetstats",
		Short: "Count spreadsheet events per day or hour",
		Long: `sheetstats reads timestamped event rows from xlsx workbooks and counts
them per day or per hour over a date range, back-filling empty periods.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $SHEETSTATS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&layoutMode, "layout", "", "Workbook layout: sheets or lookup (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(newSheetsCmd(a), newAnalyzeCmd(a), newServeCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if layoutMode != "" {
		cfg.Layout.Mode = layoutMode
		if layoutMode == string(sheetstats.LayoutLookup) && cfg.Layout.FrequencyColumn == "" {
			cfg.Layout.FrequencyColumn = sheetstats.DefaultLookupOptions().Columns.Frequency
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	opts, err := cfg.Layout.Options()
	if err != nil {
		_ = closer.Close()
		return err
	}
	opts.Logger = logger

	a.cfg = cfg
	a.opts = opts
	a.logger = logger
	a.closer = closer
	return nil
}

// open loads path into a new Analyzer.
func (a *app) open(path string) (*sheetstats.Analyzer, error) {
	wb, err := sheetstats.Open(path)
	if err != nil {
		return nil, err
	}
	analyzer, err := sheetstats.NewAnalyzer(a.opts)
	if err != nil {
		_ = wb.Close()
		return nil, err
	}
	if err := analyzer.Load(wb); err != nil {
		_ = wb.Close()
		return nil, err
	}
	return analyzer, nil
}
