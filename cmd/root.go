// Package cmd defines and implements the CLI commands for the
// fantasy-stats-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/config"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/logging"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/metrics"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fantasy-stats-crawler",
		Short: "Scrapes NFL player statistics into Postgres.",
		Long: `fantasy-stats-crawler periodically retrieves NFL player statistics,
extracts structured player records from semi-structured stat tables, and
reconciles them idempotently into a relational schema keyed by player/team
and week/year.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional)")
	cmd.AddCommand(newRunCmd(), newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the shared logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()
	return cfg, logger, nil
}
