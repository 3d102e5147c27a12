package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

// newRunCmd creates the 'run' subcommand: one fetch-extract-reconcile
// invocation for a (week, year).
func newRunCmd() *cobra.Command {
	var week, year int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs one ingest invocation",
		Long: `Fetches every configured source once, extracts candidate player
records, and reconciles them into the database for the given week and year.
Omitted week/year fall back to the configured defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			orch, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}

			summary, err := orch.Run(cmd.Context(), pipeline.Task{Week: week, Year: year})
			if err != nil {
				return fmt.Errorf("run ingest: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "NFL week (0 = use default)")
	cmd.Flags().IntVar(&year, "year", 0, "season year (0 = use default)")
	return cmd
}

func syncLogger(logger *zap.Logger) {
	// Best effort; stderr sync failures are expected on some platforms.
	_ = logger.Sync()
}
