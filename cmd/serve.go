package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/api"
)

// newServeCmd creates the 'serve' subcommand exposing the HTTP surface so an
// external scheduler can trigger invocations.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP trigger service",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			orch, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           api.NewServer(orch, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info("listening", zap.Int("port", cfg.Server.Port))
			if err := server.ListenAndServe(); err != nil {
				return fmt.Errorf("serve http: %w", err)
			}
			return nil
		},
	}
}
