package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/clock/system"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/config"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/extractor"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/fetcher"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/orchestrator"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/secrets"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/snapshot"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/sportsdata"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/store/postgres"
)

// buildOrchestrator wires the full pipeline from configuration.
func buildOrchestrator(cfg config.Config, logger *zap.Logger) (*orchestrator.Orchestrator, error) {
	clock := system.New()

	gate := fetcher.NewRobotsGate(cfg.Fetcher.RespectRobots, cfg.Fetcher.UserAgent, logger)
	fetch := fetcher.New(fetcher.Config{
		UserAgent: cfg.Fetcher.UserAgent,
		Timeout:   cfg.Fetcher.Timeout(),
	}, gate, logger)

	extract := extractor.New(logger)

	reconciler := postgres.NewReconciler(
		secrets.EnvResolver{Var: cfg.DB.SecretEnv},
		cfg.DB.DSN,
		clock,
		logger,
	)

	var api orchestrator.APISource
	if cfg.SportsData.Enabled() {
		api = sportsdata.New(sportsdata.Config{
			BaseURL: cfg.SportsData.BaseURL,
			APIKey:  cfg.SportsData.APIKey,
			Timeout: time.Duration(cfg.SportsData.TimeoutSeconds) * time.Second,
		}, logger)
	}

	var snaps pipeline.Snapshotter
	if cfg.Snapshot.Enabled {
		archive, err := snapshot.New(cfg.Snapshot.Dir, clock)
		if err != nil {
			return nil, fmt.Errorf("init snapshot archive: %w", err)
		}
		snaps = archive
	}

	return orchestrator.New(
		orchestrator.Config{
			Sources:     cfg.Sources.List(),
			Delay:       cfg.Fetcher.Delay(),
			DefaultWeek: cfg.Defaults.Week,
			DefaultYear: cfg.Defaults.Year,
		},
		fetch,
		extract,
		reconciler,
		api,
		snaps,
		logger,
	), nil
}
