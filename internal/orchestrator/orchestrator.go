// Package orchestrator drives the fetch, extract, reconcile sequence for one
// (week, year) invocation.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/metrics"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

// APISource supplies candidate records from the optional stats API.
type APISource interface {
	CurrentWeek(ctx context.Context) (int, error)
	WeekCandidates(ctx context.Context, season, week int) ([]pipeline.CandidateRecord, error)
}

// Config controls orchestration behavior.
type Config struct {
	// Sources are processed in declared order.
	Sources []string
	// Delay is the minimum wait between successive source fetches. It is a
	// scheduling contract owed to the sources, not throughput control.
	Delay       time.Duration
	DefaultWeek int
	DefaultYear int
}

// Orchestrator runs invocations sequentially: one source fetched, extracted,
// and accumulated at a time, then a single reconciliation for the whole
// batch. Each invocation is independent; overlapping invocations rely on the
// store's per-row conflict handling.
type Orchestrator struct {
	cfg        Config
	fetcher    pipeline.Fetcher
	extractor  pipeline.Extractor
	reconciler pipeline.Reconciler
	api        APISource            // optional
	snapshots  pipeline.Snapshotter // optional
	logger     *zap.Logger
}

// New builds an Orchestrator. api and snapshots may be nil.
func New(
	cfg Config,
	fetcher pipeline.Fetcher,
	extractor pipeline.Extractor,
	reconciler pipeline.Reconciler,
	api APISource,
	snapshots pipeline.Snapshotter,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		reconciler: reconciler,
		api:        api,
		snapshots:  snapshots,
		logger:     logger,
	}
}

// Run executes one invocation. Per-source failures are absorbed as skips;
// only a reconciliation (data-layer) failure makes the invocation fail, and
// per-record writes already committed by then remain.
func (o *Orchestrator) Run(ctx context.Context, task pipeline.Task) (pipeline.Summary, error) {
	week, year := o.resolveWeekYear(ctx, task)
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID), zap.Int("week", week), zap.Int("year", year))
	logger.Info("starting ingest run", zap.Int("sources", len(o.cfg.Sources)))

	var batch []pipeline.CandidateRecord
	processed, skipped := 0, 0

	for i, source := range o.cfg.Sources {
		if i > 0 {
			pause(ctx, o.cfg.Delay)
		}
		body, ok := o.fetcher.Fetch(ctx, source)
		if !ok {
			skipped++
			continue
		}
		processed++
		o.archive(ctx, logger, source, body)
		batch = append(batch, o.extractor.Extract(body, source)...)
	}

	if o.api != nil {
		records, err := o.api.WeekCandidates(ctx, year, week)
		if err != nil {
			logger.Warn("stats API source failed; skipping", zap.Error(err))
			skipped++
		} else {
			processed++
			batch = append(batch, records...)
		}
	}

	summary := pipeline.Summary{
		RunID:            runID,
		Week:             week,
		Year:             year,
		SourcesProcessed: processed,
		SourcesSkipped:   skipped,
		PlayersFound:     len(batch),
	}

	if len(batch) == 0 {
		// Nothing usable: the reconciler is never invoked, so no schema
		// ensure happens and no Game row is created for this (week, year).
		summary.Message = "No players found"
		logger.Info("run finished with no candidate records")
		metrics.ObserveRun("no_data")
		return summary, nil
	}

	saved, err := o.reconciler.Reconcile(ctx, batch, week, year)
	if err != nil {
		metrics.ObserveRun("failed")
		return pipeline.Summary{}, fmt.Errorf("reconcile batch: %w", err)
	}

	summary.PlayersSaved = saved
	summary.Message = fmt.Sprintf("Successfully processed %d players", saved)
	logger.Info("run finished",
		zap.Int("players_found", len(batch)),
		zap.Int("players_saved", saved),
		zap.Int("sources_skipped", skipped))
	metrics.ObserveRun("succeeded")
	return summary, nil
}

// resolveWeekYear applies the fixed defaults, with an optional live current
// week lookup when the API source is configured and the caller omitted the
// week.
func (o *Orchestrator) resolveWeekYear(ctx context.Context, task pipeline.Task) (int, int) {
	week, year := task.Week, task.Year
	if year == 0 {
		year = o.cfg.DefaultYear
	}
	if week == 0 && o.api != nil {
		current, err := o.api.CurrentWeek(ctx)
		if err != nil {
			o.logger.Warn("current week lookup failed; using default", zap.Error(err))
		} else {
			week = current
		}
	}
	if week == 0 {
		week = o.cfg.DefaultWeek
	}
	return week, year
}

func (o *Orchestrator) archive(ctx context.Context, logger *zap.Logger, source string, body []byte) {
	if o.snapshots == nil {
		return
	}
	uri, err := o.snapshots.Save(ctx, source, body)
	if err != nil {
		logger.Warn("snapshot failed", zap.String("source", source), zap.Error(err))
		return
	}
	logger.Debug("snapshot written", zap.String("source", source), zap.String("uri", uri))
}

// pause waits out the inter-source delay, returning early on cancellation.
func pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
