// Package fetcher retrieves raw tabular documents for stat sources.
package fetcher

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/metrics"
)

// Config controls fetch behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements pipeline.Fetcher using a Colly collector. It is an
// explicitly constructed instance holding its headers and timeout; nothing
// here is process-global.
type Fetcher struct {
	cfg           Config
	policy        Policy
	logger        *zap.Logger
	baseCollector *colly.Collector
}

// New builds a Fetcher gated by the given crawl policy.
func New(cfg Config, policy Policy, logger *zap.Logger) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Fetcher{
		cfg:           cfg,
		policy:        policy,
		logger:        logger,
		baseCollector: colly.NewCollector(colly.Async(false)),
	}
}

// Fetch issues a single GET for source. Every failure mode is a non-fatal
// skip: crawl policy denial, transport errors, timeouts, and non-success
// statuses all yield (nil, false) so the caller continues with the
// remaining sources.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, bool) {
	if f.policy != nil && !f.policy.Allowed(ctx, source) {
		f.logger.Info("source disallowed by crawl policy; skipping",
			zap.String("source", source))
		metrics.ObserveSource(source, "policy_denied")
		return nil, false
	}

	start := time.Now()
	body, err := f.get(ctx, source)
	if err != nil {
		f.logger.Warn("fetch failed; skipping source",
			zap.String("source", source), zap.Error(err))
		metrics.ObserveSource(source, "fetch_failed")
		return nil, false
	}

	f.logger.Debug("fetched source",
		zap.String("source", source),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))
	metrics.ObserveSource(source, "fetched")
	metrics.ObserveFetchDuration(source, time.Since(start))
	return body, true
}

func (f *Fetcher) get(ctx context.Context, source string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	// The gate has already ruled on robots; don't let colly re-fetch the policy.
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(source)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
		if fetchErr != nil {
			return nil, fetchErr
		}
		return body, nil
	}
}
