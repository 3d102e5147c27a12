// Package metrics exposes Prometheus collectors for the ingest service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestRunsTotal            *prometheus.CounterVec
	ingestSourcesTotal         *prometheus.CounterVec
	ingestRecordsFoundTotal    *prometheus.CounterVec
	ingestRecordsSavedTotal    prometheus.Counter
	ingestFetchDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ingestRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_runs_total",
				Help: "Total number of ingest invocations, labeled by status.",
			},
			[]string{"status"},
		)

		ingestSourcesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_sources_total",
				Help: "Total number of sources processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		ingestRecordsFoundTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_records_found_total",
				Help: "Total candidate records extracted, labeled by site.",
			},
			[]string{"site"},
		)

		ingestRecordsSavedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_records_saved_total",
				Help: "Total records fully reconciled into the store.",
			},
		)

		ingestFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingest_fetch_duration_seconds",
				Help:    "Histogram of source fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"site"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun increments the run counter for the given status.
func ObserveRun(status string) {
	Init()
	ingestRunsTotal.WithLabelValues(status).Inc()
}

// ObserveSource increments the per-source outcome counter.
func ObserveSource(source string, outcome string) {
	Init()
	ingestSourcesTotal.WithLabelValues(SanitizeSite(source), outcome).Inc()
}

// ObserveRecordsFound adds extracted candidate counts for a source.
func ObserveRecordsFound(source string, count int) {
	if count <= 0 {
		return
	}
	Init()
	ingestRecordsFoundTotal.WithLabelValues(SanitizeSite(source)).Add(float64(count))
}

// ObserveRecordsSaved adds fully reconciled record counts.
func ObserveRecordsSaved(count int) {
	if count <= 0 {
		return
	}
	Init()
	ingestRecordsSavedTotal.Add(float64(count))
}

// ObserveFetchDuration records the latency of one source fetch.
func ObserveFetchDuration(source string, duration time.Duration) {
	Init()
	ingestFetchDurationSeconds.WithLabelValues(SanitizeSite(source)).Observe(duration.Seconds())
}
