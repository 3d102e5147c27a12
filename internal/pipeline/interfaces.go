package pipeline

import (
	"context"
	"time"
)

// Fetcher retrieves the raw document for a source URL. A nil body with
// ok=false means the source was skipped (crawl policy, transport failure,
// non-success status); skips are never fatal to an invocation.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (body []byte, ok bool)
}

// Extractor turns raw tabular content into candidate records.
type Extractor interface {
	Extract(body []byte, source string) []CandidateRecord
}

// Reconciler merges a candidate batch into the relational store for one
// (week, year) and returns the count of fully processed records. Only
// store-connectivity-class failures surface as errors; per-record failures
// are absorbed.
type Reconciler interface {
	Reconcile(ctx context.Context, batch []CandidateRecord, week, year int) (int, error)
}

// Snapshotter archives raw source content and returns a URI for provenance.
type Snapshotter interface {
	Save(ctx context.Context, source string, body []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
