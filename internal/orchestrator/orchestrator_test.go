package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

type fakeFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, source string) ([]byte, bool) {
	f.calls = append(f.calls, source)
	body, ok := f.bodies[source]
	return body, ok
}

type fakeExtractor struct {
	records map[string][]pipeline.CandidateRecord
}

func (e *fakeExtractor) Extract(_ []byte, source string) []pipeline.CandidateRecord {
	return e.records[source]
}

type fakeReconciler struct {
	err   error
	batch []pipeline.CandidateRecord
	week  int
	year  int
	calls int
}

func (r *fakeReconciler) Reconcile(_ context.Context, batch []pipeline.CandidateRecord, week, year int) (int, error) {
	r.calls++
	r.batch = batch
	r.week = week
	r.year = year
	if r.err != nil {
		return 0, r.err
	}
	return len(batch), nil
}

type fakeAPI struct {
	week       int
	weekErr    error
	candidates []pipeline.CandidateRecord
	candErr    error
}

func (a *fakeAPI) CurrentWeek(context.Context) (int, error) {
	return a.week, a.weekErr
}

func (a *fakeAPI) WeekCandidates(context.Context, int, int) ([]pipeline.CandidateRecord, error) {
	return a.candidates, a.candErr
}

func record(name string) pipeline.CandidateRecord {
	return pipeline.CandidateRecord{Name: name, Team: "KC", Stats: pipeline.StatLine{Values: []float64{10}}}
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"http://a": []byte("a"),
		"http://b": []byte("b"),
	}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
		"http://b": {record("Travis Kelce")},
	}}
	rec := &fakeReconciler{}

	o := New(Config{Sources: []string{"http://a", "http://b"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, nil, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{Week: 3, Year: 2024})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Week != 3 || summary.Year != 2024 {
		t.Fatalf("expected explicit week/year to be used, got %d/%d", summary.Week, summary.Year)
	}
	if summary.PlayersFound != 2 || summary.PlayersSaved != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.SourcesProcessed != 2 || summary.SourcesSkipped != 0 {
		t.Fatalf("unexpected source counts: %+v", summary)
	}
	if summary.Message != "Successfully processed 2 players" {
		t.Fatalf("unexpected message: %q", summary.Message)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if rec.week != 3 || rec.year != 2024 {
		t.Fatalf("reconciler saw wrong week/year: %d/%d", rec.week, rec.year)
	}
}

func TestRunAppliesDefaults(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, nil, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Week != 1 || summary.Year != 2025 {
		t.Fatalf("expected defaults 1/2025, got %d/%d", summary.Week, summary.Year)
	}
}

func TestRunUsesCurrentWeekLookup(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}
	api := &fakeAPI{week: 7}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, api, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Week != 7 {
		t.Fatalf("expected live week 7, got %d", summary.Week)
	}
}

func TestRunCurrentWeekFailureFallsBack(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}
	api := &fakeAPI{weekErr: errors.New("api down"), candErr: errors.New("api down")}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 2, DefaultYear: 2025},
		fetcher, extractor, rec, api, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Week != 2 {
		t.Fatalf("expected default week on lookup failure, got %d", summary.Week)
	}
}

func TestRunSkipsFailedSources(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://good": []byte("x")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://good": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}

	o := New(Config{Sources: []string{"http://denied", "http://good"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, nil, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SourcesSkipped != 1 || summary.SourcesProcessed != 1 {
		t.Fatalf("unexpected source counts: %+v", summary)
	}
	if len(fetcher.calls) != 2 {
		t.Fatalf("expected both sources attempted, got %v", fetcher.calls)
	}
	if summary.PlayersSaved != 1 {
		t.Fatalf("expected surviving source to be saved, got %d", summary.PlayersSaved)
	}
}

func TestRunEmptyBatchSkipsReconciler(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	extractor := &fakeExtractor{}
	rec := &fakeReconciler{}

	o := New(Config{Sources: []string{"http://dead"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, nil, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Message != "No players found" {
		t.Fatalf("unexpected message: %q", summary.Message)
	}
	if rec.calls != 0 {
		t.Fatal("reconciler must not run on an empty batch")
	}
	if summary.PlayersFound != 0 || summary.PlayersSaved != 0 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
}

func TestRunReconcileErrorPropagates(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{err: errors.New("connect postgres: refused")}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, nil, nil, zap.NewNop())

	_, err := o.Run(context.Background(), pipeline.Task{})
	if err == nil {
		t.Fatal("expected reconcile failure to surface")
	}
	if !strings.Contains(err.Error(), "reconcile batch") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRunMergesAPICandidates(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}
	api := &fakeAPI{week: 5, candidates: []pipeline.CandidateRecord{record("Joe Burrow")}}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, api, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{Week: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PlayersFound != 2 {
		t.Fatalf("expected scraped and API records merged, got %d", summary.PlayersFound)
	}
	if len(rec.batch) != 2 {
		t.Fatalf("reconciler saw %d records", len(rec.batch))
	}
}

func TestRunAPIFailureCountsAsSkip(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://a": []byte("a")}}
	extractor := &fakeExtractor{records: map[string][]pipeline.CandidateRecord{
		"http://a": {record("Patrick Mahomes")},
	}}
	rec := &fakeReconciler{}
	api := &fakeAPI{week: 5, candErr: errors.New("quota exceeded")}

	o := New(Config{Sources: []string{"http://a"}, DefaultWeek: 1, DefaultYear: 2025},
		fetcher, extractor, rec, api, nil, zap.NewNop())

	summary, err := o.Run(context.Background(), pipeline.Task{Week: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SourcesSkipped != 1 {
		t.Fatalf("expected API failure to count as a skip, got %+v", summary)
	}
	if summary.PlayersSaved != 1 {
		t.Fatalf("expected scraped records still saved, got %d", summary.PlayersSaved)
	}
}
