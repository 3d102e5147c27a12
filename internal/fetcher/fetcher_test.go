package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubPolicy struct {
	allow bool
}

func (p stubPolicy) Allowed(context.Context, string) bool { return p.allow }

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<table><tr><td>x</td></tr></table>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second}, stubPolicy{allow: true}, zap.NewNop())
	body, ok := f.Fetch(context.Background(), srv.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if string(body) != "<table><tr><td>x</td></tr></table>" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetchSendsConfiguredUserAgent(t *testing.T) {
	var gotAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "stats-bot/1.0"}, stubPolicy{allow: true}, zap.NewNop())
	if _, ok := f.Fetch(context.Background(), srv.URL); !ok {
		t.Fatal("expected fetch to succeed")
	}
	if got := gotAgent.Load(); got != "stats-bot/1.0" {
		t.Fatalf("expected identifying agent, got %v", got)
	}
}

func TestFetchSkipsOnPolicyDenial(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(Config{}, stubPolicy{allow: false}, zap.NewNop())
	body, ok := f.Fetch(context.Background(), srv.URL)
	if ok || body != nil {
		t.Fatal("expected policy denial to skip the source")
	}
	if hits.Load() != 0 {
		t.Fatal("expected no request to reach a denied source")
	}
}

func TestFetchSkipsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Config{}, stubPolicy{allow: true}, zap.NewNop())
	if _, ok := f.Fetch(context.Background(), srv.URL); ok {
		t.Fatal("expected non-success status to skip the source")
	}
}

func TestFetchSkipsOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	deadURL := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second}, stubPolicy{allow: true}, zap.NewNop())
	if _, ok := f.Fetch(context.Background(), deadURL); ok {
		t.Fatal("expected transport failure to skip the source")
	}
}
