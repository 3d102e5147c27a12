package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if got := cfg.Sources.List(); len(got) != 1 || got[0] != "https://www.fantasypros.com/nfl/stats/qb.php" {
		t.Fatalf("unexpected default sources: %v", got)
	}
	if cfg.Fetcher.Timeout() != 15*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.Fetcher.Timeout())
	}
	if cfg.Fetcher.Delay() != 2*time.Second {
		t.Fatalf("unexpected default delay: %v", cfg.Fetcher.Delay())
	}
	if !cfg.Fetcher.RespectRobots {
		t.Fatal("expected robots respected by default")
	}
	if cfg.Defaults.Week != 1 || cfg.Defaults.Year != 2025 {
		t.Fatalf("unexpected default week/year: %d/%d", cfg.Defaults.Week, cfg.Defaults.Year)
	}
	if cfg.DB.SecretEnv != "DB_SECRET_JSON" {
		t.Fatalf("unexpected secret env: %q", cfg.DB.SecretEnv)
	}
	if cfg.SportsData.Enabled() {
		t.Fatal("API source must be disabled without a key")
	}
	if cfg.Snapshot.Enabled {
		t.Fatal("snapshots must be disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
sources:
  urls: "http://a.example.com/stats, http://b.example.com/stats"
fetcher:
  delay_seconds: 0
  respect_robots: false
sportsdata:
  api_key: test-key
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	list := cfg.Sources.List()
	if len(list) != 2 || list[0] != "http://a.example.com/stats" || list[1] != "http://b.example.com/stats" {
		t.Fatalf("unexpected sources: %v", list)
	}
	if cfg.Fetcher.RespectRobots {
		t.Fatal("expected robots override")
	}
	if !cfg.SportsData.Enabled() {
		t.Fatal("expected API source enabled with key")
	}
	// Untouched keys keep their defaults.
	if cfg.Defaults.Year != 2025 {
		t.Fatalf("expected default year preserved, got %d", cfg.Defaults.Year)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestSourcesList(t *testing.T) {
	cases := []struct {
		urls string
		want int
	}{
		{"http://a", 1},
		{"http://a,http://b", 2},
		{" http://a , , http://b ", 2},
		{"", 0},
		{" , ", 0},
	}
	for _, tc := range cases {
		if got := (SourcesConfig{URLs: tc.urls}).List(); len(got) != tc.want {
			t.Fatalf("urls %q: expected %d sources, got %v", tc.urls, tc.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Port: 8080},
		Sources:  SourcesConfig{URLs: "http://a"},
		Fetcher:  FetcherConfig{TimeoutSeconds: 15, DelaySeconds: 2},
		Defaults: DefaultsConfig{Week: 1, Year: 2025},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"no sources", func(c *Config) { c.Sources.URLs = "" }},
		{"zero timeout", func(c *Config) { c.Fetcher.TimeoutSeconds = 0 }},
		{"negative delay", func(c *Config) { c.Fetcher.DelaySeconds = -1 }},
		{"zero week", func(c *Config) { c.Defaults.Week = 0 }},
		{"zero year", func(c *Config) { c.Defaults.Year = 0 }},
		{"snapshot without dir", func(c *Config) { c.Snapshot.Enabled = true; c.Snapshot.Dir = "" }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
