// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	DB         DBConfig         `mapstructure:"db"`
	SportsData SportsDataConfig `mapstructure:"sportsdata"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SourcesConfig lists the scrape targets.
type SourcesConfig struct {
	// URLs is a comma-separated list; sources are processed in declared order.
	URLs string `mapstructure:"urls"`
}

// List splits the configured URL string into ordered sources.
func (s SourcesConfig) List() []string {
	var out []string
	for _, raw := range strings.Split(s.URLs, ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FetcherConfig governs the HTTP fetch behavior per source.
type FetcherConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DelaySeconds   int    `mapstructure:"delay_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// Timeout converts the configured fetch timeout into a duration.
func (f FetcherConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Delay converts the configured inter-source delay into a duration.
func (f FetcherConfig) Delay() time.Duration {
	return time.Duration(f.DelaySeconds) * time.Second
}

// DefaultsConfig supplies the fixed week/year fallbacks for invocations that
// omit them. There is deliberately no live "current week" derivation here;
// callers supply real values or opt into the sportsdata lookup.
type DefaultsConfig struct {
	Week int `mapstructure:"week"`
	Year int `mapstructure:"year"`
}

// DBConfig controls access to the relational database. Credentials come from
// the secret bundle; DSN is a local-development override only.
type DBConfig struct {
	SecretEnv string `mapstructure:"secret_env"`
	DSN       string `mapstructure:"dsn"`
}

// SportsDataConfig enables the optional stats API source.
type SportsDataConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Enabled reports whether the API source should participate in runs.
func (s SportsDataConfig) Enabled() bool { return s.APIKey != "" }

// SnapshotConfig controls the optional raw-content archive.
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FFCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("sources.urls", "https://www.fantasypros.com/nfl/stats/qb.php")
	v.SetDefault("fetcher.user_agent", "fantasy-stats-crawler/1.0 (+https://github.com/gridironlabs/fantasy-stats-crawler)")
	v.SetDefault("fetcher.timeout_seconds", 15)
	v.SetDefault("fetcher.delay_seconds", 2)
	v.SetDefault("fetcher.respect_robots", true)
	v.SetDefault("defaults.week", 1)
	v.SetDefault("defaults.year", 2025)
	v.SetDefault("db.secret_env", "DB_SECRET_JSON")
	v.SetDefault("sportsdata.base_url", "https://api.sportsdata.io/v3/nfl")
	v.SetDefault("sportsdata.timeout_seconds", 30)
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.dir", "data/snapshots")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if len(c.Sources.List()) == 0 {
		return fmt.Errorf("sources.urls must list at least one URL")
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeout_seconds must be > 0")
	}
	if c.Fetcher.DelaySeconds < 0 {
		return fmt.Errorf("fetcher.delay_seconds must be >= 0")
	}
	if c.Defaults.Week <= 0 || c.Defaults.Year <= 0 {
		return fmt.Errorf("defaults.week and defaults.year must be > 0")
	}
	if c.Snapshot.Enabled && c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir must be set when snapshots are enabled")
	}
	return nil
}
