// Package sportsdata implements the optional sportsdata.io API source.
package sportsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/scoring"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Config controls the API client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the sportsdata.io NFL API.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// GameStat is one player's per-game stat row as returned by the API.
type GameStat struct {
	Name                string  `json:"Name"`
	Team                string  `json:"Team"`
	Position            string  `json:"Position"`
	PassingYards        float64 `json:"PassingYards"`
	PassingTouchdowns   float64 `json:"PassingTouchdowns"`
	Interceptions       float64 `json:"Interceptions"`
	RushingYards        float64 `json:"RushingYards"`
	RushingTouchdowns   float64 `json:"RushingTouchdowns"`
	ReceivingYards      float64 `json:"ReceivingYards"`
	ReceivingTouchdowns float64 `json:"ReceivingTouchdowns"`
	Receptions          float64 `json:"Receptions"`
	Fumbles             float64 `json:"Fumbles"`
}

// CurrentWeek returns the league's current week for the season.
func (c *Client) CurrentWeek(ctx context.Context) (int, error) {
	var payload struct {
		Week int `json:"Week"`
	}
	if err := c.getJSON(ctx, "/scores/json/CurrentWeek", &payload); err != nil {
		return 0, err
	}
	if payload.Week <= 0 {
		return 0, fmt.Errorf("current week response missing week")
	}
	return payload.Week, nil
}

// PlayerGameStatsByWeek returns every player's stat row for (season, week).
func (c *Client) PlayerGameStatsByWeek(ctx context.Context, season, week int) ([]GameStat, error) {
	var stats []GameStat
	path := fmt.Sprintf("/stats/json/PlayerGameStatsByWeek/%d/%d", season, week)
	if err := c.getJSON(ctx, path, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// WeekCandidates fetches the week's stat rows and maps them into candidate
// records tagged with the API host as their source.
func (c *Client) WeekCandidates(ctx context.Context, season, week int) ([]pipeline.CandidateRecord, error) {
	stats, err := c.PlayerGameStatsByWeek(ctx, season, week)
	if err != nil {
		return nil, err
	}
	return Candidates(stats, c.cfg.BaseURL), nil
}

// Candidates maps API stat rows into candidate records. The computed fantasy
// point total leads the stat line so persistence picks it up as stat_0; the
// full category breakdown rides along in Named.
func Candidates(stats []GameStat, source string) []pipeline.CandidateRecord {
	records := make([]pipeline.CandidateRecord, 0, len(stats))
	for _, s := range stats {
		if s.Name == "" {
			continue
		}
		cats := scoring.Categories{
			PassingYards:      s.PassingYards,
			PassingTouchdowns: s.PassingTouchdowns,
			Interceptions:     s.Interceptions,
			RushingYards:      s.RushingYards,
			RushingTouchdowns: s.RushingTouchdowns,
			ReceivingYards:    s.ReceivingYards,
			ReceivingTDs:      s.ReceivingTouchdowns,
			Receptions:        s.Receptions,
			Fumbles:           s.Fumbles,
		}
		rec := pipeline.CandidateRecord{
			Name:   s.Name,
			Team:   s.Team,
			Source: source,
			Stats: pipeline.StatLine{
				Values: []float64{scoring.StandardPoints(cats)},
				Named:  cats.Named(),
			},
		}
		if pos, ok := pipeline.ParsePosition(s.Position); ok {
			rec.Position = pos
		}
		records = append(records, rec)
	}
	return records
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("Failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s body: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
