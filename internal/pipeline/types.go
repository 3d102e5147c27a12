// Package pipeline defines core types shared across the ingest subsystems.
package pipeline

import "fmt"

// Position is one of the fixed fantasy-relevant roster positions.
type Position string

// Recognized positions. Anything else is left absent on a candidate record.
const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
	PositionDST Position = "DST"
)

var knownPositions = map[Position]struct{}{
	PositionQB:  {},
	PositionRB:  {},
	PositionWR:  {},
	PositionTE:  {},
	PositionK:   {},
	PositionDEF: {},
	PositionDST: {},
}

// ParsePosition returns the Position matching s exactly, if any.
func ParsePosition(s string) (Position, bool) {
	p := Position(s)
	_, ok := knownPositions[p]
	return p, ok
}

// StatLine holds every numeric value extracted for one player observation.
// Values are positional in encounter order; Named carries richer per-category
// stats when the source provides them (API sources do, scraped tables don't).
// Only the first positional value is persisted as fantasy points today, but
// the full line is kept addressable so a wider schema never has to re-derive
// extraction.
type StatLine struct {
	Values []float64
	Named  map[string]float64
}

// First returns the first extracted value, the one persisted as fantasy_points.
func (s StatLine) First() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[0], true
}

// Len reports how many positional values were extracted.
func (s StatLine) Len() int { return len(s.Values) }

// Indexed renders the positional values under their synthetic stat_N keys.
func (s StatLine) Indexed() map[string]float64 {
	out := make(map[string]float64, len(s.Values))
	for i, v := range s.Values {
		out[fmt.Sprintf("stat_%d", i)] = v
	}
	return out
}

// CandidateRecord is one extracted, not-yet-persisted player observation.
// A record without a Name never reaches the reconciler.
type CandidateRecord struct {
	Name     string
	Team     string
	Position Position
	Stats    StatLine
	Source   string
}

// Task is one (week, year) invocation request. Zero fields fall back to the
// configured defaults.
type Task struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

// Summary aggregates the outcome of one invocation.
type Summary struct {
	RunID            string `json:"run_id"`
	Week             int    `json:"week"`
	Year             int    `json:"year"`
	SourcesProcessed int    `json:"sources_processed"`
	SourcesSkipped   int    `json:"sources_skipped"`
	PlayersFound     int    `json:"total_players_found"`
	PlayersSaved     int    `json:"players_saved"`
	Message          string `json:"message"`
}
