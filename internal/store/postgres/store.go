// Package postgres provides the Postgres-backed reconciler.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/metrics"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

// schemaDDL mirrors the deployed schema. Running it is idempotent and
// side-effect-free when the tables already exist.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS players (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	team VARCHAR(3),
	position VARCHAR(5),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(name, team)
);
CREATE TABLE IF NOT EXISTS games (
	id SERIAL PRIMARY KEY,
	week INTEGER NOT NULL,
	year INTEGER NOT NULL,
	game_date DATE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(week, year)
);
CREATE TABLE IF NOT EXISTS player_stats (
	id SERIAL PRIMARY KEY,
	player_id INTEGER REFERENCES players(id),
	game_id INTEGER REFERENCES games(id),
	fantasy_points DECIMAL(5,2) DEFAULT 0,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(player_id, game_id)
);
`

const upsertGameSQL = `
INSERT INTO games (week, year, game_date)
VALUES ($1, $2, $3)
ON CONFLICT (week, year) DO UPDATE SET game_date = EXCLUDED.game_date
RETURNING id`

const upsertPlayerSQL = `
INSERT INTO players (name, team, position)
VALUES ($1, $2, $3)
ON CONFLICT (name, team) DO UPDATE SET position = EXCLUDED.position
RETURNING id`

const upsertStatSQL = `
INSERT INTO player_stats (player_id, game_id, fantasy_points)
VALUES ($1, $2, $3)
ON CONFLICT (player_id, game_id)
DO UPDATE SET fantasy_points = EXCLUDED.fantasy_points, updated_at = CURRENT_TIMESTAMP`

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store performs idempotent upserts against the players/games/player_stats
// schema. It only ever inserts-or-updates, never deletes, and never reads
// rows back except through the natural-key upserts themselves.
type Store struct {
	pool   pgxPool
	clock  pipeline.Clock
	logger *zap.Logger
}

// Open connects a Store to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, clock pipeline.Clock, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, clock: clock, logger: logger}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool pgxPool, clock pipeline.Clock, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool, clock: clock, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the three tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertGame writes the single Game row for (week, year). On conflict the
// game_date is overwritten with the current run's date.
func (s *Store) UpsertGame(ctx context.Context, week, year int) (int64, error) {
	var id int64
	gameDate := s.clock.Now()
	if err := s.pool.QueryRow(ctx, upsertGameSQL, week, year, gameDate).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert game (%d, %d): %w", week, year, err)
	}
	return id, nil
}

// UpsertPlayer writes one Player row keyed by (name, team); position is
// last-write-wins.
func (s *Store) UpsertPlayer(ctx context.Context, rec pipeline.CandidateRecord) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, upsertPlayerSQL, rec.Name, rec.Team, string(rec.Position)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert player %q: %w", rec.Name, err)
	}
	return id, nil
}

// UpsertStat writes one PlayerStat row keyed by (player_id, game_id).
func (s *Store) UpsertStat(ctx context.Context, playerID, gameID int64, fantasyPoints float64) error {
	if _, err := s.pool.Exec(ctx, upsertStatSQL, playerID, gameID, fantasyPoints); err != nil {
		return fmt.Errorf("upsert stat for player %d: %w", playerID, err)
	}
	return nil
}

// ReconcileBatch merges the candidate batch into the schema for one
// (week, year) and returns the count of fully processed records.
//
// The game upsert is load-bearing for the whole batch, so its failure is
// fatal. Per-record failures are logged and skipped; earlier successes in
// the same run stay committed.
func (s *Store) ReconcileBatch(ctx context.Context, batch []pipeline.CandidateRecord, week, year int) (int, error) {
	gameID, err := s.UpsertGame(ctx, week, year)
	if err != nil {
		return 0, err
	}

	success := 0
	for _, rec := range batch {
		if rec.Name == "" {
			// Extraction should have dropped these already.
			continue
		}
		playerID, err := s.UpsertPlayer(ctx, rec)
		if err != nil {
			s.logger.Warn("skipping record after player upsert failure",
				zap.String("player", rec.Name), zap.Error(err))
			continue
		}
		if points, ok := rec.Stats.First(); ok {
			if err := s.UpsertStat(ctx, playerID, gameID, points); err != nil {
				s.logger.Warn("skipping record after stat upsert failure",
					zap.String("player", rec.Name), zap.Error(err))
				continue
			}
		}
		success++
	}

	metrics.ObserveRecordsSaved(success)
	return success, nil
}
