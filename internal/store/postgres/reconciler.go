package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
	"github.com/gridironlabs/fantasy-stats-crawler/internal/secrets"
)

// Reconciler implements pipeline.Reconciler with scoped connection
// acquisition: each reconciliation resolves credentials, opens the pool,
// ensures the schema, merges the batch, and releases the pool on every path.
type Reconciler struct {
	resolver    secrets.Resolver
	dsnOverride string
	clock       pipeline.Clock
	logger      *zap.Logger
}

// NewReconciler builds a Reconciler. dsnOverride bypasses the secret store
// for local development; leave it empty in deployed environments.
func NewReconciler(resolver secrets.Resolver, dsnOverride string, clock pipeline.Clock, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		resolver:    resolver,
		dsnOverride: dsnOverride,
		clock:       clock,
		logger:      logger,
	}
}

// Reconcile implements pipeline.Reconciler.
func (r *Reconciler) Reconcile(ctx context.Context, batch []pipeline.CandidateRecord, week, year int) (int, error) {
	dsn := r.dsnOverride
	if dsn == "" {
		creds, err := r.resolver.Resolve(ctx)
		if err != nil {
			return 0, fmt.Errorf("resolve db credentials: %w", err)
		}
		dsn = creds.DSN()
	}

	store, err := Open(ctx, dsn, r.clock, r.logger)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return store.ReconcileBatch(ctx, batch, week, year)
}
