package database

import (
	"context"
	"fmt"

	"github.com/yourusername/dupr-insight/internal/config"
)

// schema holds the tables required by the repositories. Idempotent so every
// startup can run it.
const schema = `
CREATE TABLE IF NOT EXISTS fitted_models (
	id UUID PRIMARY KEY,
	k DOUBLE PRECISION NOT NULL,
	scale DOUBLE PRECISION NOT NULL,
	error DOUBLE PRECISION NOT NULL,
	metric TEXT NOT NULL,
	observations INTEGER NOT NULL,
	fitted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS club_snapshots (
	club_id TEXT NOT NULL,
	crawled_at TIMESTAMPTZ NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	total_members INTEGER NOT NULL,
	scraped_matches INTEGER NOT NULL,
	data JSONB NOT NULL,
	PRIMARY KEY (club_id, crawled_at)
);
`

// Initialize creates the connection pool and ensures the schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}
