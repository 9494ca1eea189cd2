package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/dupr-insight/internal/database"
	"github.com/yourusername/dupr-insight/internal/models"
)

// PostgresCrawlRepository implements CrawlRepository for PostgreSQL. The full
// snapshot is stored as JSONB alongside the summary columns used for queries.
type PostgresCrawlRepository struct {
	db *database.DB
}

// NewPostgresCrawlRepository creates a new crawl repository
func NewPostgresCrawlRepository(db *database.DB) CrawlRepository {
	return &PostgresCrawlRepository{db: db}
}

// SaveSnapshot inserts a crawl snapshot
func (r *PostgresCrawlRepository) SaveSnapshot(ctx context.Context, data *models.ClubData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO club_snapshots (club_id, crawled_at, name, total_members, scraped_matches, data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		data.Club.ID, data.Club.CrawledAt, data.Club.Name,
		data.Club.TotalMembers, data.Club.ScrapedMatches, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot for a club
func (r *PostgresCrawlRepository) GetLatestSnapshot(ctx context.Context, clubID string) (*models.ClubData, error) {
	query := `
		SELECT data
		FROM club_snapshots
		WHERE club_id = $1
		ORDER BY crawled_at DESC
		LIMIT 1
	`

	var payload []byte
	err := r.db.GetPool().QueryRow(ctx, query, clubID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	data := &models.ClubData{}
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return data, nil
}
