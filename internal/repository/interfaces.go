// Package repository defines persistence interfaces and their PostgreSQL
// implementations.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/dupr-insight/internal/models"
)

// ModelRepository persists fitted rating models.
type ModelRepository interface {
	SaveModel(ctx context.Context, model *models.FittedModel) error
	GetModel(ctx context.Context, id uuid.UUID) (*models.FittedModel, error)
	ListModels(ctx context.Context, limit int) ([]*models.FittedModel, error)
}

// CrawlRepository persists club crawl snapshots.
type CrawlRepository interface {
	SaveSnapshot(ctx context.Context, data *models.ClubData) error
	GetLatestSnapshot(ctx context.Context, clubID string) (*models.ClubData, error)
}
