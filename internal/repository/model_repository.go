package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/dupr-insight/internal/database"
	"github.com/yourusername/dupr-insight/internal/models"
)

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// SaveModel inserts a fitted model
func (r *PostgresModelRepository) SaveModel(ctx context.Context, model *models.FittedModel) error {
	query := `
		INSERT INTO fitted_models (id, k, scale, error, metric, observations, fitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		model.ID, model.K, model.Scale, model.Error, model.Metric, model.Observations, model.FittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save fitted model: %w", err)
	}

	return nil
}

// GetModel retrieves a fitted model by ID
func (r *PostgresModelRepository) GetModel(ctx context.Context, id uuid.UUID) (*models.FittedModel, error) {
	query := `
		SELECT id, k, scale, error, metric, observations, fitted_at
		FROM fitted_models WHERE id = $1
	`

	model := &models.FittedModel{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&model.ID, &model.K, &model.Scale, &model.Error, &model.Metric, &model.Observations, &model.FittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fitted model: %w", err)
	}

	return model, nil
}

// ListModels retrieves the most recent fitted models, newest first
func (r *PostgresModelRepository) ListModels(ctx context.Context, limit int) ([]*models.FittedModel, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, k, scale, error, metric, observations, fitted_at
		FROM fitted_models
		ORDER BY fitted_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fitted models: %w", err)
	}
	defer rows.Close()

	var result []*models.FittedModel
	for rows.Next() {
		model := &models.FittedModel{}
		err := rows.Scan(
			&model.ID, &model.K, &model.Scale, &model.Error, &model.Metric, &model.Observations, &model.FittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fitted model: %w", err)
		}
		result = append(result, model)
	}

	return result, rows.Err()
}
