// Package main provides the what-if simulation CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/database"
	"github.com/yourusername/dupr-insight/internal/logger"
	"github.com/yourusername/dupr-insight/internal/models"
	"github.com/yourusername/dupr-insight/internal/repository"
	"github.com/yourusername/dupr-insight/internal/simulate"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		modelID    = flag.String("model", "", "Fitted model ID to simulate against (default: most recent)")
		k          = flag.Float64("k", 0, "Use an explicit K instead of a stored model")
		scale      = flag.Float64("scale", 0, "Use an explicit scale instead of a stored model")
		rating     = flag.Float64("rating", 0, "Player rating before the match")
		opponent   = flag.Float64("opponent", 0, "Opponent rating before the match")
		result     = flag.Float64("result", 1, "Match result: 1 for a win, 0 for a loss")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLogger(cfg.App.LogLevel)

	model, err := resolveModel(cfg, *modelID, *k, *scale)
	if err != nil {
		appLogger.Fatalf("Failed to resolve model: %v", err)
	}

	outcome, err := simulate.Simulate(model, *rating, *opponent, *result)
	if err != nil {
		appLogger.Fatalf("Simulation failed: %v", err)
	}

	fmt.Printf("expected=%.6f delta=%.6f new_rating=%.6f\n",
		outcome.Expected, outcome.Delta, outcome.NewRating)
}

// resolveModel picks the model to simulate against: explicit -k/-scale wins,
// then a stored model by ID, then the most recently fitted one.
func resolveModel(cfg *config.Config, modelID string, k, scale float64) (*models.FittedModel, error) {
	if k > 0 || scale > 0 {
		if k <= 0 || scale <= 0 {
			return nil, fmt.Errorf("-k and -scale must be set together")
		}
		return &models.FittedModel{K: k, Scale: scale}, nil
	}

	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("no -k/-scale given and database.enabled is false")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	repo := repository.NewPostgresModelRepository(db)

	if modelID != "" {
		id, err := uuid.Parse(modelID)
		if err != nil {
			return nil, fmt.Errorf("invalid model ID %q: %w", modelID, err)
		}
		return repo.GetModel(ctx, id)
	}

	recent, err := repo.ListModels(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("no fitted models stored: %w", models.ErrNotFound)
	}
	return recent[0], nil
}
