// Package main provides the calibration CLI tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/calibrate"
	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/database"
	"github.com/yourusername/dupr-insight/internal/ingest"
	"github.com/yourusername/dupr-insight/internal/logger"
	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
	"github.com/yourusername/dupr-insight/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		workbook   = flag.String("workbook", "", "Path to an exported .xlsx workbook")
		metric     = flag.String("metric", "", "Override error metric: outcome_mae or delta_mae")
		timeoutMs  = flag.Int("timeout-ms", -1, "Override calibration timeout in milliseconds (0 disables)")
		save       = flag.Bool("save", false, "Persist the fitted model (requires database.enabled)")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	if *workbook == "" {
		appLogger.Fatal("-workbook is required")
	}
	if *metric != "" {
		cfg.Calibration.ErrorMetric = *metric
	}
	if *timeoutMs >= 0 {
		cfg.Calibration.TimeoutMs = *timeoutMs
	}
	if err := config.Validate(cfg); err != nil {
		appLogger.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	source, err := ingest.FromWorkbook(*workbook, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to open workbook: %v", err)
	}

	normalized, err := ingest.NewAdapter(appLogger).Normalize(source)
	if err != nil {
		appLogger.Fatalf("Failed to normalize match history: %v", err)
	}

	calCfg, err := calibrate.FromConfig(&cfg.Calibration)
	if err != nil {
		appLogger.Fatalf("Invalid calibration config: %v", err)
	}
	calibrator, err := calibrate.New(calCfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to build calibrator: %v", err)
	}

	model, err := calibrator.Fit(ctx, normalized.Observations)
	var degenerate *models.DegenerateFitError
	if err != nil && !errors.As(err, &degenerate) {
		appLogger.Fatalf("Calibration failed: %v", err)
	}

	if degenerate != nil {
		appLogger.WithField("error", model.Error).
			Warn("All grid candidates tied, bounds may be too narrow")
	}

	appLogger.WithFields(logrus.Fields{
		"k":            model.K,
		"scale":        model.Scale,
		"error":        model.Error,
		"metric":       model.Metric,
		"observations": model.Observations,
		"dropped":      normalized.Dropped,
	}).Info("Calibration result")

	fmt.Printf("K=%g scale=%g %s=%g (observations=%d, dropped=%d)\n",
		model.K, model.Scale, model.Metric, model.Error,
		model.Observations, normalized.Dropped)

	if *save {
		if !cfg.Database.Enabled {
			appLogger.Fatal("-save requires database.enabled")
		}
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := database.Initialize(dbCtx, cfg)
		if err != nil {
			appLogger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		repo := repository.NewPostgresModelRepository(db)
		if err := repo.SaveModel(ctx, model); err != nil {
			appLogger.Fatalf("Failed to save model: %v", err)
		}
		appLogger.WithField("model_id", model.ID).Info("Model saved")
	}
}
