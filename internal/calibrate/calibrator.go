// Package calibrate fits the Elo-style rating transition model to observed
// match outcomes with an exhaustive bounded grid search.
package calibrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
)

// Calibrator runs grid-search fits. Safe for concurrent use; it holds no
// mutable state between runs.
type Calibrator struct {
	cfg    Config
	logger *logrus.Logger
}

// New creates a calibrator after validating the config.
func New(cfg Config, logger *logrus.Logger) (*Calibrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Calibrator{cfg: cfg, logger: logger}, nil
}

// candidate is one (K, scale) grid point with its aggregate error.
type candidate struct {
	err   float64
	scale float64
	k     float64
}

// better implements the deterministic selection order: lower error first,
// then smaller scale, then smaller K. The order is total, so merging worker
// results is independent of which worker finishes first.
func (a candidate) better(b candidate) bool {
	if a.err != b.err {
		return a.err < b.err
	}
	if a.scale != b.scale {
		return a.scale < b.scale
	}
	return a.k < b.k
}

// rowResult carries one worker's contribution back to the merge step.
type rowResult struct {
	best      candidate
	hasBest   bool
	minErr    float64
	maxErr    float64
	evaluated int
}

// Fit searches the (K, scale) grid for the candidate minimising the mean
// per-observation error and returns the winning FittedModel.
//
// Observations failing validation (and, under delta_mae, observations
// without a post-match rating) are excluded; if nothing survives, Fit fails
// with models.ErrEmptyDataset. When the configured timeout fires mid-search
// the best candidate found so far is returned. A grid on which every
// candidate ties is reported via models.DegenerateFitError alongside the
// boundary-pinned model.
func (c *Calibrator) Fit(ctx context.Context, observations []models.MatchObservation) (*models.FittedModel, error) {
	started := time.Now()

	usable := make([]models.MatchObservation, 0, len(observations))
	for _, obs := range observations {
		if c.cfg.Metric.usable(obs) {
			usable = append(usable, obs)
		}
	}
	if len(usable) == 0 {
		return nil, models.ErrEmptyDataset
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("calibration aborted before evaluating any candidate: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	kGrid := c.cfg.kValues()
	scaleGrid := c.cfg.scaleValues()
	gridSize := len(kGrid) * len(scaleGrid)

	merged := c.search(ctx, usable, kGrid, scaleGrid)
	if !merged.hasBest {
		return nil, fmt.Errorf("calibration aborted before evaluating any candidate: %w", ctx.Err())
	}

	metrics.RecordCalibration(time.Since(started).Seconds())

	model := &models.FittedModel{
		ID:           uuid.New(),
		K:            merged.best.k,
		Scale:        merged.best.scale,
		Error:        merged.best.err,
		Metric:       string(c.cfg.Metric),
		Observations: len(usable),
		FittedAt:     time.Now().UTC(),
	}

	fields := logrus.Fields{
		"k":            model.K,
		"scale":        model.Scale,
		"error":        model.Error,
		"metric":       model.Metric,
		"observations": model.Observations,
		"grid_size":    gridSize,
		"evaluated":    merged.evaluated,
		"duration":     time.Since(started),
	}

	if merged.evaluated < gridSize {
		c.logger.WithFields(fields).Warn("Calibration timed out, returning best candidate found so far")
		return model, nil
	}

	// A grid without any error spread carries no signal; the tie-break then
	// pins the pick to the (KMin, ScaleMin) corner.
	if gridSize > 1 && merged.minErr == merged.maxErr {
		c.logger.WithFields(fields).Warn("Calibration grid is degenerate, every candidate tied")
		return model, &models.DegenerateFitError{Model: model}
	}

	c.logger.WithFields(fields).Info("Calibration complete")
	return model, nil
}

// search evaluates the grid across a bounded worker pool. Workers claim
// whole scale rows so the logistic expected scores are computed once per
// scale and reused for every K candidate.
func (c *Calibrator) search(ctx context.Context, usable []models.MatchObservation, kGrid, scaleGrid []float64) rowResult {
	workers := c.cfg.workerCount()

	rows := make(chan int)
	results := make(chan rowResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := rowResult{}
			for si := range rows {
				if ctx.Err() != nil {
					break
				}
				c.evaluateScaleRow(usable, kGrid, scaleGrid[si], &local)
			}
			results <- local
		}()
	}

	go func() {
		defer close(rows)
		for si := range scaleGrid {
			select {
			case rows <- si:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := rowResult{}
	for local := range results {
		if !local.hasBest {
			continue
		}
		if !merged.hasBest {
			merged = local
			continue
		}
		if local.best.better(merged.best) {
			merged.best = local.best
		}
		if local.minErr < merged.minErr {
			merged.minErr = local.minErr
		}
		if local.maxErr > merged.maxErr {
			merged.maxErr = local.maxErr
		}
		merged.evaluated += local.evaluated
	}
	return merged
}

// evaluateScaleRow scores every K candidate at one scale value, folding the
// results into the worker-local accumulator.
func (c *Calibrator) evaluateScaleRow(usable []models.MatchObservation, kGrid []float64, scale float64, local *rowResult) {
	expected := make([]float64, len(usable))
	for i, obs := range usable {
		expected[i] = ExpectedScore(obs.RatingBefore-obs.OpponentRatingBefore, scale)
	}

	for _, k := range kGrid {
		sum := 0.0
		for i, obs := range usable {
			sum += c.cfg.Metric.observationError(obs, k, expected[i])
		}
		cand := candidate{err: sum / float64(len(usable)), scale: scale, k: k}

		if !local.hasBest {
			local.best = cand
			local.hasBest = true
			local.minErr = cand.err
			local.maxErr = cand.err
		} else {
			if cand.better(local.best) {
				local.best = cand
			}
			if cand.err < local.minErr {
				local.minErr = cand.err
			}
			if cand.err > local.maxErr {
				local.maxErr = cand.err
			}
		}
		local.evaluated++
	}
}
