package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/calibrate"
	"github.com/yourusername/dupr-insight/internal/ingest"
	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
	"github.com/yourusername/dupr-insight/internal/repository"
	"github.com/yourusername/dupr-insight/internal/simulate"
)

// AnalysisService turns match history into fitted rating models and answers
// what-if queries against them. Each analysis run produces a session; the
// fitted model lives on the session until it expires.
type AnalysisService struct {
	adapter    *ingest.Adapter
	calibrator *calibrate.Calibrator
	sessions   *SessionStore
	repo       repository.ModelRepository
	logger     *logrus.Logger
}

// NewAnalysisService creates an analysis service. repo may be nil when
// persistence is disabled.
func NewAnalysisService(
	calibrator *calibrate.Calibrator,
	sessions *SessionStore,
	repo repository.ModelRepository,
	logger *logrus.Logger,
) *AnalysisService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AnalysisService{
		adapter:    ingest.NewAdapter(logger),
		calibrator: calibrator,
		sessions:   sessions,
		repo:       repo,
		logger:     logger,
	}
}

// AnalyzeWorkbook ingests the match history sheet of an exported workbook
// and calibrates a model against it. On a degenerate fit the session is
// still created and returned alongside the error so callers can inspect the
// pinned model.
func (s *AnalysisService) AnalyzeWorkbook(ctx context.Context, path string) (*Session, error) {
	source, err := ingest.FromWorkbook(path, s.logger)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, source)
}

// AnalyzeSnapshot calibrates directly against an in-memory crawl snapshot,
// skipping the workbook round trip.
func (s *AnalysisService) AnalyzeSnapshot(ctx context.Context, data *models.ClubData, playerOrder []string) (*Session, error) {
	if data == nil {
		return nil, fmt.Errorf("no crawl snapshot: %w", models.ErrEmptyDataset)
	}
	return s.analyze(ctx, snapshotSource(data, playerOrder))
}

func (s *AnalysisService) analyze(ctx context.Context, source ingest.RowSource) (*Session, error) {
	normalized, err := s.adapter.Normalize(source)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Source:       normalized.Source,
		Observations: normalized.Observations,
		Dropped:      normalized.Dropped,
	}

	model, fitErr := s.calibrator.Fit(ctx, normalized.Observations)
	if fitErr != nil && !models.IsDegenerateFit(fitErr) {
		return nil, fitErr
	}

	session.Model = model
	s.sessions.Put(session)
	metrics.SetLastFitError(model.Error)

	if s.repo != nil {
		if err := s.repo.SaveModel(ctx, model); err != nil {
			s.logger.WithError(err).Warn("Failed to persist fitted model")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"k":          model.K,
		"scale":      model.Scale,
		"error":      model.Error,
	}).Info("Analysis session created")

	// fitErr is nil or a degenerate-fit report; either way the session holds
	// a usable model.
	return session, fitErr
}

// Simulate answers a what-if query against the model of a live session.
func (s *AnalysisService) Simulate(sessionID uuid.UUID, ratingBefore, opponentRatingBefore, result float64) (*models.ExpectedOutcome, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Model == nil {
		return nil, fmt.Errorf("session %s has no fitted model: %w", sessionID, models.ErrNotFound)
	}
	outcome, err := simulate.Simulate(session.Model, ratingBefore, opponentRatingBefore, result)
	if err != nil {
		return nil, err
	}
	metrics.RecordSimulation()
	return &outcome, nil
}

// Session exposes session lookup for callers that need the raw session.
func (s *AnalysisService) Session(sessionID uuid.UUID) (*Session, error) {
	return s.sessions.Get(sessionID)
}

// snapshotSource renders a crawl snapshot as a row source with the canonical
// match history headers.
func snapshotSource(data *models.ClubData, playerOrder []string) ingest.RowSource {
	headers := []string{
		"Player Rating Before",
		"Opponent Rating Before",
		"Result",
		"Player Rating After",
	}

	matches := data.AllMatches(playerOrder)
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			formatRating(m.RatingBefore),
			formatRating(m.OpponentBefore),
			m.Result,
			formatRating(m.RatingAfter),
		})
	}

	return ingest.NewSliceSource(fmt.Sprintf("snapshot:%s", data.Club.ID), headers, rows)
}

func formatRating(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
