package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
)

// Adapter converts row sources into MatchObservation sequences.
type Adapter struct {
	logger *logrus.Logger
}

// NewAdapter creates an ingestion adapter.
func NewAdapter(logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Adapter{logger: logger}
}

// Result is the outcome of normalizing one source: the observations in
// source row order plus the count of rows dropped for malformation.
type Result struct {
	Source       string
	Observations []models.MatchObservation
	Dropped      int
	// Columns records which header each logical column resolved to, keyed
	// by column key, for caller-side reporting.
	Columns map[string]string
}

// Normalize produces MatchObservations from src. Rows with missing,
// non-numeric, or out-of-range values are dropped and counted, never fatal;
// the only failures are an absent source or a source that yields zero usable
// observations, both reported as models.ErrEmptyDataset.
func (a *Adapter) Normalize(src RowSource) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("row source is absent: %w", models.ErrEmptyDataset)
	}

	headers := src.Headers()
	rows := src.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("source %s has no rows: %w", src.Name(), models.ErrEmptyDataset)
	}

	resolved := make(map[string]resolvedColumn, len(matchHistoryColumns))
	columns := make(map[string]string, len(matchHistoryColumns))
	for _, spec := range matchHistoryColumns {
		col, ok := spec.resolve(headers)
		if !ok {
			if spec.Required {
				return nil, fmt.Errorf("source %s: required column %q not resolvable: %w",
					src.Name(), spec.Key, models.ErrEmptyDataset)
			}
			continue
		}
		resolved[spec.Key] = col
		if col.Index < len(headers) {
			columns[spec.Key] = fmt.Sprintf("%s (%s)", headers[col.Index], col.Via)
		} else {
			columns[spec.Key] = fmt.Sprintf("#%d (%s)", col.Index, col.Via)
		}
	}

	result := &Result{
		Source:       src.Name(),
		Observations: make([]models.MatchObservation, 0, len(rows)),
		Columns:      columns,
	}

	for _, row := range rows {
		obs, ok := a.normalizeRow(row, resolved)
		if !ok {
			result.Dropped++
			continue
		}
		result.Observations = append(result.Observations, obs)
	}
	metrics.AddDroppedRows(result.Dropped)

	if len(result.Observations) == 0 {
		return nil, fmt.Errorf("source %s: all %d rows malformed: %w", src.Name(), len(rows), models.ErrEmptyDataset)
	}

	a.logger.WithFields(logrus.Fields{
		"source":       src.Name(),
		"observations": len(result.Observations),
		"dropped":      result.Dropped,
	}).Info("Normalized match history source")

	return result, nil
}

// normalizeRow builds one observation, reporting ok=false on any
// malformation so the caller can drop and count the row.
func (a *Adapter) normalizeRow(row []string, resolved map[string]resolvedColumn) (models.MatchObservation, bool) {
	ratingBefore, ok := cellFloat(row, resolved["rating_before"].Index)
	if !ok {
		return models.MatchObservation{}, false
	}
	opponentBefore, ok := cellFloat(row, resolved["opponent_rating_before"].Index)
	if !ok {
		return models.MatchObservation{}, false
	}
	resultCell, ok := cell(row, resolved["result"].Index)
	if !ok {
		return models.MatchObservation{}, false
	}
	outcome, ok := ParseResultToken(resultCell)
	if !ok {
		return models.MatchObservation{}, false
	}

	obs := models.MatchObservation{
		RatingBefore:         ratingBefore,
		OpponentRatingBefore: opponentBefore,
		Result:               outcome,
	}

	if after, resolvedAfter := resolved["rating_after"]; resolvedAfter {
		if v, parsed := cellFloat(row, after.Index); parsed {
			obs.RatingAfter = &v
		}
	}

	if !obs.Valid() {
		return models.MatchObservation{}, false
	}
	return obs, true
}

// ParseResultToken maps a win/loss token onto {1, 0}. The exporter writes
// "Win"/"Loss"; raw crawl data may carry booleans or numerics.
func ParseResultToken(token string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "win", "w", "1", "true":
		return models.ResultWin, true
	case "loss", "lose", "l", "0", "false":
		return models.ResultLoss, true
	default:
		return 0, false
	}
}

func cell(row []string, index int) (string, bool) {
	if index < 0 || index >= len(row) {
		return "", false
	}
	value := strings.TrimSpace(row[index])
	return value, value != ""
}

func cellFloat(row []string, index int) (float64, bool) {
	value, ok := cell(row, index)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
