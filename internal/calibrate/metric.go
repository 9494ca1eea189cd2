package calibrate

import (
	"math"

	"github.com/yourusername/dupr-insight/internal/models"
)

// Metric names the per-observation error definition used by a fit run. The
// metric is fixed for the whole run; it never switches per observation.
type Metric string

const (
	// MetricOutcomeMAE scores a candidate by the mean absolute difference
	// between the match result and the model's expected score. The default.
	MetricOutcomeMAE Metric = "outcome_mae"
	// MetricDeltaMAE scores a candidate by the mean absolute difference
	// between the observed post-match rating and the rating the model
	// predicts. Usable only for observations that carry RatingAfter.
	MetricDeltaMAE Metric = "delta_mae"
)

// ExpectedScore returns the logistic win probability for a rating gap:
//
//	expected = 1 / (1 + 10^(-(diff/scale)))
//
// Both the calibrator and the simulator go through this function; the two
// must never diverge.
func ExpectedScore(diff, scale float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, -(diff/scale)))
}

// usable reports whether obs can contribute to a fit under the metric.
func (m Metric) usable(obs models.MatchObservation) bool {
	if !obs.Valid() {
		return false
	}
	if m == MetricDeltaMAE {
		return obs.HasRatingAfter()
	}
	return true
}

// observationError is the per-observation absolute error for a candidate
// pair. expected is precomputed by the caller since it only depends on the
// rating gap and scale.
func (m Metric) observationError(obs models.MatchObservation, k, expected float64) float64 {
	if m == MetricDeltaMAE {
		predicted := obs.RatingBefore + k*(obs.Result-expected)
		return math.Abs(*obs.RatingAfter - predicted)
	}
	return math.Abs(obs.Result - expected)
}
