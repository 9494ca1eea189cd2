package models

import "math"

// Result values for a MatchObservation.
const (
	ResultLoss = 0.0
	ResultWin  = 1.0
)

// MaxPlausibleRating bounds ratings accepted during ingestion. DUPR ratings
// live in roughly [2, 8]; the bound is generous so other rating systems
// (400-point Elo pools) pass through unchanged.
const MaxPlausibleRating = 10000.0

// MatchObservation is a single historical match seen from one player's
// perspective. Observations are immutable once produced by the ingestion
// adapter.
type MatchObservation struct {
	// RatingBefore is the subject's rating prior to the match.
	RatingBefore float64 `json:"rating_before"`
	// OpponentRatingBefore is the opponent's rating prior to the match.
	OpponentRatingBefore float64 `json:"opponent_rating_before"`
	// Result is 1 for a win and 0 for a loss.
	Result float64 `json:"result"`
	// RatingAfter is the subject's post-match rating when the source
	// provides it. It is a secondary fitting target and may be nil.
	RatingAfter *float64 `json:"rating_after,omitempty"`
}

// HasRatingAfter reports whether the observation carries a usable
// post-match rating.
func (o MatchObservation) HasRatingAfter() bool {
	return o.RatingAfter != nil && isFiniteRating(*o.RatingAfter)
}

// Valid reports whether the observation satisfies the ingestion invariants:
// finite, positive, plausible ratings and a result of exactly 0 or 1.
func (o MatchObservation) Valid() bool {
	if !isFiniteRating(o.RatingBefore) || !isFiniteRating(o.OpponentRatingBefore) {
		return false
	}
	if o.Result != ResultWin && o.Result != ResultLoss {
		return false
	}
	return true
}

func isFiniteRating(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > 0 && v <= MaxPlausibleRating
}
