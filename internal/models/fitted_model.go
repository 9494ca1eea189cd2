package models

import (
	"time"

	"github.com/google/uuid"
)

// FittedModel holds the transition-model parameters recovered by a
// calibration run. Immutable once produced.
type FittedModel struct {
	ID           uuid.UUID `db:"id" json:"id"`
	K            float64   `db:"k" json:"k"`
	Scale        float64   `db:"scale" json:"scale"`
	Error        float64   `db:"fit_error" json:"error"`
	Metric       string    `db:"metric" json:"metric"`
	Observations int       `db:"observations" json:"observations"`
	FittedAt     time.Time `db:"fitted_at" json:"fitted_at"`
}

// ExpectedOutcome is the result of a single simulation call. It is computed
// fresh per request and never persisted.
type ExpectedOutcome struct {
	// Expected is the predicted win probability for the subject, in [0, 1].
	Expected float64 `json:"expected"`
	// Delta is the signed rating change implied by the model.
	Delta float64 `json:"delta"`
	// NewRating is RatingBefore + Delta.
	NewRating float64 `json:"new_rating"`
}
