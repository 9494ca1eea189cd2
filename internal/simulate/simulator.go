// Package simulate predicts hypothetical matchup outcomes from a fitted
// rating transition model. Everything here is pure: no I/O, no state.
package simulate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yourusername/dupr-insight/internal/calibrate"
	"github.com/yourusername/dupr-insight/internal/models"
)

// Simulate computes the expected outcome of a single match:
//
//	expected  = 1 / (1 + 10^(-(ratingBefore - opponentRatingBefore) / scale))
//	delta     = K * (result - expected)
//	newRating = ratingBefore + delta
//
// The logistic goes through calibrate.ExpectedScore, the same function the
// calibrator searched with. Identical inputs always produce bit-identical
// outputs.
func Simulate(model *models.FittedModel, ratingBefore, opponentRatingBefore, result float64) (models.ExpectedOutcome, error) {
	if model == nil {
		return models.ExpectedOutcome{}, fmt.Errorf("%w: fitted model is required", models.ErrInvalidInput)
	}
	if !(model.Scale > 0) || !isFinite(model.K) {
		return models.ExpectedOutcome{}, fmt.Errorf("%w: model parameters K=%g scale=%g", models.ErrInvalidInput, model.K, model.Scale)
	}
	if !isFinite(ratingBefore) || !isFinite(opponentRatingBefore) {
		return models.ExpectedOutcome{}, fmt.Errorf("%w: ratings must be finite", models.ErrInvalidInput)
	}
	if result != models.ResultWin && result != models.ResultLoss {
		return models.ExpectedOutcome{}, fmt.Errorf("%w: result must be 0 or 1, got %g", models.ErrInvalidInput, result)
	}

	expected := calibrate.ExpectedScore(ratingBefore-opponentRatingBefore, model.Scale)
	delta := model.K * (result - expected)

	return models.ExpectedOutcome{
		Expected:  expected,
		Delta:     delta,
		NewRating: ratingBefore + delta,
	}, nil
}

// TeamRating is the doubles convention: a team plays at the mean of its two
// players' pre-match ratings.
func TeamRating(player, partner float64) float64 {
	return (player + partner) / 2.0
}

// ParseGameScores derives a result from a comma-separated score string such
// as "11-9,7-11,11-6". The subject's score comes first in each game. The
// second return is false when the string is empty, unparsable, or the games
// split evenly.
func ParseGameScores(scores string) (float64, bool) {
	games := strings.Split(scores, ",")
	winsA, winsB := 0, 0
	for _, game := range games {
		game = strings.TrimSpace(game)
		if game == "" || !strings.Contains(game, "-") {
			continue
		}
		parts := strings.SplitN(game, "-", 2)
		a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
		b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errA != nil || errB != nil {
			continue
		}
		switch {
		case a > b:
			winsA++
		case b > a:
			winsB++
		}
	}
	if winsA == winsB {
		return 0, false
	}
	if winsA > winsB {
		return models.ResultWin, true
	}
	return models.ResultLoss, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
