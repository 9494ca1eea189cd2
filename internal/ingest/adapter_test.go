package ingest

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dupr-insight/internal/models"
)

func newTestAdapter() *Adapter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAdapter(logger)
}

func TestNormalizeCanonicalHeaders(t *testing.T) {
	src := NewSliceSource("test",
		[]string{"Player Rating Before", "Opponent Rating Before", "Result", "Player Rating After"},
		[][]string{
			{"1400", "1350", "Win", "1412.5"},
			{"1350", "1400", "Loss", "1340"},
		})

	result, err := newTestAdapter().Normalize(src)
	require.NoError(t, err)

	require.Len(t, result.Observations, 2)
	assert.Zero(t, result.Dropped)

	first := result.Observations[0]
	assert.Equal(t, 1400.0, first.RatingBefore)
	assert.Equal(t, 1350.0, first.OpponentRatingBefore)
	assert.Equal(t, models.ResultWin, first.Result)
	require.NotNil(t, first.RatingAfter)
	assert.Equal(t, 1412.5, *first.RatingAfter)

	assert.Equal(t, models.ResultLoss, result.Observations[1].Result)
	assert.Contains(t, result.Columns["rating_before"], "canonical")
}

func TestNormalizeSnakeCaseAliases(t *testing.T) {
	src := NewSliceSource("test",
		[]string{"player_team_rating_before", "opponent_team_rating_before", "player_team_winner"},
		[][]string{
			{"3.5", "4.0", "true"},
			{"4.0", "3.5", "false"},
		})

	result, err := newTestAdapter().Normalize(src)
	require.NoError(t, err)
	require.Len(t, result.Observations, 2)
	assert.Equal(t, models.ResultWin, result.Observations[0].Result)
	assert.Equal(t, models.ResultLoss, result.Observations[1].Result)
	assert.Contains(t, result.Columns["rating_before"], "alias")
}

func TestNormalizePositionalFallback(t *testing.T) {
	// Unrecognisable headers: the required columns fall back to their
	// documented positions.
	src := NewSliceSource("test",
		[]string{"a", "b", "c"},
		[][]string{
			{"1500", "1450", "1"},
		})

	result, err := newTestAdapter().Normalize(src)
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, 1500.0, result.Observations[0].RatingBefore)
	assert.Contains(t, result.Columns["result"], "position")
}

// Malformed rows are dropped and counted; the surviving observations must be
// identical to normalizing a source with those rows removed up front.
func TestNormalizeDropsMalformedRows(t *testing.T) {
	headers := []string{"Player Rating Before", "Opponent Rating Before", "Result"}
	good := [][]string{
		{"1400", "1350", "Win"},
		{"1350", "1400", "Loss"},
	}
	bad := [][]string{
		{"", "1350", "Win"},          // missing rating
		{"abc", "1350", "Win"},       // non-numeric rating
		{"1400", "1350", "maybe"},    // unknown result token
		{"-10", "1350", "Win"},       // out of range rating
		{"1400", "1350"},             // short row
	}

	adapter := newTestAdapter()

	mixed, err := adapter.Normalize(NewSliceSource("mixed", headers, append(append([][]string{}, good...), bad...)))
	require.NoError(t, err)
	clean, err := adapter.Normalize(NewSliceSource("clean", headers, good))
	require.NoError(t, err)

	assert.Equal(t, len(bad), mixed.Dropped)
	assert.Equal(t, clean.Observations, mixed.Observations)
}

func TestNormalizeEmptySources(t *testing.T) {
	adapter := newTestAdapter()

	tests := []struct {
		name string
		src  RowSource
	}{
		{name: "nil source", src: nil},
		{name: "no rows", src: NewSliceSource("x", []string{"Player Rating Before", "Opponent Rating Before", "Result"}, nil)},
		{name: "all rows malformed", src: NewSliceSource("x",
			[]string{"Player Rating Before", "Opponent Rating Before", "Result"},
			[][]string{{"", "", ""}, {"a", "b", "c"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := adapter.Normalize(tt.src)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, models.ErrEmptyDataset)
		})
	}
}

func TestNormalizeMissingRequiredColumn(t *testing.T) {
	// Two headers only: the result column cannot fall back to position 2.
	src := NewSliceSource("test",
		[]string{"Player Rating Before", "Opponent Rating Before"},
		[][]string{{"1400", "1350"}})

	_, err := newTestAdapter().Normalize(src)
	assert.ErrorIs(t, err, models.ErrEmptyDataset)
}

func TestNormalizeRatingAfterOptional(t *testing.T) {
	// No rating-after column resolves at all; observations simply omit it.
	src := NewSliceSource("test",
		[]string{"Player Rating Before", "Opponent Rating Before", "Result"},
		[][]string{{"1400", "1350", "Win"}})

	result, err := newTestAdapter().Normalize(src)
	require.NoError(t, err)
	assert.Nil(t, result.Observations[0].RatingAfter)

	// Present but blank in one row: that row keeps a nil rating-after
	// rather than being dropped.
	src = NewSliceSource("test",
		[]string{"Player Rating Before", "Opponent Rating Before", "Result", "Player Rating After"},
		[][]string{{"1400", "1350", "Win", ""}})

	result, err = newTestAdapter().Normalize(src)
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.Nil(t, result.Observations[0].RatingAfter)
}

func TestParseResultToken(t *testing.T) {
	tests := []struct {
		token string
		want  float64
		ok    bool
	}{
		{token: "Win", want: models.ResultWin, ok: true},
		{token: "win", want: models.ResultWin, ok: true},
		{token: "W", want: models.ResultWin, ok: true},
		{token: "1", want: models.ResultWin, ok: true},
		{token: "true", want: models.ResultWin, ok: true},
		{token: "Loss", want: models.ResultLoss, ok: true},
		{token: "lose", want: models.ResultLoss, ok: true},
		{token: "L", want: models.ResultLoss, ok: true},
		{token: "0", want: models.ResultLoss, ok: true},
		{token: "FALSE", want: models.ResultLoss, ok: true},
		{token: " Win ", want: models.ResultWin, ok: true},
		{token: "draw", ok: false},
		{token: "", ok: false},
		{token: "2", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseResultToken(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
