package dupr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doublesMatchJSON = `{
	"id": 9001,
	"eventName": "Summer League",
	"eventDate": "2026-07-20",
	"eventFormat": "DOUBLES",
	"league": "Summer",
	"scoreFormat": {"format": "Best 2/3 to 11"},
	"confirmed": true,
	"teams": [
		{
			"id": 1,
			"winner": true,
			"game1": 11, "game2": 7, "game3": 11,
			"player1": {"id": 42, "fullName": "Alex Doe", "duprId": "ABC123",
				"postMatchRating": {"singles": "NR", "doubles": 4.31}},
			"player2": {"id": 43, "fullName": "Pat Lee", "duprId": "DEF456"},
			"preMatchRatingAndImpact": {
				"preMatchDoubleRatingPlayer1": 4.25,
				"preMatchSingleRatingPlayer1": "NR"
			}
		},
		{
			"id": 2,
			"winner": false,
			"game1": 9, "game2": 11, "game3": 6,
			"player1": {"id": 77, "fullName": "Sam Roe", "duprId": "GHI789",
				"postMatchRating": {"doubles": 4.02}},
			"player2": {"id": 78, "fullName": "Kim Cho", "duprId": "JKL012"},
			"preMatchRatingAndImpact": {"preMatchDoubleRatingPlayer1": 4.05}
		}
	]
}`

func TestFlattenDoublesMatch(t *testing.T) {
	var match Match
	require.NoError(t, json.Unmarshal([]byte(doublesMatchJSON), &match))

	row, ok := match.Flatten("42")
	require.True(t, ok)

	assert.Equal(t, "9001", row.MatchID)
	assert.Equal(t, "Summer League", row.EventName)
	assert.Equal(t, "Best 2/3 to 11", row.ScoreFormat)
	assert.Equal(t, "Win", row.Result)
	assert.Equal(t, "11-9, 7-11, 11-6", row.ScoreSummary)
	assert.Equal(t, []int{11, 7, 11}, row.PlayerGames)
	assert.Equal(t, []int{9, 11, 6}, row.OpponentGames)
	assert.Equal(t, "Alex Doe", row.Player1Name)
	assert.Equal(t, "Kim Cho", row.Opponent2Name)

	require.NotNil(t, row.RatingBefore)
	assert.Equal(t, 4.25, *row.RatingBefore)
	require.NotNil(t, row.RatingAfter)
	assert.Equal(t, 4.31, *row.RatingAfter)
	require.NotNil(t, row.OpponentBefore)
	assert.Equal(t, 4.05, *row.OpponentBefore)
}

// The same match from the losing side flips the result and the team columns.
func TestFlattenOpposingPerspective(t *testing.T) {
	var match Match
	require.NoError(t, json.Unmarshal([]byte(doublesMatchJSON), &match))

	row, ok := match.Flatten("77")
	require.True(t, ok)

	assert.Equal(t, "Loss", row.Result)
	assert.Equal(t, "9-11, 11-7, 6-11", row.ScoreSummary)
	assert.Equal(t, "Sam Roe", row.Player1Name)
	assert.Equal(t, "Alex Doe", row.Opponent1Name)
	require.NotNil(t, row.RatingBefore)
	assert.Equal(t, 4.05, *row.RatingBefore)
}

func TestFlattenUnknownPlayer(t *testing.T) {
	var match Match
	require.NoError(t, json.Unmarshal([]byte(doublesMatchJSON), &match))

	_, ok := match.Flatten("999")
	assert.False(t, ok)
}

func TestFlattenSinglesSkipsUnplayedGames(t *testing.T) {
	raw := `{
		"id": 9002,
		"eventFormat": "SINGLES",
		"scoreFormat": "Single game to 11",
		"teams": [
			{"winner": false, "game1": 5, "game2": -1, "game3": -1,
				"player1": {"id": 42, "fullName": "Alex Doe",
					"postMatchRating": {"singles": 3.9}},
				"preMatchRatingAndImpact": {"preMatchSingleRatingPlayer1": 4.0}},
			{"winner": true, "game1": 11, "game2": -1, "game3": -1,
				"player1": {"id": 77, "fullName": "Sam Roe"},
				"preMatchRatingAndImpact": {"preMatchSingleRatingPlayer1": 4.2}}
		]
	}`

	var match Match
	require.NoError(t, json.Unmarshal([]byte(raw), &match))

	row, ok := match.Flatten("42")
	require.True(t, ok)

	assert.Equal(t, "Loss", row.Result)
	assert.Equal(t, "5-11", row.ScoreSummary)
	assert.Equal(t, []int{5}, row.PlayerGames)
	assert.Equal(t, "Single game to 11", row.ScoreFormat)
	require.NotNil(t, row.RatingBefore)
	assert.Equal(t, 4.0, *row.RatingBefore)
	require.NotNil(t, row.RatingAfter)
	assert.Equal(t, 3.9, *row.RatingAfter)
}

func TestHandlePaging(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantNext *int
		wantHits int
	}{
		{name: "more pages", raw: `{"offset":0,"limit":2,"total":5,"hits":[{},{}]}`, wantNext: intPtr(2), wantHits: 2},
		{name: "final page", raw: `{"offset":4,"limit":2,"total":5,"hits":[{}]}`, wantHits: 1},
		{name: "exact boundary", raw: `{"offset":3,"limit":2,"total":5,"hits":[{},{}]}`, wantHits: 2},
		{name: "empty", raw: `{"offset":0,"limit":2,"total":0,"hits":[]}`, wantHits: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, hits, err := handlePaging(json.RawMessage(tt.raw))
			require.NoError(t, err)

			var decoded []json.RawMessage
			require.NoError(t, json.Unmarshal(hits, &decoded))
			assert.Len(t, decoded, tt.wantHits)

			if tt.wantNext == nil {
				assert.Nil(t, next)
			} else {
				require.NotNil(t, next)
				assert.Equal(t, *tt.wantNext, *next)
			}
		})
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "number", raw: `4.25`, want: floatPtr(4.25)},
		{name: "numeric string", raw: `"3.9"`, want: floatPtr(3.9)},
		{name: "not rated", raw: `"NR"`, want: nil},
		{name: "null", raw: `null`, want: nil},
		{name: "empty string", raw: `""`, want: nil},
		{name: "garbage string", raw: `"high"`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			if tt.want == nil {
				assert.Nil(t, f.Value)
			} else {
				require.NotNil(t, f.Value)
				assert.Equal(t, *tt.want, *f.Value)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
