package export

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/ingest"
	"github.com/yourusername/dupr-insight/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func testClubData() (*models.ClubData, []string) {
	age := 41
	data := &models.ClubData{
		Club: models.ClubInfo{
			ID:             "12345",
			Name:           "Riverside Picklers",
			TotalMembers:   2,
			ScrapedMatches: 2,
			CrawledAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Members: []models.Member{
			{ID: "p1", DuprID: "ABC123", FullName: "Alex Doe", Gender: "MALE", Age: &age, Singles: floatPtr(4.1), Doubles: floatPtr(4.3), ShortAddress: "Austin, TX"},
			{ID: "p2", DuprID: "DEF456", FullName: "Sam Roe", Doubles: floatPtr(3.8)},
		},
		Profiles: []models.PlayerProfile{
			{Member: models.Member{ID: "p1", DuprID: "ABC123", FullName: "Alex Doe"}, SinglesDisplay: "4.1", DoublesDisplay: "4.3"},
		},
		MatchHistory: map[string][]models.MatchRow{
			"p1": {
				{
					PlayerID: "p1", MatchID: "m1", EventName: "Club Night",
					EventDate: "2026-07-20", EventFormat: "DOUBLES",
					Result: "Win", ScoreSummary: "11-9, 11-7", Confirmed: true,
					Player1Name: "Alex Doe", Player2Name: "Pat Lee",
					Opponent1Name: "Sam Roe", Opponent2Name: "Kim Cho",
					RatingBefore: floatPtr(4.2), RatingAfter: floatPtr(4.25),
					OpponentBefore: floatPtr(4.05),
				},
				{
					PlayerID: "p1", MatchID: "m2", EventName: "Club Night",
					EventDate: "2026-07-21", EventFormat: "DOUBLES",
					Result:       "Loss",
					RatingBefore: floatPtr(4.25), OpponentBefore: floatPtr(4.4),
				},
			},
		},
	}
	return data, []string{"p1"}
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewWriter(&config.ExportConfig{
		OutputDir:      t.TempDir(),
		FilenamePrefix: "dupr_club",
	}, logger)
}

func TestWriteClubDataLayout(t *testing.T) {
	data, order := testClubData()
	writer := newTestWriter(t)

	path, err := writer.WriteClubData(data, order)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "dupr_club_12345_")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetClubInfo, SheetMembers, SheetPlayerProfiles, SheetMatchHistory}, f.GetSheetList())

	// Club summary values land next to their labels.
	name, err := f.GetCellValue(SheetClubInfo, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Riverside Picklers", name)

	// Header row matches the canonical layout the reader resolves against.
	rows, err := f.GetRows(SheetMatchHistory)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, MatchHistoryHeaders, rows[0])
	assert.Len(t, rows, 3)
}

// A workbook written by the exporter must round-trip through the ingestion
// adapter without dropping well-formed rows.
func TestWorkbookRoundTrip(t *testing.T) {
	data, order := testClubData()
	writer := newTestWriter(t)

	path, err := writer.WriteClubData(data, order)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	source, err := ingest.FromWorkbook(path, logger)
	require.NoError(t, err)

	result, err := ingest.NewAdapter(logger).Normalize(source)
	require.NoError(t, err)

	require.Len(t, result.Observations, 2)
	assert.Zero(t, result.Dropped)

	first := result.Observations[0]
	assert.Equal(t, 4.2, first.RatingBefore)
	assert.Equal(t, 4.05, first.OpponentRatingBefore)
	assert.Equal(t, models.ResultWin, first.Result)
	require.NotNil(t, first.RatingAfter)
	assert.Equal(t, 4.25, *first.RatingAfter)

	second := result.Observations[1]
	assert.Equal(t, models.ResultLoss, second.Result)
	assert.Nil(t, second.RatingAfter)
}

func TestWriteClubDataNil(t *testing.T) {
	writer := newTestWriter(t)
	_, err := writer.WriteClubData(nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptyDataset)
}
