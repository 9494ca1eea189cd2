package ingest

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/dupr-insight/internal/models"
)

func writeSingleSheetWorkbook(t *testing.T, sheet string) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Player Rating Before", "Opponent Rating Before", "Result",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{4.1, 3.9, "Win"}))

	path := filepath.Join(t.TempDir(), "club.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

// A workbook without a Match History sheet still ingests: the reader falls
// back to the first sheet, and the fallback is surfaced in a warning.
func TestFromWorkbookFirstSheetFallback(t *testing.T) {
	path := writeSingleSheetWorkbook(t, "Some Other Sheet")

	logger, hook := logrustest.NewNullLogger()

	src, err := FromWorkbook(path, logger)
	require.NoError(t, err)

	warn := hook.LastEntry()
	require.NotNil(t, warn)
	assert.Equal(t, logrus.WarnLevel, warn.Level)
	assert.Equal(t, "Some Other Sheet", warn.Data["fallback"])

	result, err := NewAdapter(logger).Normalize(src)
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)

	obs := result.Observations[0]
	assert.Equal(t, 4.1, obs.RatingBefore)
	assert.Equal(t, 3.9, obs.OpponentRatingBefore)
	assert.Equal(t, models.ResultWin, obs.Result)
	assert.Nil(t, obs.RatingAfter)
}

func TestFromWorkbookMatchHistoryPreferred(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet(MatchHistorySheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(MatchHistorySheet, "A1", &[]interface{}{
		"Player Rating Before", "Opponent Rating Before", "Result",
	}))
	require.NoError(t, f.SetSheetRow(MatchHistorySheet, "A2", &[]interface{}{3.2, 3.4, "Loss"}))

	path := filepath.Join(t.TempDir(), "club.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	logger, hook := logrustest.NewNullLogger()

	src, err := FromWorkbook(path, logger)
	require.NoError(t, err)
	assert.Nil(t, hook.LastEntry())

	result, err := NewAdapter(logger).Normalize(src)
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, models.ResultLoss, result.Observations[0].Result)
}
