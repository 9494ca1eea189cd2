package ingest

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/dupr-insight/internal/models"
)

// MatchHistorySheet is the sheet the exporter writes and the reader expects.
const MatchHistorySheet = "Match History"

// FromWorkbook opens an .xlsx workbook and returns a RowSource over its
// match-history sheet. When the named sheet is absent it falls back to the
// first sheet in the workbook; the fallback is logged, never silent.
func FromWorkbook(path string, logger *logrus.Logger) (RowSource, error) {
	if logger == nil {
		logger = logrus.New()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets: %w", path, models.ErrEmptyDataset)
	}

	sheet := MatchHistorySheet
	if idx, idxErr := f.GetSheetIndex(sheet); idxErr != nil || idx == -1 {
		sheet = sheets[0]
		logger.WithFields(logrus.Fields{
			"workbook": path,
			"wanted":   MatchHistorySheet,
			"fallback": sheet,
		}).Warn("Match history sheet not found, falling back to first sheet")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty: %w", sheet, path, models.ErrEmptyDataset)
	}

	return NewSliceSource(fmt.Sprintf("%s#%s", path, sheet), rows[0], rows[1:]), nil
}
