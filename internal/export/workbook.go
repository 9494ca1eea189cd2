// Package export writes crawl snapshots to styled .xlsx workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
)

// Sheet names, in workbook order.
const (
	SheetClubInfo       = "Club Info"
	SheetMembers        = "Members"
	SheetPlayerProfiles = "Player Profiles"
	SheetMatchHistory   = "Match History"
)

// headerFillColor is the blue used on every header row.
const headerFillColor = "4F81BD"

// MatchHistoryHeaders is the Match History sheet layout. The rating and
// result columns carry the canonical names the ingestion adapter resolves.
var MatchHistoryHeaders = []string{
	"Player ID",
	"Match ID",
	"Event Name",
	"Match Date",
	"Match Format",
	"League",
	"Tournament",
	"Score Format",
	"Result",
	"Score Summary",
	"Confirmed",
	"Player 1 Name",
	"Player 2 Name",
	"Opponent 1 Name",
	"Opponent 2 Name",
	"Player Rating Before",
	"Player Rating After",
	"Opponent Rating Before",
	"Opponent Rating After",
}

var memberHeaders = []string{
	"Player ID",
	"DUPR ID",
	"Full Name",
	"Gender",
	"Age",
	"Singles Rating",
	"Doubles Rating",
	"Location",
}

var profileHeaders = []string{
	"Player ID",
	"DUPR ID",
	"Full Name",
	"Singles Rating (Detailed)",
	"Doubles Rating (Detailed)",
}

// Writer exports club snapshots as workbooks under a configured directory.
type Writer struct {
	outputDir string
	prefix    string
	logger    *logrus.Logger
}

// NewWriter creates a workbook writer.
func NewWriter(cfg *config.ExportConfig, logger *logrus.Logger) *Writer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{
		outputDir: cfg.OutputDir,
		prefix:    cfg.FilenamePrefix,
		logger:    logger,
	}
}

// WriteClubData renders the snapshot into a four-sheet workbook and returns
// the path written. playerOrder fixes the Match History row order across runs.
func (w *Writer) WriteClubData(data *models.ClubData, playerOrder []string) (string, error) {
	if data == nil {
		return "", fmt.Errorf("no club data to export: %w", models.ErrEmptyDataset)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeClubInfo(f, data); err != nil {
		return "", err
	}
	if err := w.writeMembers(f, data.Members, headerStyle); err != nil {
		return "", err
	}
	if err := w.writeProfiles(f, data.Profiles, headerStyle); err != nil {
		return "", err
	}
	if err := w.writeMatchHistory(f, data.AllMatches(playerOrder), headerStyle); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.xlsx",
		w.prefix, data.Club.ID, time.Now().Format("20060102_150405"))
	path := filepath.Join(w.outputDir, filename)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	metrics.RecordExport()
	w.logger.WithFields(logrus.Fields{
		"path":    path,
		"members": len(data.Members),
		"matches": data.Club.ScrapedMatches,
	}).Info("Workbook exported")

	return path, nil
}

func (w *Writer) writeClubInfo(f *excelize.File, data *models.ClubData) error {
	// The default sheet becomes Club Info so the workbook opens on it.
	if err := f.SetSheetName("Sheet1", SheetClubInfo); err != nil {
		return fmt.Errorf("failed to rename club info sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Club ID", data.Club.ID},
		{"Club Name", data.Club.Name},
		{"Total Members", data.Club.TotalMembers},
		{"Players with Match History", len(data.MatchHistory)},
		{"Total Matches Scraped", data.Club.ScrapedMatches},
		{"Report Generated", data.Club.CrawledAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetClubInfo, cell, &row); err != nil {
			return fmt.Errorf("failed to write club info row: %w", err)
		}
	}
	autofit(f, SheetClubInfo, rows)
	return nil
}

func (w *Writer) writeMembers(f *excelize.File, members []models.Member, headerStyle int) error {
	rows := make([][]interface{}, 0, len(members)+1)
	rows = append(rows, toRow(memberHeaders))
	for _, m := range members {
		rows = append(rows, []interface{}{
			m.ID, m.DuprID, m.FullName, m.Gender,
			intOrBlank(m.Age),
			floatOrBlank(m.Singles), floatOrBlank(m.Doubles),
			m.ShortAddress,
		})
	}
	return w.writeSheet(f, SheetMembers, rows, headerStyle, false)
}

func (w *Writer) writeProfiles(f *excelize.File, profiles []models.PlayerProfile, headerStyle int) error {
	rows := make([][]interface{}, 0, len(profiles)+1)
	rows = append(rows, toRow(profileHeaders))
	for _, p := range profiles {
		rows = append(rows, []interface{}{
			p.ID, p.DuprID, p.FullName, p.SinglesDisplay, p.DoublesDisplay,
		})
	}
	return w.writeSheet(f, SheetPlayerProfiles, rows, headerStyle, false)
}

func (w *Writer) writeMatchHistory(f *excelize.File, matches []models.MatchRow, headerStyle int) error {
	rows := make([][]interface{}, 0, len(matches)+1)
	rows = append(rows, toRow(MatchHistoryHeaders))
	for _, m := range matches {
		rows = append(rows, []interface{}{
			m.PlayerID, m.MatchID, m.EventName, m.EventDate, m.EventFormat,
			m.League, m.Tournament, m.ScoreFormat, m.Result, m.ScoreSummary,
			m.Confirmed,
			m.Player1Name, m.Player2Name, m.Opponent1Name, m.Opponent2Name,
			floatOrBlank(m.RatingBefore), floatOrBlank(m.RatingAfter),
			floatOrBlank(m.OpponentBefore), floatOrBlank(m.OpponentAfter),
		})
	}
	return w.writeSheet(f, SheetMatchHistory, rows, headerStyle, true)
}

// writeSheet creates the sheet, writes all rows, styles the header row, and
// optionally freezes it.
func (w *Writer) writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int, freeze bool) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
	}

	if freeze {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header of %q: %w", sheet, err)
		}
	}

	autofit(f, sheet, rows)
	return nil
}

// autofit widens each column to its longest rendered value. Best effort;
// sizing failures never fail the export.
func autofit(f *excelize.File, sheet string, rows [][]interface{}) {
	widths := map[int]float64{}
	for _, row := range rows {
		for i, v := range row {
			width := float64(len(fmt.Sprint(v))) + 2
			if width > widths[i] {
				widths[i] = width
			}
		}
	}
	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		if width > 60 {
			width = 60
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}
}

func toRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func intOrBlank(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
