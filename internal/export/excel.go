package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	SummarySheet = "Summary"
	MatchesSheet = "Matches"
)

var matchColumns = []struct {
	title string
	width float64
}{
	{"Rank", 8},
	{"Title", 40},
	{"Company", 30},
	{"Location", 30},
	{"Similarity %", 14},
	{"Apply URL", 60},
	{"Description", 80},
}

// ToExcel writes the report to an .xlsx workbook and returns the final path.
func ToExcel(report *matching.Report, path string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nothing to export")
	}

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(MatchesSheet); err != nil {
		return "", err
	}

	if err := writeSummary(f, report); err != nil {
		return "", fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := writeMatches(f, report.Matches); err != nil {
		return "", fmt.Errorf("failed to write matches sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	return path, nil
}

func writeSummary(f *excelize.File, report *matching.Report) error {
	if err := f.SetColWidth(SummarySheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 70); err != nil {
		return err
	}

	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][2]any{
		{"Role", report.Role},
		{"Outcome", string(report.Outcome)},
		{"Message", report.Message()},
		{"Threshold %", report.Threshold},
		{"Jobs considered", report.Considered},
		{"Matches", len(report.Matches)},
		{"Skills", strings.Join(report.Skills, ", ")},
		{"Generated", time.Now().Format(time.DateTime)},
	}

	for i, row := range rows {
		a := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue(SummarySheet, a, row[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, a, a, label); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return err
		}
	}

	return nil
}

func writeMatches(f *excelize.File, matches []matching.Result) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, col := range matchColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(MatchesSheet, cell, col.title); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(MatchesSheet, name, name, col.width); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(matchColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(MatchesSheet, "A1", last, header); err != nil {
		return err
	}

	for i, m := range matches {
		values := []any{i + 1, m.Title, m.Company, m.Location, m.Similarity, m.ApplyURL, m.Excerpt}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(MatchesSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}
