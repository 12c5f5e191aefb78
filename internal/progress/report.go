package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Progress"

var reportHeader = []any{
	"Chapter", "Number", "Title", "Category", "State",
	"Progress %", "Current Step", "Started At", "Completed At",
}

// WriteReport writes an XLSX workbook with one row per catalog chapter
// followed by the completed count and overall percentage.
func (t *Tracker) WriteReport(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := setRow(f, 1, reportHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(reportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, ch := range t.allChapters() {
		p := t.GetProgress(ch.ID)
		values := []any{
			ch.ID, ch.Number, ch.Title, ch.Category.DisplayName(), p.State.String(),
			p.ProgressPercentage, p.CurrentStepIndex, formatTime(p.StartedAt), formatTime(p.CompletedAt),
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, row, []any{"Completed", t.GetCompletedCount()}); err != nil {
		return err
	}
	if err := setRow(f, row+1, []any{"Overall %", t.GetOverallProgressPercentage()}); err != nil {
		return err
	}
	if err := f.SetRowStyle(reportSheet, row, row+1, bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

func formatTime(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
