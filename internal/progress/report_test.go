package progress_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestTracker_WriteReport(t *testing.T) {
	tr := newTracker(chapterWithSteps(1, 4), chapterWithSteps(2, 4))
	tr.CompleteChapter(1)
	tr.StartChapter(2)
	tr.CompleteStep(2, 0)

	var buf bytes.Buffer
	if err := tr.WriteReport(&buf); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Progress")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// header, two chapters, completed, overall
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5: %v", len(rows), rows)
	}
	if rows[0][0] != "Chapter" || rows[0][4] != "State" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "Completed" || rows[1][5] != "100" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][4] != "InProgress" || rows[2][5] != "22" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if rows[3][0] != "Completed" || rows[3][1] != "1" {
		t.Errorf("completed row = %v", rows[3])
	}
	if rows[4][0] != "Overall %" || rows[4][1] != "50" {
		t.Errorf("overall row = %v", rows[4])
	}
}
