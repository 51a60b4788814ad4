package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"timesift/batch"
	"timesift/timesheet"
)

func testEntries() []timesheet.Entry {
	return []timesheet.Entry{
		{
			Date: "01/15/2024", Day: "MON", Hours: 8, Activity: timesheet.ActivityWork,
			Client: "Paradigm", Project: "Data Platform",
			EmployeeName: "Jane Doe", EmployeeID: "E1001", SenderEmail: "jane.doe@paradigm.com",
		},
		{
			Date: "01/17/2024", Day: "WED", Hours: 8, Activity: timesheet.ActivityPTO,
			Client: "Paradigm", Project: "Data Platform",
			EmployeeName: "Jane Doe", EmployeeID: "E1001", SenderEmail: "jane.doe@paradigm.com",
		},
	}
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat("csv"); err != nil {
		t.Errorf("csv: %v", err)
	}
	if _, err := WriterForFormat(" Excel "); err != nil {
		t.Errorf("excel: %v", err)
	}
	if _, err := WriterForFormat("yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCSVWriter_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.csv")
	writer := &CSVWriter{}
	if err := writer.Write(path, testEntries()); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "01/15/2024" || rows[1][3] != "WORK" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][3] != "PTO" {
		t.Errorf("second data row = %v", rows[2])
	}
}

func TestExcelWriter_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.xlsx")
	writer := &ExcelWriter{}
	if err := writer.Write(path, testEntries()); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(file.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "01/15/2024" {
		t.Errorf("first data row = %v", rows[1])
	}
}

func TestWriteResultJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result := batch.Result{
		Success:      true,
		Entries:      testEntries(),
		TotalEntries: 2,
		Errors:       []string{},
	}

	path, err := WriteResultJSON(dir, result)
	if err != nil {
		t.Fatalf("write result: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "timesheet_results_") {
		t.Errorf("filename = %q", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, `"success": true`) {
		t.Errorf("missing success flag: %s", content)
	}
	if !strings.Contains(content, `"total_entries": 2`) {
		t.Errorf("missing total entries: %s", content)
	}
	if !strings.Contains(content, `"extracted_entries"`) {
		t.Errorf("missing entries key: %s", content)
	}
}

func TestWriteDailySummaries(t *testing.T) {
	t.Parallel()

	summaries := BuildDailySummaries(testEntries())

	csvPath := filepath.Join(t.TempDir(), "summary.csv")
	if err := WriteDailySummaries(csvPath, "csv", summaries); err != nil {
		t.Fatalf("csv summaries: %v", err)
	}

	excelPath := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := WriteDailySummaries(excelPath, "excel", summaries); err != nil {
		t.Fatalf("excel summaries: %v", err)
	}

	if err := WriteDailySummaries(csvPath, "yaml", summaries); err == nil {
		t.Error("expected error for unsupported format")
	}
}
