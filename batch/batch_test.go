package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"timesift/extract"
	"timesift/identity"
	"timesift/timesheet"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeSink struct {
	entries   []timesheet.Entry
	ptoByFile map[string][]timesheet.Entry
	err       error
	ptoErr    error
}

func (f *fakeSink) InsertEntries(entries []timesheet.Entry) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, entries...)
	return len(entries), nil
}

func (f *fakeSink) RecordPTO(entries []timesheet.Entry, sourceFile string) (int, error) {
	if f.ptoErr != nil {
		return 0, f.ptoErr
	}
	if f.ptoByFile == nil {
		f.ptoByFile = make(map[string][]timesheet.Entry)
	}
	f.ptoByFile[sourceFile] = append(f.ptoByFile[sourceFile], entries...)
	return len(entries), nil
}

func tableReader(records []extract.Record, err error) func(string) ([]extract.Record, error) {
	return func(string) ([]extract.Record, error) { return records, err }
}

func pdfReader(text string, err error) func(string) (string, error) {
	return func(string) (string, error) { return text, err }
}

func tabularRecords() []extract.Record {
	return []extract.Record{
		{RowNumber: 2, Values: map[string]string{"date": "2024-01-15", "hours": "8", "activity": "Work"}},
	}
}

func TestKindForPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want Kind
	}{
		{"week.csv", KindTabular},
		{"week.XLSX", KindTabular},
		{"report.pdf", KindTextPDF},
		{"scan.png", KindImage},
		{"photo.HEIC", KindImage},
	}
	for _, tc := range cases {
		got, err := KindForPath(tc.path)
		if err != nil || got != tc.want {
			t.Errorf("KindForPath(%q) = %v/%v, want %v", tc.path, got, err, tc.want)
		}
	}

	if _, err := KindForPath("notes.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRun_TabularDocument(t *testing.T) {
	t.Parallel()

	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(tabularRecords(), nil)}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Fatalf("expected success, errors = %v", result.Errors)
	}
	if result.TotalEntries != 1 {
		t.Fatalf("total entries = %d, want 1", result.TotalEntries)
	}
	entry := result.Entries[0]
	if entry.Date != "01/15/2024" || entry.Activity != timesheet.ActivityWork {
		t.Errorf("entry = %+v", entry)
	}
	if entry.EmployeeName != "jdoe" {
		t.Errorf("employee name = %q, want local-part fallback", entry.EmployeeName)
	}
}

func TestRun_RejectsNonTimesheetTable(t *testing.T) {
	t.Parallel()

	records := []extract.Record{
		{RowNumber: 2, Values: map[string]string{"invoice": "1042", "amount": "99.50"}},
	}
	docs := []Document{{Path: "invoices.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(records, nil)}

	result := Run(context.Background(), docs, deps)

	if result.Success {
		t.Fatal("expected failure for non-timesheet table")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "does not look like a timesheet") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestRun_ImageDocument(t *testing.T) {
	t.Parallel()

	ocrText := `From 01-01-2024 To 07-01-2024
Day Total (hrs) 0.00 8.00 8.00 8.00 8.00 0.00 0.00
`
	docs := []Document{{Path: "scan.png", Kind: KindImage, Sender: "jdoe@co.com"}}
	deps := Deps{OCR: &fakeOCR{text: ocrText}}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Fatalf("expected success, errors = %v", result.Errors)
	}
	if result.TotalEntries != 4 {
		t.Fatalf("total entries = %d, want 4", result.TotalEntries)
	}
	if result.Entries[0].Project != "Seymour Whyte Connect" {
		t.Errorf("project = %q", result.Entries[0].Project)
	}
}

func TestRun_PDFDocument(t *testing.T) {
	t.Parallel()

	text := "01/15/2024 Mon Work 08:00 AM 05:00 PM 8.00 0.00 0.00 0.00 0.00 8.00"
	docs := []Document{{Path: "report.pdf", Kind: KindTextPDF, Sender: "jdoe@co.com", ClientHint: "Acme"}}
	deps := Deps{PDFText: pdfReader(text, nil)}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Fatalf("expected success, errors = %v", result.Errors)
	}
	if result.TotalEntries != 1 {
		t.Fatalf("total entries = %d, want 1", result.TotalEntries)
	}
	if result.Entries[0].Client != "Acme" {
		t.Errorf("client = %q, want hint", result.Entries[0].Client)
	}
}

func TestRun_FailingDocumentDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Path: "broken.pdf", Kind: KindTextPDF, Sender: "jdoe@co.com"},
		{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"},
	}
	deps := Deps{
		PDFText:   pdfReader("", errors.New("unreadable")),
		ReadTable: tableReader(tabularRecords(), nil),
	}

	result := Run(context.Background(), docs, deps)

	if result.Success {
		t.Error("expected success=false with a failing document")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "broken.pdf") {
		t.Errorf("errors = %v", result.Errors)
	}
	if result.TotalEntries != 1 {
		t.Fatalf("total entries = %d, want 1 from surviving document", result.TotalEntries)
	}
}

func TestRun_SinkFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{
		ReadTable: tableReader(tabularRecords(), nil),
		Sink:      &fakeSink{err: errors.New("db locked")},
	}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Error("sink failure must not fail the batch")
	}
	if result.TotalEntries != 1 {
		t.Fatalf("total entries = %d, want 1", result.TotalEntries)
	}
	if result.SinkError == "" {
		t.Error("expected sink error to be reported")
	}
}

func TestRun_SinkReceivesEntries(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(tabularRecords(), nil), Sink: sink}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Fatalf("expected success, errors = %v", result.Errors)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("sink received %d entries, want 1", len(sink.entries))
	}
}

func TestRun_SinkReceivesPTORecordsPerDocument(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	records := []extract.Record{
		{RowNumber: 2, Values: map[string]string{"date": "2024-01-15", "hours": "8", "activity": "Work"}},
		{RowNumber: 3, Values: map[string]string{"date": "2024-01-16", "hours": "8", "activity": "PTO"}},
	}
	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(records, nil), Sink: sink}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Fatalf("expected success, errors = %v", result.Errors)
	}
	ptoRecords := sink.ptoByFile["week.csv"]
	if len(ptoRecords) != 1 {
		t.Fatalf("pto records for week.csv = %d, want 1", len(ptoRecords))
	}
	if ptoRecords[0].Date != "01/16/2024" || ptoRecords[0].Activity != timesheet.ActivityPTO {
		t.Errorf("pto record = %+v", ptoRecords[0])
	}
}

func TestRun_PTORecordFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{ptoErr: errors.New("db locked")}
	records := []extract.Record{
		{RowNumber: 2, Values: map[string]string{"date": "2024-01-16", "hours": "8", "activity": "PTO"}},
	}
	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(records, nil), Sink: sink}

	result := Run(context.Background(), docs, deps)

	if !result.Success {
		t.Error("pto record failure must not fail the batch")
	}
	if result.SinkError == "" {
		t.Error("expected pto record failure to be reported")
	}
}

func TestRun_PDFTextDefaultsToBuiltinReader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.pdf")
	docs := []Document{{Path: path, Kind: KindTextPDF, Sender: "jdoe@co.com"}}

	result := Run(context.Background(), docs, Deps{})

	if result.Success {
		t.Fatal("expected failure for missing pdf")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "open pdf") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestRun_IdentityEnrichmentFromMapping(t *testing.T) {
	t.Parallel()

	mapping := identity.Mapping{
		"jane.doe@paradigm.com": {
			Name:       "Jane Doe",
			EmployeeID: "E1001",
		},
	}
	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "Jane <jane.doe@paradigm.com>"}}
	deps := Deps{ReadTable: tableReader(tabularRecords(), nil), Mapping: mapping}

	result := Run(context.Background(), docs, deps)

	if result.Entries[0].EmployeeName != "Jane Doe" || result.Entries[0].EmployeeID != "E1001" {
		t.Errorf("identity = %q/%q", result.Entries[0].EmployeeName, result.Entries[0].EmployeeID)
	}
}

func TestRun_CancelledContextStopsBatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []Document{{Path: "week.csv", Kind: KindTabular, Sender: "jdoe@co.com"}}
	deps := Deps{ReadTable: tableReader(tabularRecords(), nil)}

	result := Run(ctx, docs, deps)

	if result.Success {
		t.Error("expected failure for cancelled context")
	}
	if result.TotalEntries != 0 {
		t.Errorf("total entries = %d, want 0", result.TotalEntries)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	t.Parallel()

	result := Run(context.Background(), nil, Deps{})
	if !result.Success || result.TotalEntries != 0 {
		t.Errorf("empty batch result = %+v", result)
	}
}
