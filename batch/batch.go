// Package batch dispatches documents to the extractor matching their kind
// and aggregates the reconciled entries into one report.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"timesift/extract"
	"timesift/identity"
	"timesift/pdftext"
	"timesift/reconcile"
	"timesift/timesheet"
)

// Kind names the extraction path a document takes.
type Kind string

const (
	KindTabular Kind = "tabular"
	KindTextPDF Kind = "text-pdf"
	KindImage   Kind = "image"
)

// KindForPath infers the extraction path from a file extension.
func KindForPath(path string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv", "xlsx", "xlsm", "xls":
		return KindTabular, nil
	case "pdf":
		return KindTextPDF, nil
	case "png", "jpg", "jpeg", "heic":
		return KindImage, nil
	default:
		return "", fmt.Errorf("no extractor for file %s", path)
	}
}

// Document is one candidate input to a batch run.
type Document struct {
	Path       string
	Kind       Kind
	Sender     string
	ClientHint string
}

// TextProducer turns an image file into text, possibly over the network.
type TextProducer interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Sink persists a batch's entries and the PTO rows each source document
// reported. Failure is non-fatal to extraction.
type Sink interface {
	InsertEntries(entries []timesheet.Entry) (int, error)
	RecordPTO(entries []timesheet.Entry, sourceFile string) (int, error)
}

// Deps wires the collaborators a batch run needs. ReadTable and PDFText
// default to the built-in readers when nil; OCR must be set when any image
// document is present.
type Deps struct {
	ReadTable func(path string) ([]extract.Record, error)
	PDFText   func(path string) (string, error)
	OCR       TextProducer
	Mapping   identity.Mapping
	PTOHours  reconcile.PTOHoursSource
	Sink      Sink
	Logger    *slog.Logger
}

// Result is the aggregate outcome of one batch.
type Result struct {
	Success      bool              `json:"success"`
	Entries      []timesheet.Entry `json:"extracted_entries"`
	TotalEntries int               `json:"total_entries"`
	Errors       []string          `json:"errors"`
	SinkError    string            `json:"sink_error,omitempty"`
}

func readTableDefault(path string) ([]extract.Record, error) {
	reader, err := extract.ReaderForPath(path)
	if err != nil {
		return nil, err
	}
	return reader.Read(path)
}

// Run processes documents sequentially in arrival order. A failing document
// contributes an error string and zero entries; the batch always completes.
func Run(ctx context.Context, docs []Document, deps Deps) Result {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.ReadTable == nil {
		deps.ReadTable = readTableDefault
	}
	if deps.PDFText == nil {
		deps.PDFText = pdftext.Extract
	}

	result := Result{Entries: []timesheet.Entry{}, Errors: []string{}}
	ptoDatesSeen := make(map[string]string)

	type documentPTO struct {
		path    string
		entries []timesheet.Entry
	}
	var ptoByDocument []documentPTO

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Path, err))
			break
		}

		entries, err := processDocument(ctx, doc, deps, logger)
		if err != nil {
			logger.Error("batch: document failed", "path", doc.Path, "kind", doc.Kind, "err", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Path, err))
			continue
		}

		// PTO duplicates across documents are a submission inconsistency,
		// not a system error. They are reported, never merged or dropped.
		var ptoEntries []timesheet.Entry
		for _, entry := range entries {
			if entry.Activity != timesheet.ActivityPTO {
				continue
			}
			ptoEntries = append(ptoEntries, entry)
			key := entry.EmployeeID + " " + entry.Date
			if previous, ok := ptoDatesSeen[key]; ok {
				logger.Warn("batch: PTO date reported by multiple documents",
					"date", entry.Date,
					"employee_id", entry.EmployeeID,
					"first_document", previous,
					"document", doc.Path,
				)
				continue
			}
			ptoDatesSeen[key] = doc.Path
		}

		if len(ptoEntries) > 0 {
			ptoByDocument = append(ptoByDocument, documentPTO{path: doc.Path, entries: ptoEntries})
		}

		result.Entries = append(result.Entries, entries...)
		logger.Info("batch: document processed", "path", doc.Path, "entries", len(entries))
	}

	result.TotalEntries = len(result.Entries)
	result.Success = len(result.Errors) == 0

	if deps.Sink != nil && len(result.Entries) > 0 {
		inserted, err := deps.Sink.InsertEntries(result.Entries)
		if err != nil {
			// Extraction output stays reportable even when persistence fails.
			logger.Error("batch: sink failed", "err", err)
			result.SinkError = err.Error()
		} else {
			logger.Info("batch: entries persisted", "inserted", inserted)
		}

		for _, doc := range ptoByDocument {
			recorded, err := deps.Sink.RecordPTO(doc.entries, doc.path)
			if err != nil {
				logger.Error("batch: pto records failed", "path", doc.path, "err", err)
				if result.SinkError == "" {
					result.SinkError = err.Error()
				}
				continue
			}
			logger.Info("batch: pto records persisted", "path", doc.path, "recorded", recorded)
		}
	}

	return result
}

func processDocument(ctx context.Context, doc Document, deps Deps, logger *slog.Logger) ([]timesheet.Entry, error) {
	var input reconcile.Input
	input.Sender = doc.Sender

	switch doc.Kind {
	case KindTabular:
		records, err := deps.ReadTable(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		if !extract.LooksLikeTimesheet(records) {
			return nil, fmt.Errorf("%s does not look like a timesheet", doc.Path)
		}
		extracted, err := extract.Tabular(records, logger)
		if err != nil {
			return nil, fmt.Errorf("extract table: %w", err)
		}
		input.ClientName = extracted.ClientName
		input.WorkEntries = extracted.WorkEntries
		input.PTOEntries = extracted.PTOEntries

	case KindTextPDF:
		text, err := deps.PDFText(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		extracted := extract.Text(text, doc.ClientHint, logger)
		input.ClientName = extracted.ClientName
		input.WorkEntries = extracted.WorkEntries
		input.PTOEntries = extracted.PTOEntries

	case KindImage:
		if deps.OCR == nil {
			return nil, fmt.Errorf("no ocr producer configured")
		}
		text, err := deps.OCR.ExtractText(ctx, doc.Path)
		if err != nil {
			return nil, fmt.Errorf("ocr image: %w", err)
		}
		extracted := extract.Grid(text, logger)
		input.ProjectName = extracted.Project
		input.WorkEntries = extracted.WorkEntries
		input.PTOEntries = extracted.PTOEntries

	default:
		return nil, fmt.Errorf("unknown document kind %q", doc.Kind)
	}

	return reconcile.Enrich(input, deps.Mapping, deps.PTOHours, logger), nil
}
