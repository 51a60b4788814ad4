package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timesift/batch"
	"timesift/config"
	"timesift/identity"
	"timesift/ocr"
	"timesift/output"
	"timesift/pdftext"
	"timesift/storage"
)

var (
	extractInputs     []string
	extractSender     string
	extractClientHint string
	extractDBPath     string
	extractOutputDir  string
	extractNoPersist  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract timesheet entries from local documents",
	Long: `Extract work/PTO entries from timesheet documents and persist them.

Each input file is dispatched to the extractor matching its extension:
spreadsheets go through fuzzy column matching, PDFs through text-layout
patterns, and images through remote OCR and weekly-grid parsing. Extracted
entries are reconciled against the identity mapping, written to SQLite, and
the full batch result is saved as JSON in the output directory.

A failing document never aborts the batch; its error is reported in the
batch result instead.`,
	Example: `
  # Extract one spreadsheet
  timesift extract -i week3.xlsx --sender jane.doe@paradigm.com

  # Mixed batch with a client hint for PDF documents
  timesift extract -i report.pdf -i scan.png --sender jane.doe@paradigm.com --client-hint "Paradigm"

  # Extract without persisting
  timesift extract -i week3.csv --sender jane.doe@paradigm.com --no-persist
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		logger := newLogger()

		dbPath := resolveFlag(extractDBPath, cfg.Database.Path)
		outputDir := resolveFlag(extractOutputDir, cfg.Output.Dir)

		docs := make([]batch.Document, 0, len(extractInputs))
		for _, input := range extractInputs {
			kind, err := batch.KindForPath(input)
			if err != nil {
				return err
			}
			docs = append(docs, batch.Document{
				Path:       input,
				Kind:       kind,
				Sender:     extractSender,
				ClientHint: extractClientHint,
			})
		}

		mapping, err := loadMapping(cfg, logger)
		if err != nil {
			return err
		}

		deps := batch.Deps{
			PDFText: pdftext.Extract,
			OCR:     newOCRClient(cfg, logger),
			Mapping: mapping,
			Logger:  logger,
		}

		if !extractNoPersist {
			store, err := storage.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			deps.Sink = store
			deps.PTOHours = store
		}

		result := batch.Run(cmd.Context(), docs, deps)

		resultPath, err := output.WriteResultJSON(outputDir, result)
		if err != nil {
			return err
		}

		fmt.Printf("Extraction completed. Documents: %d, Entries: %d, Errors: %d, Result: %s\n",
			len(docs), result.TotalEntries, len(result.Errors), resultPath)
		for _, errMsg := range result.Errors {
			fmt.Printf("  error: %s\n", errMsg)
		}
		if result.SinkError != "" {
			fmt.Printf("  persistence failed: %s\n", result.SinkError)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringArrayVarP(&extractInputs, "input", "i", nil, "Input file path (repeatable)")
	extractCmd.Flags().StringVar(&extractSender, "sender", "", "Originating sender email address")
	extractCmd.Flags().StringVar(&extractClientHint, "client-hint", "", "Client name hint for PDF documents without a recognizable client")
	extractCmd.Flags().StringVar(&extractDBPath, "db", "", "Path to local SQLite database (default from database.path)")
	extractCmd.Flags().StringVar(&extractOutputDir, "output-dir", "", "Directory for batch result JSON files (default from output.dir)")
	extractCmd.Flags().BoolVar(&extractNoPersist, "no-persist", false, "Skip writing entries to the database")

	_ = extractCmd.MarkFlagRequired("input")
	_ = extractCmd.MarkFlagRequired("sender")
}

// resolveFlag prefers an explicit flag value over the configured one.
func resolveFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

// loadMapping reads the identity mapping named in the config; a missing
// configuration degrades to local-part identity fallbacks.
func loadMapping(cfg *config.Config, logger *slog.Logger) (identity.Mapping, error) {
	if cfg.Identity.MappingFile == "" {
		logger.Warn("no identity mapping configured, falling back to sender local parts")
		return nil, nil
	}
	mapping, err := identity.Load(cfg.Identity.MappingFile)
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func newOCRClient(cfg *config.Config, logger *slog.Logger) *ocr.Client {
	apiKey := os.Getenv(cfg.OCR.APIKeyEnv)

	opts := []ocr.Option{
		ocr.WithEndpoint(cfg.OCR.Endpoint),
		ocr.WithRetryPolicy(ocr.RetryPolicy{
			MaxAttempts: cfg.OCR.MaxAttempts,
			BackoffBase: cfg.OCR.BackoffBase,
			MaxBackoff:  ocr.DefaultMaxBackoff,
		}),
		ocr.WithLogger(logger),
	}
	if cfg.OCR.TimeoutSeconds > 0 {
		opts = append(opts, ocr.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
		}))
	}

	return ocr.NewClient(apiKey, opts...)
}
