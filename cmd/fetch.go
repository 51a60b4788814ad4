package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timesift/batch"
	"timesift/config"
	"timesift/mail"
	"timesift/output"
	"timesift/pdftext"
	"timesift/storage"
)

var (
	fetchSince     string
	fetchBefore    string
	fetchSender    string
	fetchDBPath    string
	fetchOutputDir string
	fetchListOnly  bool
)

const fetchDateLayout = "2006-01-02"

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch timesheet emails over IMAP and extract their attachments",
	Long: `Search the configured INBOX for timesheet emails in a date range,
download their attachments, and run the extraction pipeline over them.

An email qualifies when its subject contains a timesheet keyword (timesheet,
timecard, hours, payroll, ...) and it carries at least one supported
attachment. Each attachment is processed with the email's sender as the
originating address for identity resolution.

The mailbox password is read from the environment variable named by
mail.password_env.`,
	Example: `
  # Fetch January's timesheet emails and extract everything
  timesift fetch --since 2024-01-01 --before 2024-02-01

  # Restrict to one sender
  timesift fetch --since 2024-01-01 --before 2024-02-01 --sender jane.doe@paradigm.com

  # Download attachments without extracting
  timesift fetch --since 2024-01-01 --before 2024-02-01 --list-only
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		since, err := time.Parse(fetchDateLayout, fetchSince)
		if err != nil {
			return fmt.Errorf("invalid --since date %q (expected YYYY-MM-DD): %w", fetchSince, err)
		}
		before, err := time.Parse(fetchDateLayout, fetchBefore)
		if err != nil {
			return fmt.Errorf("invalid --before date %q (expected YYYY-MM-DD): %w", fetchBefore, err)
		}

		logger := newLogger()

		detector := mail.NewDetector(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: os.Getenv(cfg.Mail.PasswordEnv),
			UseTLS:   cfg.Mail.UseTLS,
		}, logger)

		messages, err := detector.Fetch(since, before, fetchSender, cfg.Mail.DownloadDir)
		if err != nil {
			return err
		}

		fmt.Printf("Found %d timesheet email(s).\n", len(messages))
		for _, msg := range messages {
			fmt.Printf("  %s  %s  (%d attachment(s))\n",
				msg.Date.Format(fetchDateLayout), msg.Subject, len(msg.Attachments))
		}
		if fetchListOnly || len(messages) == 0 {
			return nil
		}

		var docs []batch.Document
		for _, msg := range messages {
			for _, attachment := range msg.Attachments {
				kind, err := batch.KindForPath(attachment.Path)
				if err != nil {
					logger.Warn("fetch: skipping attachment", "path", attachment.Path, "err", err)
					continue
				}
				docs = append(docs, batch.Document{
					Path:   attachment.Path,
					Kind:   kind,
					Sender: msg.From,
				})
			}
		}

		mapping, err := loadMapping(cfg, logger)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(resolveFlag(fetchDBPath, cfg.Database.Path))
		if err != nil {
			return err
		}
		defer store.Close()

		deps := batch.Deps{
			PDFText:  pdftext.Extract,
			OCR:      newOCRClient(cfg, logger),
			Mapping:  mapping,
			PTOHours: store,
			Sink:     store,
			Logger:   logger,
		}

		result := batch.Run(cmd.Context(), docs, deps)

		resultPath, err := output.WriteResultJSON(resolveFlag(fetchOutputDir, cfg.Output.Dir), result)
		if err != nil {
			return err
		}

		fmt.Printf("Extraction completed. Documents: %d, Entries: %d, Errors: %d, Result: %s\n",
			len(docs), result.TotalEntries, len(result.Errors), resultPath)
		for _, errMsg := range result.Errors {
			fmt.Printf("  error: %s\n", errMsg)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchSince, "since", "", "Start of the search range (YYYY-MM-DD, inclusive)")
	fetchCmd.Flags().StringVar(&fetchBefore, "before", "", "End of the search range (YYYY-MM-DD, exclusive)")
	fetchCmd.Flags().StringVar(&fetchSender, "sender", "", "Restrict the search to one sender address")
	fetchCmd.Flags().StringVar(&fetchDBPath, "db", "", "Path to local SQLite database (default from database.path)")
	fetchCmd.Flags().StringVar(&fetchOutputDir, "output-dir", "", "Directory for batch result JSON files (default from output.dir)")
	fetchCmd.Flags().BoolVar(&fetchListOnly, "list-only", false, "Only list and download, skip extraction")

	_ = fetchCmd.MarkFlagRequired("since")
	_ = fetchCmd.MarkFlagRequired("before")
}
