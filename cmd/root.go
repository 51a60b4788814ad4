package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timesift/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timesift",
	Short: "Extract, reconcile, and persist timesheet entries from email attachments.",
	Long: `
**********************************************
*                TIMESIFT                    *
**********************************************

This CLI fetches timesheet emails over IMAP, extracts work/PTO entries from
their attachments (spreadsheets, PDFs, scanned images), reconciles them
against an identity mapping, and persists results in a local SQLite database.

Supported attachment formats:
- Spreadsheets: .csv, .xlsx, .xlsm, .xls
- Documents: .pdf
- Scanned images: .png, .jpg, .jpeg, .heic
`,
	Example: `
  # Create configuration file
  timesift config create

  # Fetch timesheet emails and download attachments
  timesift fetch --since 2024-01-01 --before 2024-01-31

  # Extract entries from local documents
  timesift extract -i week3.xlsx -i scan.png --sender jane.doe@paradigm.com

  # Export stored entries
  timesift export --mode raw --output ./entries.csv

  # Export daily totals
  timesift export --mode daily --output ./daily-summary.csv
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.timesift.yaml, then ./.timesift.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".timesift" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".timesift")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: timesift config create")
	}
}
