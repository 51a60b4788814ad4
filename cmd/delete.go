package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"timesift/storage"
)

var (
	deleteDBPath      string
	deleteEntriesOnly bool
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the SQLite database file or its stored entries",
	Long: `Destructive database cleanup command.

By default this command deletes the complete SQLite database file. With
--entries-only the file is kept and only the timesheet entry rows are removed.
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the complete SQLite file (requires interactive confirmation)
  timesift delete --db ./timesift.db

  # Keep the file, wipe the stored timesheet entries
  timesift delete --db ./timesift.db --entries-only
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, deleteDBPath)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if deleteEntriesOnly {
			removed, err := removeAllEntries(deleteDBPath)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d timesheet entries from: %s\n", removed, deleteDBPath)
			return nil
		}

		if err := removeDatabaseFile(deleteDBPath); err != nil {
			return err
		}
		fmt.Printf("Deleted database file: %s\n", deleteDBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "./timesift.db", "Path to local SQLite database")
	deleteCmd.Flags().BoolVar(&deleteEntriesOnly, "entries-only", false, "Delete stored timesheet entries but keep the database file")
}

func confirmDeletePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete database file %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeAllEntries(path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("database file not found: %s", path)
		}
		return 0, fmt.Errorf("stat database file: %w", err)
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.DeleteAllEntries()
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
