package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"timesift/storage"
)

var (
	projectEmployeeID string
	projectName       string
	projectClient     string
	projectHours      float64
	projectDBPath     string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage employee project assignments.",
	Long: `Manage the project assignments used to resolve PTO hours.

PTO entries extracted without an hour value fall back to the assignment's
standard daily hours; without an assignment the default of 8.0 is used.`,
	Example: `
  # Register a project assignment with 7.5 standard daily hours
  timesift project set --employee-id E1001 --project "Seymour Whyte Connect" --client "Seymour Whyte" --hours 7.5
`,
}

var projectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a project assignment.",
	Long: `Create or update the project assignment for one employee.

An existing assignment for the same employee, project, and client is
overwritten with the new standard daily hours.`,
	Example: `
  timesift project set --employee-id E1001 --project "Seymour Whyte Connect" --client "Seymour Whyte" --hours 7.5
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectHours <= 0 {
			return fmt.Errorf("invalid --hours %v (must be greater than zero)", projectHours)
		}

		store, err := storage.OpenSQLite(projectDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.UpsertProject(projectEmployeeID, projectName, projectClient, projectHours); err != nil {
			return err
		}

		fmt.Printf("Project assignment saved: %s / %s / %s (%.2f h/day)\n",
			projectEmployeeID, projectName, projectClient, projectHours)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetCmd)

	projectSetCmd.Flags().StringVar(&projectEmployeeID, "employee-id", "", "Employee identifier")
	projectSetCmd.Flags().StringVar(&projectName, "project", "", "Project display name")
	projectSetCmd.Flags().StringVar(&projectClient, "client", "", "Client display name")
	projectSetCmd.Flags().Float64Var(&projectHours, "hours", 8.0, "Standard daily hours for PTO resolution")
	projectSetCmd.Flags().StringVar(&projectDBPath, "db", "./timesift.db", "Path to local SQLite database")

	_ = projectSetCmd.MarkFlagRequired("employee-id")
	_ = projectSetCmd.MarkFlagRequired("project")
	_ = projectSetCmd.MarkFlagRequired("client")
}
