package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage timesift configuration file values.",
	Long: `Create, edit, display, and delete the timesift configuration file.

The configuration stores application-wide values:
- ocr.endpoint / ocr.api_key_env / retry settings
- mail.host / mail.port / mail.username / mail.password_env / mail.download_dir
- identity.mapping_file
- database.path
- output.dir / output.format`,
	Example: `
  # Create default config in $HOME/.timesift.yaml
  timesift config create

  # Show active config and source file
  timesift config show

  # Open active config in editor (creates example if missing)
  timesift config edit

  # Delete active config file
  timesift config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
