package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timesift/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  timesift config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("ocr.endpoint: %s\n", cfg.OCR.Endpoint)
			fmt.Printf("ocr.api_key_env: %s\n", cfg.OCR.APIKeyEnv)
			fmt.Printf("ocr.timeout_seconds: %d\n", cfg.OCR.TimeoutSeconds)
			fmt.Printf("ocr.max_attempts: %d\n", cfg.OCR.MaxAttempts)
			fmt.Printf("ocr.backoff_base: %g\n", cfg.OCR.BackoffBase)
			fmt.Printf("mail.host: %s\n", cfg.Mail.Host)
			fmt.Printf("mail.port: %d\n", cfg.Mail.Port)
			fmt.Printf("mail.username: %s\n", cfg.Mail.Username)
			fmt.Printf("mail.password_env: %s\n", cfg.Mail.PasswordEnv)
			fmt.Printf("mail.use_tls: %t\n", cfg.Mail.UseTLS)
			fmt.Printf("mail.download_dir: %s\n", cfg.Mail.DownloadDir)
			fmt.Printf("identity.mapping_file: %s\n", cfg.Identity.MappingFile)
			fmt.Printf("database.path: %s\n", cfg.Database.Path)
			fmt.Printf("output.dir: %s\n", cfg.Output.Dir)
			fmt.Printf("output.format: %s\n", cfg.Output.Format)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
