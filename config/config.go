package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyOCREndpoint      = "ocr.endpoint"
	KeyOCRAPIKeyEnv     = "ocr.api_key_env"
	KeyOCRTimeout       = "ocr.timeout_seconds"
	KeyOCRMaxAttempts   = "ocr.max_attempts"
	KeyOCRBackoffBase   = "ocr.backoff_base"
	KeyMailHost         = "mail.host"
	KeyMailPort         = "mail.port"
	KeyMailUsername     = "mail.username"
	KeyMailPasswordEnv  = "mail.password_env"
	KeyMailUseTLS       = "mail.use_tls"
	KeyMailDownloadDir  = "mail.download_dir"
	KeyIdentityMapping  = "identity.mapping_file"
	KeyDatabasePath     = "database.path"
	KeyOutputDir        = "output.dir"
	KeyOutputFormat     = "output.format"
)

type Config struct {
	OCR      OCRConfig      `mapstructure:"ocr" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	Identity IdentityConfig `mapstructure:"identity"`
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
}

type OCRConfig struct {
	Endpoint       string  `mapstructure:"endpoint" validate:"required,url"`
	APIKeyEnv      string  `mapstructure:"api_key_env" validate:"required"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=1"`
	MaxAttempts    int     `mapstructure:"max_attempts" validate:"gte=1"`
	BackoffBase    float64 `mapstructure:"backoff_base" validate:"gt=0"`
}

type MailConfig struct {
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Username    string `mapstructure:"username"`
	PasswordEnv string `mapstructure:"password_env" validate:"required"`
	UseTLS      bool   `mapstructure:"use_tls"`
	DownloadDir string `mapstructure:"download_dir" validate:"required"`
}

type IdentityConfig struct {
	MappingFile string `mapstructure:"mapping_file"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timesift configuration
ocr:
  endpoint: "https://api.ocr.space/parse/image"
  api_key_env: "OCR_KEY"
  timeout_seconds: 120
  max_attempts: 4
  backoff_base: 1.5

mail:
  host: "imap.gmail.com"
  port: 993
  username: ""
  password_env: "MAIL_PASSWORD"
  use_tls: true
  download_dir: "timesheet_attachments"

identity:
  mapping_file: ""

database:
  path: "timesift.db"

output:
  dir: "results"
  format: "csv"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateOutputFormat(cfg.Output.Format); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyOCREndpoint, "https://api.ocr.space/parse/image")
	v.SetDefault(KeyOCRAPIKeyEnv, "OCR_KEY")
	v.SetDefault(KeyOCRTimeout, 120)
	v.SetDefault(KeyOCRMaxAttempts, 4)
	v.SetDefault(KeyOCRBackoffBase, 1.5)
	v.SetDefault(KeyMailHost, "imap.gmail.com")
	v.SetDefault(KeyMailPort, 993)
	v.SetDefault(KeyMailPasswordEnv, "MAIL_PASSWORD")
	v.SetDefault(KeyMailUseTLS, true)
	v.SetDefault(KeyMailDownloadDir, "timesheet_attachments")
	v.SetDefault(KeyDatabasePath, "timesift.db")
	v.SetDefault(KeyOutputDir, "results")
	v.SetDefault(KeyOutputFormat, "csv")
}

func validateOutputFormat(format string) error {
	validFormats := map[string]bool{
		"":      true,
		"csv":   true,
		"excel": true,
		"xlsx":  true,
	}
	if !validFormats[strings.ToLower(strings.TrimSpace(format))] {
		return fmt.Errorf(
			"validation failed: output.format %q is not supported (valid: csv, excel, xlsx)",
			format,
		)
	}
	return nil
}
