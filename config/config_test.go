package config

import (
	"strings"
	"testing"
)

func TestValidateYAMLContent_RejectsUnsupportedOutputFormat(t *testing.T) {
	t.Parallel()

	content := []byte(`ocr:
  endpoint: "https://api.ocr.space/parse/image"
output:
  dir: "results"
  format: "yaml"
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected validation error for unsupported output format")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_RejectsInvalidEndpoint(t *testing.T) {
	t.Parallel()

	content := []byte(`ocr:
  endpoint: "not a url"
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected validation error for malformed endpoint")
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`mail:
  username: "jane.doe@paradigm.com"
`))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}

	if cfg.OCR.Endpoint != "https://api.ocr.space/parse/image" {
		t.Errorf("endpoint default = %q", cfg.OCR.Endpoint)
	}
	if cfg.OCR.MaxAttempts != 4 || cfg.OCR.BackoffBase != 1.5 {
		t.Errorf("retry defaults = %d/%v", cfg.OCR.MaxAttempts, cfg.OCR.BackoffBase)
	}
	if cfg.Mail.Host != "imap.gmail.com" || cfg.Mail.Port != 993 || !cfg.Mail.UseTLS {
		t.Errorf("mail defaults = %+v", cfg.Mail)
	}
	if cfg.Mail.Username != "jane.doe@paradigm.com" {
		t.Errorf("username = %q", cfg.Mail.Username)
	}
	if cfg.Database.Path != "timesift.db" {
		t.Errorf("database default = %q", cfg.Database.Path)
	}
}

func TestExampleYAMLValidates(t *testing.T) {
	t.Parallel()

	if _, err := ValidateYAMLContent([]byte(ExampleYAML())); err != nil {
		t.Fatalf("example config must validate: %v", err)
	}
}

func TestValidateYAMLContent_FormatCaseInsensitive(t *testing.T) {
	t.Parallel()

	content := []byte(`output:
  dir: "results"
  format: " Excel "
`)

	if _, err := ValidateYAMLContent(content); err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
}
