package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"timesift/batch"
)

// WriteResultJSON saves one batch result under dir as
// timesheet_results_<timestamp>.json and returns the written path.
func WriteResultJSON(dir string, result batch.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	filename := fmt.Sprintf("timesheet_results_%s.json", time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch result: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("write batch result %s: %w", path, err)
	}

	return path, nil
}
