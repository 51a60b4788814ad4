package extract

import (
	"fmt"
	"strconv"
	"strings"

	"timesift/timesheet"
)

// Entry is a raw extracted row before identity enrichment. Client and
// Project may be empty; the reconciler fills them. PTO entries from the
// document-text path carry zero hours until resolved downstream.
type Entry struct {
	Date     string
	Day      string
	Hours    float64
	Activity timesheet.Activity
	Client   string
	Project  string
	Start    string
	Stop     string
}

func parseHours(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, nil
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	if hours < 0 {
		return 0, fmt.Errorf("hours must not be negative: %q", raw)
	}
	return hours, nil
}
