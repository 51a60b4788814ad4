package extract

import "strings"

// columnAliases maps each canonical column to the header spellings seen
// across timesheet templates, in match priority order.
var columnAliases = []struct {
	Canonical string
	Aliases   []string
}{
	{"date", []string{"date", "day date", "work date"}},
	{"day", []string{"day", "day of week", "weekday"}},
	{"client", []string{"client", "client name", "company"}},
	{"project", []string{"project", "project name"}},
	{"activity", []string{"activity", "activity type", "work/pto", "type", "activity (work/pto)"}},
	{"hours", []string{"hours", "hours worked", "time", "duration"}},
}

// ResolveColumns matches normalized headers against the alias table and
// returns a canonical-name to actual-header mapping for the columns found.
func ResolveColumns(headers []string) map[string]string {
	present := make(map[string]bool, len(headers))
	for _, header := range headers {
		present[normalizeHeader(header)] = true
	}

	resolved := make(map[string]string, len(columnAliases))
	for _, column := range columnAliases {
		for _, alias := range column.Aliases {
			normalized := normalizeHeader(alias)
			if present[normalized] {
				resolved[column.Canonical] = normalized
				break
			}
		}
	}
	return resolved
}

// timesheetIndicators are header substrings suggesting a sheet is a
// timesheet at all.
var timesheetIndicators = []string{"date", "hours", "day", "client", "project", "activity", "time"}

// LooksLikeTimesheet reports whether the table's headers carry at least two
// timesheet-indicator columns.
func LooksLikeTimesheet(records []Record) bool {
	if len(records) == 0 {
		return false
	}

	headers := records[0].Headers()
	matches := 0
	for _, indicator := range timesheetIndicators {
		for _, header := range headers {
			if strings.Contains(header, indicator) {
				matches++
				break
			}
		}
	}
	return matches >= 2
}
