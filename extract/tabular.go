package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"timesift/dates"
	"timesift/timesheet"
)

var (
	// ErrEmptyTable marks a tabular source with no data rows.
	ErrEmptyTable = errors.New("table has no rows")
	// ErrNoUsableColumns marks a table missing the required date+hours pair.
	ErrNoUsableColumns = errors.New("table lacks a usable date and hours column pair")
)

// TabularResult is the outcome of extracting one spreadsheet-like document.
type TabularResult struct {
	WorkEntries []Entry
	PTOEntries  []Entry
	ClientName  string
	TotalHours  float64
}

// Tabular classifies the rows of a tabular source into work and PTO
// entries. Summary rows, blank rows, and zero-hour rows are skipped; a
// malformed row is logged and skipped without failing the extraction.
func Tabular(records []Record, logger *slog.Logger) (*TabularResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	columns := ResolveColumns(records[0].Headers())
	missing := make([]string, 0, 2)
	for _, required := range []string{"date", "hours"} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNoUsableColumns, strings.Join(missing, ", "))
	}

	result := &TabularResult{}
	for _, record := range records {
		dateRaw := record.Get(columns["date"])
		hoursRaw := record.Get(columns["hours"])

		// Summary and filler rows are expected, not errors.
		if dateRaw == "" || hoursRaw == "" || strings.EqualFold(dateRaw, "total") {
			continue
		}

		hours, err := parseHours(hoursRaw)
		if err != nil {
			logger.Warn("tabular: skipping row", "row", record.RowNumber, "err", err)
			continue
		}
		if hours == 0 {
			continue
		}

		parsed, err := dates.Normalize(dateRaw)
		if err != nil {
			logger.Warn("tabular: skipping row with unparseable date", "row", record.RowNumber, "date", dateRaw, "err", err)
			continue
		}

		entry := Entry{
			Date:    dates.Canonical(parsed),
			Day:     dates.WeekdayCode(parsed),
			Hours:   hours,
			Client:  timesheet.UnknownClient,
			Project: timesheet.UnknownProject,
		}
		if column, ok := columns["client"]; ok {
			if client := record.Get(column); client != "" {
				entry.Client = client
			}
		}
		if column, ok := columns["project"]; ok {
			if project := record.Get(column); project != "" {
				entry.Project = project
			}
		}

		entry.Activity = timesheet.ActivityWork
		if column, ok := columns["activity"]; ok {
			entry.Activity = timesheet.ClassifyActivity(record.Get(column))
		}

		if entry.Activity == timesheet.ActivityPTO {
			result.PTOEntries = append(result.PTOEntries, entry)
		} else {
			result.WorkEntries = append(result.WorkEntries, entry)
		}
		result.TotalHours += hours
	}

	switch {
	case len(result.WorkEntries) > 0:
		result.ClientName = result.WorkEntries[0].Client
	case len(result.PTOEntries) > 0:
		result.ClientName = result.PTOEntries[0].Client
	default:
		result.ClientName = timesheet.UnknownClient
	}

	return result, nil
}
