package output

import (
	"fmt"
	"math"
	"sort"

	"timesift/dates"
	"timesift/timesheet"
)

// DailySummary collapses one calendar day of a batch into totals, split by
// activity.
type DailySummary struct {
	Date       string
	Day        string
	WorkHours  float64
	PTOHours   float64
	TotalHours float64
	EntryCount int
}

// BuildDailySummaries groups entries by canonical date and totals their
// hours, ordered chronologically.
func BuildDailySummaries(entries []timesheet.Entry) []DailySummary {
	if len(entries) == 0 {
		return []DailySummary{}
	}

	byDay := make(map[string][]timesheet.Entry)
	for _, entry := range entries {
		byDay[entry.Date] = append(byDay[entry.Date], entry)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		left, errLeft := dates.ParseCanonical(days[i])
		right, errRight := dates.ParseCanonical(days[j])
		if errLeft != nil || errRight != nil {
			return days[i] < days[j]
		}
		return left.Before(right)
	})

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day]))
	}

	return summaries
}

func summarizeDay(day string, entries []timesheet.Entry) DailySummary {
	summary := DailySummary{
		Date:       day,
		Day:        entries[0].Day,
		EntryCount: len(entries),
	}

	for _, entry := range entries {
		switch entry.Activity {
		case timesheet.ActivityPTO:
			summary.PTOHours += entry.Hours
		default:
			summary.WorkHours += entry.Hours
		}
	}

	summary.WorkHours = roundHours(summary.WorkHours)
	summary.PTOHours = roundHours(summary.PTOHours)
	summary.TotalHours = roundHours(summary.WorkHours + summary.PTOHours)
	return summary
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailySummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writeDailySummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}
