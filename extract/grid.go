package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"timesift/dates"
	"timesift/timesheet"
)

// GridResult is the outcome of extracting one scanned weekly-grid document.
// StartDate is the zero time when no date range was found, in which case no
// per-day entries are produced.
type GridResult struct {
	Project     string
	DailyHours  map[string]float64
	WorkEntries []Entry
	PTOEntries  []Entry
	TotalHours  float64
	StartDate   time.Time
}

// weekdayColumns maps grid column position to a weekday code: column i is
// StartDate + i days, a Monday-anchored week.
var weekdayColumns = [7]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

const gridStartDateLayout = "02-01-2006"

// dateRangePatterns are tried in order; the first match seeds StartDate.
var dateRangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`From\s+(\d{2}-\d{2}-\d{4})\s+To\s+(\d{2}-\d{2}-\d{4})`),
	regexp.MustCompile(`(\d{2}-\d{2}-\d{4})\s+To\s+(\d{2}-\d{2}-\d{4})`),
	regexp.MustCompile(`From\s*(\d{2}-\d{2}-\d{4})\s*To\s*(\d{2}-\d{2}-\d{4})`),
}

// The OCR pipeline is tuned to one known source template, so project
// identification is a small ordered pattern list with a fixed default.
var projectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Seymour\s+Whyte\s+Connect`),
	regexp.MustCompile(`(?i)Select\s+Project[^\n]*Seymour[^\n]*Whyte[^\n]*Connect`),
	regexp.MustCompile(`(?i)Project[^\n]*Seymour[^\n]*Whyte`),
}

const defaultGridProject = "Seymour Whyte Connect"

var (
	leaveRowPattern = regexp.MustCompile(`(?i)(?:Leave|PTO)` + strings.Repeat(`\s+(\d+\.?\d*)`, 7))

	dayTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Day\s+Total\s*\(hrs\)` + strings.Repeat(`\D*?(\d+\.?\d*)`, 7)),
		regexp.MustCompile(`(?i)Day\s+Total` + strings.Repeat(`\D*?(\d+\.?\d*)`, 7)),
	}

	weekdayHeaderPattern = regexp.MustCompile(`(?i)MON.*TUE.*WED.*THU.*FRI.*SAT.*SUN`)
	hourTokenPattern     = regexp.MustCompile(`\b(\d+\.00|\d+\.\d+)\b`)
)

// Grid extracts per-day work and PTO entries from noisy OCR text organized
// as a Mon-Sun weekly grid. It never fails: every missing anchor degrades
// to a partially empty, logged result.
func Grid(text string, logger *slog.Logger) *GridResult {
	if logger == nil {
		logger = slog.Default()
	}

	result := &GridResult{
		Project:    defaultGridProject,
		DailyHours: make(map[string]float64),
	}

	for _, pattern := range dateRangePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		start, err := time.Parse(gridStartDateLayout, match[1])
		if err != nil {
			logger.Warn("grid: unparseable date range start", "value", match[1], "err", err)
			continue
		}
		result.StartDate = start
		logger.Debug("grid: found date range", "from", match[1], "to", match[2])
		break
	}

	for _, pattern := range projectPatterns {
		if pattern.MatchString(text) {
			result.Project = defaultGridProject
			break
		}
	}

	if result.StartDate.IsZero() {
		// Without a date anchor no column can map to a real date.
		logger.Warn("grid: no date range found, skipping day columns")
		return result
	}
	if result.StartDate.Weekday() != time.Monday {
		logger.Warn("grid: date range does not start on a Monday", "start", dates.Canonical(result.StartDate))
	}

	ptoDates := make(map[string]bool)
	for _, match := range leaveRowPattern.FindAllStringSubmatch(text, -1) {
		for i, raw := range match[1:] {
			hours, err := parseHours(raw)
			if err != nil || hours == 0 {
				continue
			}
			date := dates.Canonical(result.StartDate.AddDate(0, 0, i))
			if ptoDates[date] {
				// Guards against the pattern matching extraneous numeric runs.
				logger.Warn("grid: duplicate PTO entry ignored", "date", date)
				continue
			}
			ptoDates[date] = true
			result.PTOEntries = append(result.PTOEntries, Entry{
				Date:     date,
				Day:      weekdayColumns[i],
				Hours:    hours,
				Activity: timesheet.ActivityPTO,
			})
		}
	}

	extracted := false
	for _, pattern := range dayTotalPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		result.addWorkColumns(match[1:], ptoDates, logger)
		extracted = true
		break
	}

	if !extracted {
		result.scanGridLines(text, ptoDates, logger)
	}

	for _, entry := range result.WorkEntries {
		result.TotalHours += entry.Hours
	}
	for _, entry := range result.PTOEntries {
		result.TotalHours += entry.Hours
	}

	logger.Debug("grid: extraction complete",
		"work_entries", len(result.WorkEntries),
		"pto_entries", len(result.PTOEntries),
		"total_hours", result.TotalHours,
	)

	return result
}

// addWorkColumns maps up to seven numeric columns onto Mon-Sun offsets from
// StartDate. A day is only emitted when it is not already claimed by PTO
// and its hours are non-zero.
func (g *GridResult) addWorkColumns(columns []string, ptoDates map[string]bool, logger *slog.Logger) {
	for i, raw := range columns {
		if i >= len(weekdayColumns) {
			break
		}
		hours, err := parseHours(raw)
		if err != nil {
			logger.Warn("grid: unparseable day column", "column", i, "value", raw, "err", err)
			continue
		}
		if hours == 0 {
			continue
		}
		date := dates.Canonical(g.StartDate.AddDate(0, 0, i))
		if ptoDates[date] {
			continue
		}
		g.DailyHours[weekdayColumns[i]+" "+date] = hours
		g.WorkEntries = append(g.WorkEntries, Entry{
			Date:     date,
			Day:      weekdayColumns[i],
			Hours:    hours,
			Activity: timesheet.ActivityWork,
		})
	}
}

// scanGridLines is the last-resort strategy when no Day-Total row matched:
// find the weekday header line, then the first nearby line carrying enough
// decimal tokens to be the hours row.
func (g *GridResult) scanGridLines(text string, ptoDates map[string]bool, logger *slog.Logger) {
	lines := strings.Split(text, "\n")

	headerIndex := -1
	for i, line := range lines {
		if weekdayHeaderPattern.MatchString(line) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		logger.Warn("grid: no weekday header line found")
		return
	}

	for offset := 1; offset < 10 && headerIndex+offset < len(lines); offset++ {
		line := lines[headerIndex+offset]
		tokens := hourTokenPattern.FindAllString(line, -1)
		if len(tokens) < 5 {
			continue
		}
		if len(tokens) > 7 {
			tokens = tokens[:7]
		}
		logger.Debug("grid: fallback hours line found", "line_offset", offset, "tokens", len(tokens))
		g.addWorkColumns(tokens, ptoDates, logger)
		return
	}
}
