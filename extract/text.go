package extract

import (
	"log/slog"
	"regexp"

	"timesift/dates"
	"timesift/timesheet"
)

// TextResult is the outcome of extracting one text-layout document.
type TextResult struct {
	WorkEntries []Entry
	PTOEntries  []Entry
	ClientName  string
}

// workLayout is one known row layout of the report generator. Layouts are
// tried in priority order; the first one producing matches wins. The
// generator has emitted at least two structurally different layouts across
// template versions, so a fallback keeps newer reports parseable without
// misreading columns.
type workLayout struct {
	name    string
	pattern *regexp.Regexp
	// fields maps capture indices: date, hours, start, stop (0 = absent).
	dateGroup  int
	hoursGroup int
	startGroup int
	stopGroup  int
}

var workLayouts = []workLayout{
	{
		// <date> <weekday> Work <start> <stop> <5 numeric columns, last = hours>
		name: "primary",
		pattern: regexp.MustCompile(`(?is)(\d{2}/\d{2}/\d{4})\s+` +
			`(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s+` +
			`Work\s+` +
			`(\d{1,2}:\d{2}\s*(?:AM|PM))\s+` +
			`(\d{1,2}:\d{2}\s*(?:AM|PM))\s+` +
			`[\d.]+\s+[\d.]+\s+[\d.]+\s+[\d.]+\s+[\d.]+\s+` +
			`([\d.]+)`),
		dateGroup:  1,
		hoursGroup: 5,
		startGroup: 3,
		stopGroup:  4,
	},
	{
		// <hours> <numeric> <numeric> <start> <stop> Work <weekday> <date>
		name: "fallback",
		pattern: regexp.MustCompile(`(?i)([\d.]+)\s*` +
			`[\d.]+\s*` +
			`[\d.]+\s*` +
			`(?:\d{1,2}:\d{2}\s*(?:AM|PM)\s*)` +
			`(?:\d{1,2}:\d{2}\s*(?:AM|PM)\s*)` +
			`Work\s*` +
			`(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*` +
			`(\d{2}/\d{2}/\d{4})`),
		dateGroup:  2,
		hoursGroup: 1,
	},
}

var ptoPattern = regexp.MustCompile(`(?i)PTO\s*` +
	`(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*` +
	`(\d{2}/\d{2}/\d{4})`)

// knownClientPattern matches the one vendor name this report template
// carries; the canonical spelling is attached when found.
var knownClientPattern = regexp.MustCompile(`(?is)Paradigm\s+Technology\s+Consulting\s+LLC`)

const knownClientName = "Paradigm Technology Consulting LLC"

// KnownClient returns the canonical client name when the known-vendor
// pattern appears in the text, else "".
func KnownClient(text string) string {
	if knownClientPattern.MatchString(text) {
		return knownClientName
	}
	return ""
}

// Text extracts work and PTO entries from a flat block of document text
// using positional patterns. It never fails: patterns that find nothing
// yield empty lists. PTO entries carry zero hours; the reconciler resolves
// them downstream.
func Text(text, clientHint string, logger *slog.Logger) *TextResult {
	if logger == nil {
		logger = slog.Default()
	}

	result := &TextResult{}

	result.ClientName = KnownClient(text)
	if result.ClientName == "" {
		result.ClientName = clientHint
	}

	for _, layout := range workLayouts {
		matches := layout.pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		for _, match := range matches {
			entry, ok := buildWorkEntry(layout, match, result.ClientName, logger)
			if !ok {
				continue
			}
			result.WorkEntries = append(result.WorkEntries, entry)
		}
		logger.Debug("text: work layout matched", "layout", layout.name, "entries", len(result.WorkEntries))
		break
	}

	for _, match := range ptoPattern.FindAllStringSubmatch(text, -1) {
		parsed, err := dates.ParseCanonical(match[2])
		if err != nil {
			logger.Warn("text: skipping PTO entry with unparseable date", "date", match[2], "err", err)
			continue
		}
		result.PTOEntries = append(result.PTOEntries, Entry{
			Date:     dates.Canonical(parsed),
			Day:      dates.WeekdayCode(parsed),
			Activity: timesheet.ActivityPTO,
			Client:   result.ClientName,
		})
	}

	return result
}

func buildWorkEntry(layout workLayout, match []string, client string, logger *slog.Logger) (Entry, bool) {
	parsed, err := dates.ParseCanonical(match[layout.dateGroup])
	if err != nil {
		logger.Warn("text: skipping work entry with unparseable date",
			"layout", layout.name, "date", match[layout.dateGroup], "err", err)
		return Entry{}, false
	}

	hours, err := parseHours(match[layout.hoursGroup])
	if err != nil || hours == 0 {
		logger.Warn("text: skipping work entry with unusable hours",
			"layout", layout.name, "hours", match[layout.hoursGroup], "err", err)
		return Entry{}, false
	}

	entry := Entry{
		Date:     dates.Canonical(parsed),
		Day:      dates.WeekdayCode(parsed),
		Hours:    hours,
		Activity: timesheet.ActivityWork,
		Client:   client,
	}
	if layout.startGroup > 0 {
		entry.Start = match[layout.startGroup]
	}
	if layout.stopGroup > 0 {
		entry.Stop = match[layout.stopGroup]
	}
	return entry, true
}
