// Package dates normalizes the heterogeneous date representations found in
// timesheet documents and frontend payloads into a single canonical form.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the system's single at-rest date representation.
const CanonicalLayout = "01/02/2006"

// ParseError reports a string value that matched none of the supported
// date layouts.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse date %q (use formats like YYYY-MM-DD, MM/DD/YYYY, or ISO 8601)", e.Value)
}

// UnsupportedTypeError reports a value whose type cannot carry a date.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("date input must be a string, time.Time, timestamp, map, or slice, got %T (%v)", e.Value, e.Value)
}

// millisThreshold separates Unix timestamps in seconds from milliseconds.
// Anything above it is treated as milliseconds.
const millisThreshold = 1e10

// stringLayouts is tried in order; the first match wins.
var stringLayouts = []string{
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Normalize parses a date supplied in any of the accepted shapes:
// time.Time values, Unix timestamps in seconds or milliseconds, ISO-8601
// and common date strings, maps with year/month/day keys, and slices of at
// least three numeric components [year, month, day, ...]. Unrecognized
// shapes fail loudly rather than guessing.
func Normalize(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, &UnsupportedTypeError{Value: value}
	case time.Time:
		return v, nil
	case int:
		return fromTimestamp(float64(v))
	case int64:
		return fromTimestamp(float64(v))
	case float64:
		return fromTimestamp(v)
	case string:
		return fromString(v)
	case map[string]int:
		converted := make(map[string]any, len(v))
		for key, val := range v {
			converted[key] = val
		}
		return fromMap(converted)
	case map[string]any:
		return fromMap(v)
	case []int:
		converted := make([]any, len(v))
		for i, val := range v {
			converted[i] = val
		}
		return fromSlice(converted)
	case []float64:
		converted := make([]any, len(v))
		for i, val := range v {
			converted[i] = val
		}
		return fromSlice(converted)
	case []any:
		return fromSlice(v)
	default:
		return time.Time{}, &UnsupportedTypeError{Value: value}
	}
}

// Canonical formats a time as the canonical MM/DD/YYYY string.
func Canonical(t time.Time) string {
	return t.Format(CanonicalLayout)
}

// ParseCanonical parses a canonical MM/DD/YYYY string.
func ParseCanonical(s string) (time.Time, error) {
	parsed, err := time.Parse(CanonicalLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ParseError{Value: s}
	}
	return parsed, nil
}

// WeekdayCode returns the three-letter uppercase weekday code for a date.
// Weekdays are always derived from the date itself, never trusted from a
// source document's day column.
func WeekdayCode(t time.Time) string {
	return strings.ToUpper(t.Format("Mon"))
}

func fromTimestamp(value float64) (time.Time, error) {
	if value <= 0 {
		return time.Time{}, fmt.Errorf("invalid timestamp: %v", value)
	}
	if value > millisThreshold {
		value = value / 1000
	}
	sec := int64(value)
	nsec := int64((value - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec), nil
}

func fromString(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, &ParseError{Value: value}
	}

	candidate := stripTimezone(trimmed)
	for _, layout := range stringLayouts {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, &ParseError{Value: value}
}

// stripTimezone removes a timezone suffix from an ISO-8601 datetime string.
// The offset is dropped, not converted; timesheet dates are wall-clock dates.
func stripTimezone(value string) string {
	if !strings.Contains(value, "T") {
		return value
	}
	if i := strings.Index(value, "+"); i >= 0 {
		return value[:i]
	}
	if strings.HasSuffix(value, "Z") {
		return strings.TrimSuffix(value, "Z")
	}
	if strings.Count(value, "-") > 2 {
		// Negative offset: the last '-' after the date part starts it.
		for i := len(value) - 1; i > 10; i-- {
			if value[i] == '-' {
				return value[:i]
			}
		}
	}
	return value
}

func fromMap(value map[string]any) (time.Time, error) {
	year, okYear := numericField(value, "year")
	month, okMonth := numericField(value, "month")
	day, okDay := numericField(value, "day")
	if !okYear || !okMonth || !okDay {
		return time.Time{}, fmt.Errorf("date map must contain year, month, and day keys: %v", value)
	}

	hour, _ := numericField(value, "hour")
	minute, _ := numericField(value, "minute")
	second, _ := numericField(value, "second")

	return buildDate(year, month, day, hour, minute, second, value)
}

func fromSlice(value []any) (time.Time, error) {
	if len(value) < 3 {
		return time.Time{}, fmt.Errorf("date slice must have at least 3 elements [year, month, day]: %v", value)
	}

	components := make([]int, 6)
	for i := 0; i < len(value) && i < 6; i++ {
		n, ok := toInt(value[i])
		if !ok {
			return time.Time{}, fmt.Errorf("date slice element %d is not numeric: %v", i, value[i])
		}
		components[i] = n
	}

	return buildDate(components[0], components[1], components[2], components[3], components[4], components[5], value)
}

func buildDate(year, month, day, hour, minute, second int, original any) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date components in %v", original)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func numericField(value map[string]any, key string) (int, bool) {
	raw, ok := value[key]
	if !ok {
		return 0, false
	}
	return toInt(raw)
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
