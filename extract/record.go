package extract

import (
	"sort"
	"strings"
)

// Record is one row of a tabular source, keyed by normalized header name.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// Get returns the first non-missing value for the given header keys.
func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		normalized := normalizeHeader(key)
		if value, ok := r.Values[normalized]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Headers returns the record's normalized header names, sorted for
// deterministic iteration.
func (r Record) Headers() []string {
	headers := make([]string, 0, len(r.Values))
	for header := range r.Values {
		headers = append(headers, header)
	}
	sort.Strings(headers)
	return headers
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
