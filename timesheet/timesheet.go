package timesheet

import (
	"strings"
	"time"
)

// Activity classifies an entry as billable work or paid time off.
// An entry is always exactly one of the two.
type Activity string

const (
	ActivityWork Activity = "WORK"
	ActivityPTO  Activity = "PTO"
)

// Sentinel values used when identity resolution cannot supply a real name.
const (
	UnknownClient  = "Unknown Client"
	UnknownProject = "Unknown Project"
)

// Entry is the normalized timesheet record produced by the extraction
// pipeline. Dates are canonical MM/DD/YYYY strings, days three-letter
// uppercase weekday codes.
type Entry struct {
	Date         string    `json:"date"`
	Day          string    `json:"day"`
	Hours        float64   `json:"hours"`
	Activity     Activity  `json:"activity"`
	Client       string    `json:"client"`
	Project      string    `json:"project"`
	EmployeeName string    `json:"employee_name"`
	EmployeeID   string    `json:"employee_id"`
	SenderEmail  string    `json:"sender_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClassifyActivity normalizes a raw activity label. Any label containing
// "pto" (any case) is PTO; everything else, including the empty string,
// is WORK.
func ClassifyActivity(raw string) Activity {
	if strings.Contains(strings.ToLower(raw), "pto") {
		return ActivityPTO
	}
	return ActivityWork
}
