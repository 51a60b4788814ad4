// Package identity resolves employee, client, and project names from a
// read-only mapping keyed by normalized sender email.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"timesift/timesheet"
)

// ProjectRef is one client-to-project assignment for an employee.
type ProjectRef struct {
	Project string  `json:"project"`
	Hours   float64 `json:"hours"`
}

// Employee is the identity record behind one sender address.
type Employee struct {
	Name       string                `json:"name"`
	EmployeeID string                `json:"employee_id"`
	Projects   map[string]ProjectRef `json:"projects"`
}

// Mapping is a snapshot of sender-email identities, loaded once per batch
// and never mutated during it.
type Mapping map[string]Employee

// Load reads a mapping snapshot from a JSON file.
func Load(path string) (Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity mapping %s: %w", path, err)
	}

	var mapping Mapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("parse identity mapping %s: %w", path, err)
	}
	return mapping, nil
}

// CleanEmail strips an angle-bracket wrapper ("Name <a@b.com>") and
// lowercases the address.
func CleanEmail(address string) string {
	open := strings.Index(address, "<")
	close := strings.Index(address, ">")
	if open >= 0 && close > open {
		address = address[open+1 : close]
	}
	return strings.ToLower(strings.TrimSpace(address))
}

// LocalPart returns the address substring before the '@'.
func LocalPart(address string) string {
	cleaned := CleanEmail(address)
	if at := strings.Index(cleaned, "@"); at >= 0 {
		return cleaned[:at]
	}
	return cleaned
}

// EmployeeName resolves the display name for a sender, falling back to the
// address local part when the sender is unmapped.
func (m Mapping) EmployeeName(sender string) string {
	if employee, ok := m[CleanEmail(sender)]; ok && employee.Name != "" {
		return employee.Name
	}
	return LocalPart(sender)
}

// EmployeeID resolves the employee identifier for a sender, falling back to
// the address local part when the sender is unmapped.
func (m Mapping) EmployeeID(sender string) string {
	if employee, ok := m[CleanEmail(sender)]; ok && employee.EmployeeID != "" {
		return employee.EmployeeID
	}
	return LocalPart(sender)
}

// clientKey normalizes a client display name into the mapping's project key
// form. The vendor suffix is dropped so pattern-matched long names and short
// mapping keys compare equal.
func clientKey(clientName string) string {
	key := strings.ToLower(clientName)
	key = strings.ReplaceAll(key, " technology consulting llc", "")
	return strings.TrimSpace(key)
}

// ProjectFor resolves the project assigned to a sender for the given client,
// or the sentinel project when either side is unmapped.
func (m Mapping) ProjectFor(sender, clientName string) string {
	if len(m) == 0 || clientName == "" {
		return timesheet.UnknownProject
	}

	employee, ok := m[CleanEmail(sender)]
	if !ok {
		return timesheet.UnknownProject
	}

	ref, ok := employee.Projects[clientKey(clientName)]
	if !ok || ref.Project == "" {
		return timesheet.UnknownProject
	}
	return ref.Project
}

// ClientForProject finds the client whose mapped project display name matches
// the extracted project name, case and surrounding-whitespace insensitive.
// The client key is returned title-cased for display.
func (m Mapping) ClientForProject(projectName string) string {
	wanted := strings.ToLower(strings.TrimSpace(projectName))
	if wanted == "" {
		return timesheet.UnknownClient
	}

	titler := cases.Title(language.English)
	for _, employee := range m {
		for client, ref := range employee.Projects {
			if ref.Project == "" {
				continue
			}
			if strings.ToLower(strings.TrimSpace(ref.Project)) == wanted {
				return titler.String(client)
			}
		}
	}
	return timesheet.UnknownClient
}

// PTOHoursFor returns the mapped PTO hours for a sender/client pair, or
// false when no positive mapping exists.
func (m Mapping) PTOHoursFor(sender, clientName string) (float64, bool) {
	employee, ok := m[CleanEmail(sender)]
	if !ok {
		return 0, false
	}
	ref, ok := employee.Projects[clientKey(clientName)]
	if !ok || ref.Hours <= 0 {
		return 0, false
	}
	return ref.Hours, true
}
