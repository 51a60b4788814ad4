// Package reconcile merges extractor output with identity lookups into the
// final canonical entry list.
package reconcile

import (
	"log/slog"
	"time"

	"timesift/extract"
	"timesift/identity"
	"timesift/timesheet"
)

// DefaultPTOHours is the uniform fallback applied when no PTO-hours lookup
// succeeds. It is a fixed policy, not a guess.
const DefaultPTOHours = 8.0

// PTOHoursSource resolves the daily PTO hours for an employee on a project.
type PTOHoursSource interface {
	PTOHours(employeeID, project, client string) (float64, error)
}

// Input is one document's raw extraction output plus its sender metadata.
// ClientName carries a pattern-matched or column-supplied client when the
// extractor found one; ProjectName carries the grid-extracted project.
type Input struct {
	Sender      string
	ClientName  string
	ProjectName string
	WorkEntries []extract.Entry
	PTOEntries  []extract.Entry
}

// Enrich resolves identity, fills client/project defaults, resolves PTO
// hours, deduplicates PTO entries by date, and stamps each record. The
// returned slice lists work entries first, then PTO entries.
func Enrich(input Input, mapping identity.Mapping, ptoSource PTOHoursSource, logger *slog.Logger) []timesheet.Entry {
	if logger == nil {
		logger = slog.Default()
	}

	senderEmail := identity.CleanEmail(input.Sender)
	employeeName := mapping.EmployeeName(input.Sender)
	employeeID := mapping.EmployeeID(input.Sender)

	clientName := input.ClientName
	if clientName == "" && input.ProjectName != "" {
		clientName = mapping.ClientForProject(input.ProjectName)
	}
	if clientName == "" {
		clientName = timesheet.UnknownClient
	}

	projectName := input.ProjectName
	if projectName == "" {
		projectName = mapping.ProjectFor(input.Sender, clientName)
	}

	logger.Debug("reconcile: resolved identity",
		"sender", senderEmail,
		"employee", employeeName,
		"client", clientName,
		"project", projectName,
	)

	now := time.Now().UTC()
	entries := make([]timesheet.Entry, 0, len(input.WorkEntries)+len(input.PTOEntries))

	for _, raw := range input.WorkEntries {
		entries = append(entries, finalize(raw, clientName, projectName, employeeName, employeeID, senderEmail, now))
	}

	ptoDates := make(map[string]bool, len(input.PTOEntries))
	for _, raw := range input.PTOEntries {
		if ptoDates[raw.Date] {
			logger.Warn("reconcile: duplicate PTO date dropped", "date", raw.Date, "sender", senderEmail)
			continue
		}
		ptoDates[raw.Date] = true

		if raw.Hours == 0 {
			raw.Hours = resolvePTOHours(ptoSource, mapping, input.Sender, employeeID, projectName, clientName, logger)
		}
		entries = append(entries, finalize(raw, clientName, projectName, employeeName, employeeID, senderEmail, now))
	}

	return entries
}

// resolvePTOHours consults the store-backed lookup first, then the identity
// mapping's per-project hours; any miss yields the uniform default.
func resolvePTOHours(source PTOHoursSource, mapping identity.Mapping, sender, employeeID, project, client string, logger *slog.Logger) float64 {
	if source != nil {
		hours, err := source.PTOHours(employeeID, project, client)
		if err == nil && hours > 0 {
			return hours
		}
		logger.Warn("reconcile: PTO hours lookup failed",
			"employee_id", employeeID,
			"project", project,
			"err", err,
		)
	}
	if hours, ok := mapping.PTOHoursFor(sender, client); ok {
		return hours
	}
	return DefaultPTOHours
}

func finalize(raw extract.Entry, clientName, projectName, employeeName, employeeID, senderEmail string, createdAt time.Time) timesheet.Entry {
	client := raw.Client
	if client == "" {
		client = clientName
	}
	project := raw.Project
	if project == "" {
		project = projectName
	}

	return timesheet.Entry{
		Date:         raw.Date,
		Day:          raw.Day,
		Hours:        raw.Hours,
		Activity:     raw.Activity,
		Client:       client,
		Project:      project,
		EmployeeName: employeeName,
		EmployeeID:   employeeID,
		SenderEmail:  senderEmail,
		CreatedAt:    createdAt,
	}
}
