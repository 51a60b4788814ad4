package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"timesift/timesheet"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []timesheet.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(entryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		if err := writer.Write(entryRow(entry)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

var entryHeaders = []string{
	"Date", "Day", "Hours", "Activity", "Client", "Project",
	"EmployeeName", "EmployeeID", "SenderEmail",
}

func entryRow(entry timesheet.Entry) []string {
	return []string{
		entry.Date,
		entry.Day,
		fmt.Sprintf("%.2f", entry.Hours),
		string(entry.Activity),
		entry.Client,
		entry.Project,
		entry.EmployeeName,
		entry.EmployeeID,
		entry.SenderEmail,
	}
}
