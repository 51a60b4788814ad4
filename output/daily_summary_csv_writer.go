package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

func writeDailySummariesCSV(path string, summaries []DailySummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(summaryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, summary := range summaries {
		row := []string{
			summary.Date,
			summary.Day,
			fmt.Sprintf("%.2f", summary.WorkHours),
			fmt.Sprintf("%.2f", summary.PTOHours),
			fmt.Sprintf("%.2f", summary.TotalHours),
			strconv.Itoa(summary.EntryCount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

var summaryHeaders = []string{"Date", "Day", "WorkHours", "PTOHours", "TotalHours", "EntryCount"}
