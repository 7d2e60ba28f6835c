package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"timepunch/internal/timeutil"
	"timepunch/timeentry"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []timeentry.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"ID", "UserID", "Project", "Task", "Description", "StartTime", "EndTime", "DurationSeconds", "Billable", "TrackingType", "Status", "ManualEntry", "HourlyRate", "TotalAmount", "PendingSync"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		endTime := ""
		if !entry.EndTime.IsZero() {
			endTime = entry.EndTime.Format(time.RFC3339)
		}
		row := []string{
			entry.ID,
			entry.UserID,
			entry.ProjectName(),
			entry.Task.Display(),
			entry.Description,
			entry.StartTime.Format(time.RFC3339),
			endTime,
			strconv.Itoa(entry.Duration),
			strconv.FormatBool(entry.Billable),
			string(entry.TrackingType),
			string(entry.Status),
			strconv.FormatBool(entry.ManualEntry),
			fmt.Sprintf("%.2f", entry.HourlyRate),
			fmt.Sprintf("%.2f", entry.TotalAmount),
			strconv.FormatBool(entry.PendingSync),
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

func writeDailySeriesCSV(path string, series []DayBucket) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Date", "Hours", "BillableHours", "EntryCount"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, bucket := range series {
		row := []string{
			timeutil.DayKey(bucket.Date),
			fmt.Sprintf("%.2f", bucket.Hours),
			fmt.Sprintf("%.2f", bucket.BillableHours),
			strconv.Itoa(bucket.EntryCount),
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
