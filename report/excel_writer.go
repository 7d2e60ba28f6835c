package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"timepunch/internal/timeutil"
	"timepunch/timeentry"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []timeentry.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{"ID", "UserID", "Project", "Task", "Description", "StartTime", "EndTime", "DurationSeconds", "Billable", "TrackingType", "Status", "ManualEntry", "HourlyRate", "TotalAmount", "PendingSync"}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, entry := range entries {
		row := i + 2
		endTime := ""
		if !entry.EndTime.IsZero() {
			endTime = entry.EndTime.Format(time.RFC3339)
		}
		values := []string{
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

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeDailySeriesExcel(path string, series []DayBucket) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{"Date", "Hours", "BillableHours", "EntryCount"}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, bucket := range series {
		row := i + 2
		values := []string{
			timeutil.DayKey(bucket.Date),
			fmt.Sprintf("%.2f", bucket.Hours),
			fmt.Sprintf("%.2f", bucket.BillableHours),
			strconv.Itoa(bucket.EntryCount),
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
