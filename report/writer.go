package report

import (
	"fmt"
	"strings"

	"timepunch/timeentry"
)

type Writer interface {
	Write(path string, entries []timeentry.Entry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteDailySeries writes the daily rollup in the requested format.
func WriteDailySeries(path, format string, series []DayBucket) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailySeriesCSV(path, series)
	case "excel", "xlsx":
		return writeDailySeriesExcel(path, series)
	default:
		return fmt.Errorf("unsupported output format for daily series: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
