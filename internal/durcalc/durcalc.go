// Package durcalc centralizes the duration and billing arithmetic so every
// call site depends on one formula.
package durcalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"timepunch/timeentry"
)

// ElapsedSeconds returns the whole seconds between start and now, clamped
// to zero. A negative span signals clock skew; callers log it rather than
// fail.
func ElapsedSeconds(start, now time.Time) int {
	seconds := int(math.Floor(now.Sub(start).Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}

// FinalizeDuration computes the committed duration for a measured session.
func FinalizeDuration(start, end time.Time) int {
	return ElapsedSeconds(start, end)
}

// ParseManualDuration parses HH:MM:SS or HH:MM into seconds.
func ParseManualDuration(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, timeentry.NewValidationError("duration", "value is required")
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, timeentry.NewValidationError("duration", fmt.Sprintf("%q is not in HH:MM or HH:MM:SS form", trimmed))
	}

	values := make([]int, 0, 3)
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, timeentry.NewValidationError("duration", fmt.Sprintf("component %q is not numeric", part))
		}
		if value < 0 {
			return 0, timeentry.NewValidationError("duration", fmt.Sprintf("component %q is negative", part))
		}
		values = append(values, value)
	}

	if values[1] > 59 {
		return 0, timeentry.NewValidationError("duration", fmt.Sprintf("minutes component %d exceeds 59", values[1]))
	}
	seconds := values[0]*3600 + values[1]*60
	if len(values) == 3 {
		if values[2] > 59 {
			return 0, timeentry.NewValidationError("duration", fmt.Sprintf("seconds component %d exceeds 59", values[2]))
		}
		seconds += values[2]
	}
	return seconds, nil
}

// FormatDuration renders seconds as HH:MM:SS. It round-trips through
// ParseManualDuration.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// BillableAmount computes (seconds/3600) * rate rounded half-up to two
// decimal places.
func BillableAmount(durationSeconds int, hourlyRate float64) float64 {
	if durationSeconds <= 0 || hourlyRate <= 0 {
		return 0
	}
	amount := float64(durationSeconds) / 3600.0 * hourlyRate
	return math.Floor(amount*100+0.5) / 100
}

// Hours converts seconds into fractional hours for reporting.
func Hours(durationSeconds int) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return float64(durationSeconds) / 3600.0
}
