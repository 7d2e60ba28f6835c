package timeutil

import "time"

const dayKeyLayout = "2006-01-02"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayKey renders the calendar day of value as an ISO date string, the
// grouping key shared by the aggregator and the stores.
func DayKey(value time.Time) string {
	return value.Format(dayKeyLayout)
}

// ParseDayKey parses an ISO date string in the local zone.
func ParseDayKey(value string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, value, time.Local)
}

// RangeDays lists every calendar day from from to to inclusive.
func RangeDays(from, to time.Time) []time.Time {
	out := make([]time.Time, 0, 32)
	for day := StartOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}
