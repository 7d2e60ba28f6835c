// Package report rolls committed time entries up into the figures consumed
// by reporting views, and writes them to CSV or Excel.
package report

import (
	"sort"
	"time"

	"timepunch/internal/durcalc"
	"timepunch/internal/timeutil"
	"timepunch/timeentry"
)

// Totals is the top-level rollup over a set of entries. Pending
// (offline-fallback) entries are counted as confirmed; PendingCount lets
// the reporting layer surface how much of the data is still unsynced.
type Totals struct {
	TotalHours    float64 `json:"totalHours"`
	BillableHours float64 `json:"billableHours"`
	Revenue       float64 `json:"revenue"`
	EntryCount    int     `json:"entryCount"`
	PendingCount  int     `json:"pendingCount"`
}

// ProjectRollup aggregates one project bucket.
type ProjectRollup struct {
	Hours         float64 `json:"hours"`
	BillableHours float64 `json:"billableHours"`
	Revenue       float64 `json:"revenue"`
	EntryCount    int     `json:"entryCount"`
}

// UserRollup aggregates one user bucket. Productivity is the billable
// share of tracked time as a percentage.
type UserRollup struct {
	Hours         float64 `json:"hours"`
	BillableHours float64 `json:"billableHours"`
	Productivity  float64 `json:"productivity"`
}

// DayBucket is one point of the daily series. Days without entries carry
// explicit zeros.
type DayBucket struct {
	Date          time.Time `json:"date"`
	Hours         float64   `json:"hours"`
	BillableHours float64   `json:"billableHours"`
	EntryCount    int       `json:"entryCount"`
}

// BuildTotals sums hours, billable hours, and revenue over the entries.
func BuildTotals(entries []timeentry.Entry) Totals {
	totals := Totals{}
	for _, entry := range entries {
		hours := durcalc.Hours(entry.Duration)
		totals.TotalHours += hours
		totals.EntryCount++
		if entry.Billable {
			totals.BillableHours += hours
			totals.Revenue += entry.TotalAmount
		}
		if entry.PendingSync {
			totals.PendingCount++
		}
	}
	return totals
}

// ByProject groups entries by resolved project name. Entries whose project
// reference never resolved land in the "Unknown Project" bucket.
func ByProject(entries []timeentry.Entry) map[string]ProjectRollup {
	out := make(map[string]ProjectRollup)
	for _, entry := range entries {
		bucket := out[entry.ProjectName()]
		hours := durcalc.Hours(entry.Duration)
		bucket.Hours += hours
		bucket.EntryCount++
		if entry.Billable {
			bucket.BillableHours += hours
			bucket.Revenue += entry.TotalAmount
		}
		out[entry.ProjectName()] = bucket
	}
	return out
}

// ByUser groups entries by user id and derives each user's productivity.
func ByUser(entries []timeentry.Entry) map[string]UserRollup {
	out := make(map[string]UserRollup)
	for _, entry := range entries {
		bucket := out[entry.UserID]
		hours := durcalc.Hours(entry.Duration)
		bucket.Hours += hours
		if entry.Billable {
			bucket.BillableHours += hours
		}
		out[entry.UserID] = bucket
	}

	for userID, bucket := range out {
		bucket.Productivity = percentage(bucket.BillableHours, bucket.Hours)
		out[userID] = bucket
	}
	return out
}

// DailySeries buckets entries into the trailing windowDays calendar days
// ending on the day of now, chronologically ascending with explicit zero
// days.
func DailySeries(entries []timeentry.Entry, windowDays int, now time.Time) []DayBucket {
	if windowDays <= 0 {
		return []DayBucket{}
	}

	end := timeutil.StartOfDay(now)
	start := end.AddDate(0, 0, -(windowDays - 1))

	byDay := make(map[string]DayBucket, windowDays)
	for _, day := range timeutil.RangeDays(start, end) {
		byDay[timeutil.DayKey(day)] = DayBucket{Date: day}
	}

	for _, entry := range entries {
		key := timeutil.DayKey(entry.StartTime)
		bucket, ok := byDay[key]
		if !ok {
			continue
		}
		hours := durcalc.Hours(entry.Duration)
		bucket.Hours += hours
		bucket.EntryCount++
		if entry.Billable {
			bucket.BillableHours += hours
		}
		byDay[key] = bucket
	}

	out := make([]DayBucket, 0, windowDays)
	for _, day := range timeutil.RangeDays(start, end) {
		out = append(out, byDay[timeutil.DayKey(day)])
	}
	return out
}

// ProductivityScore is the billable share of all tracked time as a
// percentage; zero when nothing was tracked.
func ProductivityScore(entries []timeentry.Entry) float64 {
	totals := BuildTotals(entries)
	return percentage(totals.BillableHours, totals.TotalHours)
}

func percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// SortedProjectNames returns the grouping keys in a stable order for
// rendering.
func SortedProjectNames(rollups map[string]ProjectRollup) []string {
	names := make([]string, 0, len(rollups))
	for name := range rollups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedUserIDs returns the user keys in a stable order for rendering.
func SortedUserIDs(rollups map[string]UserRollup) []string {
	ids := make([]string, 0, len(rollups))
	for id := range rollups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
