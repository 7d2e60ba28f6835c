// Package timeentry defines the canonical record of a unit of tracked work
// and the error taxonomy shared by the timer, sync, and reporting layers.
package timeentry

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrackingType is the granularity policy assigned to a user's shift.
type TrackingType string

const (
	TrackingHourly  TrackingType = "hourly"
	TrackingDaily   TrackingType = "daily"
	TrackingWeekly  TrackingType = "weekly"
	TrackingMonthly TrackingType = "monthly"
)

func (t TrackingType) Valid() bool {
	switch t {
	case TrackingHourly, TrackingDaily, TrackingWeekly, TrackingMonthly:
		return true
	}
	return false
}

// ParseTrackingType normalizes a configured shift value into a TrackingType.
func ParseTrackingType(value string) (TrackingType, bool) {
	t := TrackingType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Status is the lifecycle state of a persisted entry.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// LocalIDPrefix marks ids generated by the offline fallback path. Ids with
// this prefix have never been confirmed by the remote service.
const LocalIDPrefix = "local-"

// NewLocalID returns a locally-scoped entry id distinguishable from
// server-issued ids.
func NewLocalID() string {
	return LocalIDPrefix + uuid.New().String()
}

// IsLocalID reports whether the id was generated by the offline fallback.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// Entry is the canonical time entry record exchanged with the remote
// service and consumed by the aggregator.
type Entry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Project      Ref          `json:"project"`
	Task         Ref          `json:"task,omitzero"`
	Description  string       `json:"description"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      time.Time    `json:"endTime,omitzero"`
	Duration     int          `json:"duration"`
	Billable     bool         `json:"billable"`
	TrackingType TrackingType `json:"trackingType"`
	Status       Status       `json:"status"`
	ManualEntry  bool         `json:"isManualEntry"`
	HourlyRate   float64      `json:"hourlyRate,omitempty"`
	TotalAmount  float64      `json:"totalAmount,omitempty"`
	PendingSync  bool         `json:"pendingSync,omitempty"`
}

// Active reports whether the entry still holds the user's running session.
func (e Entry) Active() bool {
	return e.Status == StatusInProgress || e.Status == StatusPaused
}

// ProjectName returns the resolved project name, falling back to a sentinel
// bucket when only a bare id is known.
func (e Entry) ProjectName() string {
	if name := e.Project.Display(); name != "" {
		return name
	}
	return UnknownProject
}

// UnknownProject is the grouping bucket for entries whose project reference
// never resolved to a name.
const UnknownProject = "Unknown Project"
