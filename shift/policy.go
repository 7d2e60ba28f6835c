// Package shift derives a user's tracking type and the validation rules
// that apply to sessions of that type.
package shift

import (
	"strings"
	"time"

	"timepunch/timeentry"
)

// User is the record supplied by the external identity/team service.
type User struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Shift      string  `json:"shift"`
	HourlyRate float64 `json:"hourlyRate,omitempty"`
}

// Rules describe how sessions of a tracking type are validated and shown.
type Rules struct {
	TrackingType   timeentry.TrackingType
	MinGranularity time.Duration
	MaxSpan        time.Duration
	AllowMultiDay  bool
}

var rulesByType = map[timeentry.TrackingType]Rules{
	timeentry.TrackingHourly: {
		TrackingType:   timeentry.TrackingHourly,
		MinGranularity: time.Second,
		MaxSpan:        24 * time.Hour,
		AllowMultiDay:  false,
	},
	timeentry.TrackingDaily: {
		TrackingType:   timeentry.TrackingDaily,
		MinGranularity: time.Minute,
		MaxSpan:        24 * time.Hour,
		AllowMultiDay:  false,
	},
	timeentry.TrackingWeekly: {
		TrackingType:   timeentry.TrackingWeekly,
		MinGranularity: 15 * time.Minute,
		MaxSpan:        7 * 24 * time.Hour,
		AllowMultiDay:  true,
	},
	timeentry.TrackingMonthly: {
		TrackingType:   timeentry.TrackingMonthly,
		MinGranularity: 15 * time.Minute,
		MaxSpan:        31 * 24 * time.Hour,
		AllowMultiDay:  true,
	},
}

// ResolveTrackingType maps the user's configured shift to a tracking type.
// A user without a resolvable shift yields a ConfigurationError; callers
// that can tolerate it fall back to hourly and log the condition.
func ResolveTrackingType(user User) (timeentry.TrackingType, error) {
	if strings.TrimSpace(user.Shift) == "" {
		return "", &timeentry.ConfigurationError{UserID: user.ID, Reason: "no shift assigned"}
	}
	trackingType, ok := timeentry.ParseTrackingType(user.Shift)
	if !ok {
		return "", &timeentry.ConfigurationError{
			UserID: user.ID,
			Reason: "unrecognized shift " + strings.TrimSpace(user.Shift),
		}
	}
	return trackingType, nil
}

// RulesFor returns the validation rules for a tracking type. Unknown types
// degrade to the hourly rules.
func RulesFor(trackingType timeentry.TrackingType) Rules {
	if rules, ok := rulesByType[trackingType]; ok {
		return rules
	}
	return rulesByType[timeentry.TrackingHourly]
}

// Describe returns human-readable guidance for a tracking type. It is
// side-effect free.
func Describe(trackingType timeentry.TrackingType) string {
	switch trackingType {
	case timeentry.TrackingHourly:
		return "Hourly tracking: sessions are recorded to the second and must finish the same day."
	case timeentry.TrackingDaily:
		return "Daily tracking: sessions are recorded per day at minute granularity."
	case timeentry.TrackingWeekly:
		return "Weekly tracking: sessions are recorded in 15-minute blocks and may span days within one week."
	case timeentry.TrackingMonthly:
		return "Monthly tracking: sessions are recorded in 15-minute blocks against the calendar month."
	default:
		return "Unknown tracking type; hourly rules apply."
	}
}
