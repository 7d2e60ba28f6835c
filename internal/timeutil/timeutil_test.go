package timeutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.Local)
	got := StartOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	a := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	b := time.Date(2026, 3, 1, 18, 30, 0, 0, time.Local)
	c := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if !SameDay(a, b) {
		t.Fatalf("expected same day for %v and %v", a, b)
	}
	if SameDay(a, c) {
		t.Fatalf("expected different days for %v and %v", a, c)
	}
}

func TestDayKeyRoundTrip(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 13, 25, 0, 0, time.Local)
	key := DayKey(input)
	if key != "2026-03-01" {
		t.Fatalf("expected 2026-03-01, got %q", key)
	}

	parsed, err := ParseDayKey(key)
	if err != nil {
		t.Fatalf("parse day key: %v", err)
	}
	if !SameDay(parsed, input) {
		t.Fatalf("expected %v on same day as %v", parsed, input)
	}
}

func TestRangeDays(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 2, 1, 0, 0, 0, time.Local)

	days := RangeDays(from, to)
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if DayKey(days[0]) != "2026-02-27" || DayKey(days[3]) != "2026-03-02" {
		t.Fatalf("unexpected range bounds: %v .. %v", days[0], days[3])
	}
	for i := 1; i < len(days); i++ {
		if !days[i].After(days[i-1]) {
			t.Fatalf("days not ascending at index %d", i)
		}
	}
}
