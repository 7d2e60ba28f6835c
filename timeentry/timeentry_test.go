package timeentry

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseTrackingType(t *testing.T) {
	t.Parallel()

	if got, ok := ParseTrackingType(" Hourly "); !ok || got != TrackingHourly {
		t.Fatalf("expected hourly, got %q (ok=%t)", got, ok)
	}
	if _, ok := ParseTrackingType("fortnightly"); ok {
		t.Fatalf("expected rejection of unknown tracking type")
	}
}

func TestLocalIDs(t *testing.T) {
	t.Parallel()

	id := NewLocalID()
	if !IsLocalID(id) {
		t.Fatalf("generated id %q not recognized as local", id)
	}
	if IsLocalID("srv-12345") {
		t.Fatalf("server id misclassified as local")
	}

	other := NewLocalID()
	if id == other {
		t.Fatalf("local ids must be unique, got %q twice", id)
	}
}

func TestEntry_ProjectNameFallsBackToUnknown(t *testing.T) {
	t.Parallel()

	entry := Entry{}
	if got := entry.ProjectName(); got != UnknownProject {
		t.Fatalf("expected %q, got %q", UnknownProject, got)
	}

	entry.Project = RefNamed("p-1", "Internal Tools")
	if got := entry.ProjectName(); got != "Internal Tools" {
		t.Fatalf("expected resolved name, got %q", got)
	}
}

func TestEntry_Active(t *testing.T) {
	t.Parallel()

	if !(Entry{Status: StatusInProgress}).Active() {
		t.Fatalf("in-progress entry should be active")
	}
	if !(Entry{Status: StatusPaused}).Active() {
		t.Fatalf("paused entry should be active")
	}
	if (Entry{Status: StatusCompleted}).Active() {
		t.Fatalf("completed entry should not be active")
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	transport := &TransportError{Op: "POST /api/time-entries/start", Err: errors.New("connection refused")}
	wrapped := fmt.Errorf("start timer: %w", transport)
	if !IsTransport(wrapped) {
		t.Fatalf("wrapped transport error not classified")
	}
	if IsRemoteRejection(wrapped) {
		t.Fatalf("transport error misclassified as rejection")
	}

	rejection := &RemoteRejectionError{Op: "POST /api/time-entries", StatusCode: 422, Code: "INVALID_PROJECT", Message: "unknown project"}
	if !IsRemoteRejection(rejection) {
		t.Fatalf("rejection not classified")
	}
	if IsTransport(rejection) {
		t.Fatalf("rejection misclassified as transport failure")
	}
}
