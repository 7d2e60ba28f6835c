package storage

import (
	"path/filepath"
	"testing"
	"time"

	"timepunch/timeentry"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "timepunch_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(id, userID string, start time.Time) timeentry.Entry {
	return timeentry.Entry{
		ID:           id,
		UserID:       userID,
		Project:      timeentry.RefNamed("p-1", "Website Redesign"),
		Description:  "wireframes",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Duration:     3600,
		Billable:     true,
		TrackingType: timeentry.TrackingHourly,
		Status:       timeentry.StatusCompleted,
		HourlyRate:   50,
		TotalAmount:  50,
	}
}

func mustParseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestSQLiteStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	entry := testEntry("e-1", "u-17", mustParseRFC3339(t, "2026-08-10T09:00:00+02:00"))
	entry.Task = timeentry.RefID("t-9")
	entry.PendingSync = true

	if err := store.UpsertEntry(entry); err != nil {
		t.Fatalf("upsert entry: %v", err)
	}

	loaded, found, err := store.GetEntryByID("e-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !found {
		t.Fatalf("expected entry e-1 to exist")
	}
	if !loaded.StartTime.Equal(entry.StartTime) || !loaded.EndTime.Equal(entry.EndTime) {
		t.Fatalf("timestamps did not round-trip: %+v", loaded)
	}
	if loaded.Project.Display() != "Website Redesign" || loaded.Task.Display() != "t-9" {
		t.Fatalf("references did not round-trip: %+v", loaded)
	}
	if !loaded.PendingSync || !loaded.Billable || loaded.TotalAmount != 50 {
		t.Fatalf("flags or amount did not round-trip: %+v", loaded)
	}

	// Replacing the same id updates in place.
	entry.Description = "wireframes, revised"
	if err := store.UpsertEntry(entry); err != nil {
		t.Fatalf("upsert replacement: %v", err)
	}
	loaded, _, err = store.GetEntryByID("e-1")
	if err != nil {
		t.Fatalf("get replacement: %v", err)
	}
	if loaded.Description != "wireframes, revised" {
		t.Fatalf("expected replaced description, got %q", loaded.Description)
	}
}

func TestSQLiteStore_GetMissingEntry(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, found, err := store.GetEntryByID("nope")
	if err != nil {
		t.Fatalf("get missing entry: %v", err)
	}
	if found {
		t.Fatalf("expected missing entry to report found=false")
	}
}

func TestSQLiteStore_UpsertRequiresID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.UpsertEntry(timeentry.Entry{UserID: "u-1"}); err == nil {
		t.Fatalf("expected error for entry without id")
	}
}

func TestSQLiteStore_ListEntriesFilters(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	first := testEntry("e-1", "u-17", mustParseRFC3339(t, "2026-08-10T09:00:00+02:00"))
	second := testEntry("e-2", "u-17", mustParseRFC3339(t, "2026-08-12T09:00:00+02:00"))
	second.Project = timeentry.RefNamed("p-2", "Internal Tools")
	third := testEntry("e-3", "u-18", mustParseRFC3339(t, "2026-08-11T09:00:00+02:00"))
	third.Status = timeentry.StatusInProgress

	for _, entry := range []timeentry.Entry{first, second, third} {
		if err := store.UpsertEntry(entry); err != nil {
			t.Fatalf("upsert %s: %v", entry.ID, err)
		}
	}

	all, err := store.ListEntries(ListFilters{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].ID != "e-1" || all[1].ID != "e-3" || all[2].ID != "e-2" {
		t.Fatalf("entries not ordered by start time: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}

	byUser, err := store.ListEntries(ListFilters{UserID: "u-17"})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected 2 entries for u-17, got %d", len(byUser))
	}

	byProject, err := store.ListEntries(ListFilters{Project: "Internal Tools"})
	if err != nil {
		t.Fatalf("list by project: %v", err)
	}
	if len(byProject) != 1 || byProject[0].ID != "e-2" {
		t.Fatalf("unexpected project filter result: %+v", byProject)
	}

	byStatus, err := store.ListEntries(ListFilters{Status: timeentry.StatusInProgress})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != "e-3" {
		t.Fatalf("unexpected status filter result: %+v", byStatus)
	}

	byRange, err := store.ListEntries(ListFilters{
		StartDate: mustParseRFC3339(t, "2026-08-11T00:00:00+02:00"),
		EndDate:   mustParseRFC3339(t, "2026-08-11T00:00:00+02:00"),
	})
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != "e-3" {
		t.Fatalf("unexpected range filter result: %+v", byRange)
	}
}

func TestSQLiteStore_DeleteEntry(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	entry := testEntry("e-1", "u-17", mustParseRFC3339(t, "2026-08-10T09:00:00+02:00"))
	if err := store.UpsertEntry(entry); err != nil {
		t.Fatalf("upsert entry: %v", err)
	}

	deleted, err := store.DeleteEntry("e-1")
	if err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to report a removed row")
	}

	deleted, err = store.DeleteEntry("e-1")
	if err != nil {
		t.Fatalf("delete missing entry: %v", err)
	}
	if deleted {
		t.Fatalf("expected second delete to remove nothing")
	}
}

func TestSQLiteStore_PendingQueueFIFO(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	base := mustParseRFC3339(t, "2026-08-10T09:00:00+02:00")

	for i, entryID := range []string{"local-a", "local-b", "local-c"} {
		if err := store.EnqueuePending(entryID, "create", base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("enqueue %s: %v", entryID, err)
		}
	}

	pending, err := store.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 queued ops, got %d", len(pending))
	}
	if pending[0].EntryID != "local-a" || pending[2].EntryID != "local-c" {
		t.Fatalf("queue not FIFO: %+v", pending)
	}

	if err := store.DequeuePending(pending[0].Seq); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	pending, err = store.ListPending()
	if err != nil {
		t.Fatalf("list pending after dequeue: %v", err)
	}
	if len(pending) != 2 || pending[0].EntryID != "local-b" {
		t.Fatalf("unexpected queue after dequeue: %+v", pending)
	}
}

func TestSQLiteStore_MarkSynced(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	start := mustParseRFC3339(t, "2026-08-10T09:00:00+02:00")

	local := testEntry("local-abc", "u-17", start)
	local.PendingSync = true
	if err := store.UpsertEntry(local); err != nil {
		t.Fatalf("upsert local entry: %v", err)
	}
	if err := store.EnqueuePending(local.ID, "stop", start); err != nil {
		t.Fatalf("enqueue local entry: %v", err)
	}

	confirmed := testEntry("srv-900", "u-17", start)
	if err := store.MarkSynced(local.ID, confirmed); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	if _, found, err := store.GetEntryByID(local.ID); err != nil || found {
		t.Fatalf("expected local row to be gone (found=%t, err=%v)", found, err)
	}

	loaded, found, err := store.GetEntryByID("srv-900")
	if err != nil || !found {
		t.Fatalf("expected confirmed row (found=%t, err=%v)", found, err)
	}
	if loaded.PendingSync {
		t.Fatalf("confirmed entry still flagged pending")
	}

	pending, err := store.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after sync, got %+v", pending)
	}
}

func TestSQLiteStore_MarkSyncedRollsBackOnBadConfirmation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	start := mustParseRFC3339(t, "2026-08-10T09:00:00+02:00")

	local := testEntry("local-abc", "u-17", start)
	local.PendingSync = true
	if err := store.UpsertEntry(local); err != nil {
		t.Fatalf("upsert local entry: %v", err)
	}
	if err := store.EnqueuePending(local.ID, "stop", start); err != nil {
		t.Fatalf("enqueue local entry: %v", err)
	}

	// A confirmation without an id cannot be written; the swap must leave
	// both the local row and its queued op in place.
	if err := store.MarkSynced(local.ID, timeentry.Entry{}); err == nil {
		t.Fatalf("expected error for confirmation without id")
	}

	if _, found, err := store.GetEntryByID(local.ID); err != nil || !found {
		t.Fatalf("local row must survive a failed swap (found=%t, err=%v)", found, err)
	}
	pending, err := store.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("queued op must survive a failed swap, got %+v", pending)
	}
}

func TestSQLiteStore_MarkSyncedRejectsServerID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.MarkSynced("srv-1", timeentry.Entry{ID: "srv-2"}); err == nil {
		t.Fatalf("expected error for non-local id")
	}
}
