// Package storage persists committed time entries and the pending-sync
// queue in a local SQLite database.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"timepunch/internal/timeutil"
	"timepunch/timeentry"
)

type SQLiteStore struct {
	db *sql.DB
}

// PendingOp is one queued persistence operation awaiting the remote
// service, ordered FIFO by creation time.
type PendingOp struct {
	Seq       int64
	EntryID   string
	Operation string
	CreatedAt time.Time
}

// ListFilters narrows ListEntries. Zero values mean "no filter".
type ListFilters struct {
	UserID    string
	Project   string
	Status    timeentry.Status
	StartDate time.Time
	EndDate   time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS time_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	project_id TEXT NOT NULL DEFAULT '',
	project_name TEXT NOT NULL DEFAULT '',
	project_resolved INTEGER NOT NULL DEFAULT 0,
	task_id TEXT NOT NULL DEFAULT '',
	task_name TEXT NOT NULL DEFAULT '',
	task_resolved INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL DEFAULT '',
	duration INTEGER NOT NULL DEFAULT 0 CHECK(duration >= 0),
	billable INTEGER NOT NULL DEFAULT 0,
	tracking_type TEXT NOT NULL,
	status TEXT NOT NULL,
	manual_entry INTEGER NOT NULL DEFAULT 0,
	hourly_rate REAL NOT NULL DEFAULT 0,
	total_amount REAL NOT NULL DEFAULT 0,
	pending_sync INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_time_entries_user ON time_entries(user_id, start_time);

CREATE TABLE IF NOT EXISTS pending_sync (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const entryColumns = `
	id,
	user_id,
	project_id,
	project_name,
	project_resolved,
	task_id,
	task_name,
	task_resolved,
	description,
	start_time,
	end_time,
	duration,
	billable,
	tracking_type,
	status,
	manual_entry,
	hourly_rate,
	total_amount,
	pending_sync`

// UpsertEntry writes the entry, replacing any existing row with the same id.
func (s *SQLiteStore) UpsertEntry(entry timeentry.Entry) error {
	return upsertEntry(s.db, entry)
}

// execer lets the entry upsert run against either the pool or an open
// transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertEntry(db execer, entry timeentry.Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("entry id is required")
	}

	const stmt = `
INSERT OR REPLACE INTO time_entries (` + entryColumns + `
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	endTime := ""
	if !entry.EndTime.IsZero() {
		endTime = entry.EndTime.Format(time.RFC3339)
	}

	_, err := db.Exec(
		stmt,
		entry.ID,
		entry.UserID,
		entry.Project.ID,
		entry.Project.Name,
		boolToInt(entry.Project.Resolved),
		entry.Task.ID,
		entry.Task.Name,
		boolToInt(entry.Task.Resolved),
		entry.Description,
		entry.StartTime.Format(time.RFC3339),
		endTime,
		entry.Duration,
		boolToInt(entry.Billable),
		string(entry.TrackingType),
		string(entry.Status),
		boolToInt(entry.ManualEntry),
		entry.HourlyRate,
		entry.TotalAmount,
		boolToInt(entry.PendingSync),
	)
	if err != nil {
		return fmt.Errorf("upsert time entry %s: %w", entry.ID, err)
	}
	return nil
}

// GetEntryByID returns one entry. The second return value is false when no
// row exists.
func (s *SQLiteStore) GetEntryByID(id string) (timeentry.Entry, bool, error) {
	const query = `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ?;`

	entry, err := scanEntry(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timeentry.Entry{}, false, nil
		}
		return timeentry.Entry{}, false, fmt.Errorf("query time entry %s: %w", id, err)
	}
	return entry, true, nil
}

// ListEntries returns entries matching the filters ordered by start time.
func (s *SQLiteStore) ListEntries(filters ListFilters) ([]timeentry.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries`
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filters.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filters.UserID)
	}
	if filters.Project != "" {
		conditions = append(conditions, "(project_name = ? OR project_id = ?)")
		args = append(args, filters.Project, filters.Project)
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filters.Status))
	}
	if !filters.StartDate.IsZero() {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, timeutil.StartOfDay(filters.StartDate).Format(time.RFC3339))
	}
	if !filters.EndDate.IsZero() {
		conditions = append(conditions, "start_time < ?")
		args = append(args, timeutil.StartOfDay(filters.EndDate).AddDate(0, 0, 1).Format(time.RFC3339))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time, id;"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timeentry.Entry, 0, 64)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes the row with the given id.
func (s *SQLiteStore) DeleteEntry(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete time entry %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

// EnqueuePending records a persistence operation awaiting the remote
// service.
func (s *SQLiteStore) EnqueuePending(entryID, operation string, createdAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO pending_sync (entry_id, operation, created_at) VALUES (?, ?, ?);`,
		entryID,
		operation,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("enqueue pending sync for %s: %w", entryID, err)
	}
	return nil
}

// ListPending returns queued operations FIFO by creation time.
func (s *SQLiteStore) ListPending() ([]PendingOp, error) {
	rows, err := s.db.Query(`SELECT seq, entry_id, operation, created_at FROM pending_sync ORDER BY seq;`)
	if err != nil {
		return nil, fmt.Errorf("query pending sync queue: %w", err)
	}
	defer rows.Close()

	ops := make([]PendingOp, 0, 16)
	for rows.Next() {
		var (
			op         PendingOp
			createdRaw string
		)
		if err := rows.Scan(&op.Seq, &op.EntryID, &op.Operation, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan pending sync row: %w", err)
		}
		op.CreatedAt, err = time.Parse(time.RFC3339Nano, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse pending created_at %q: %w", createdRaw, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync queue: %w", err)
	}
	return ops, nil
}

// DequeuePending removes one queued operation after a successful retry.
func (s *SQLiteStore) DequeuePending(seq int64) error {
	if _, err := s.db.Exec(`DELETE FROM pending_sync WHERE seq = ?;`, seq); err != nil {
		return fmt.Errorf("dequeue pending sync %d: %w", seq, err)
	}
	return nil
}

// MarkSynced swaps a locally-generated entry for its server-confirmed form
// and drops any queued operations for the local id, in one transaction.
func (s *SQLiteStore) MarkSynced(localID string, confirmed timeentry.Entry) error {
	if !timeentry.IsLocalID(localID) {
		return fmt.Errorf("entry %s is not a local fallback id", localID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM time_entries WHERE id = ?;`, localID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop local entry %s: %w", localID, err)
	}
	if _, err := tx.Exec(`DELETE FROM pending_sync WHERE entry_id = ?;`, localID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop pending ops for %s: %w", localID, err)
	}
	confirmed.PendingSync = false
	if err := upsertEntry(tx, confirmed); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("write confirmed entry for %s: %w", localID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sync swap: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (timeentry.Entry, error) {
	var (
		entry           timeentry.Entry
		projectResolved int
		taskResolved    int
		startRaw        string
		endRaw          string
		billable        int
		manual          int
		pending         int
		trackingType    string
		status          string
	)

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Project.ID,
		&entry.Project.Name,
		&projectResolved,
		&entry.Task.ID,
		&entry.Task.Name,
		&taskResolved,
		&entry.Description,
		&startRaw,
		&endRaw,
		&entry.Duration,
		&billable,
		&trackingType,
		&status,
		&manual,
		&entry.HourlyRate,
		&entry.TotalAmount,
		&pending,
	)
	if err != nil {
		return timeentry.Entry{}, err
	}

	entry.Project.Resolved = projectResolved != 0
	entry.Task.Resolved = taskResolved != 0
	entry.Billable = billable != 0
	entry.ManualEntry = manual != 0
	entry.PendingSync = pending != 0
	entry.TrackingType = timeentry.TrackingType(trackingType)
	entry.Status = timeentry.Status(status)

	entry.StartTime, err = time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return timeentry.Entry{}, fmt.Errorf("parse start time %q: %w", startRaw, err)
	}
	if endRaw != "" {
		entry.EndTime, err = time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return timeentry.Entry{}, fmt.Errorf("parse end time %q: %w", endRaw, err)
		}
	}

	return entry, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
