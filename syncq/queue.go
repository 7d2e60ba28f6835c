// Package syncq wraps the remote time-entry service with an offline
// fallback: transport failures synthesize locally-committed entries that
// are queued and replayed FIFO once connectivity returns.
package syncq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"timepunch/remote"
	"timepunch/storage"
	"timepunch/timeentry"
)

const (
	opStart  = "start"
	opStop   = "stop"
	opCreate = "create"
	opUpdate = "update"
)

type Queue struct {
	remote  remote.Service
	store   *storage.SQLiteStore
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time
}

// Result summarizes one reconciliation pass.
type Result struct {
	Attempted int
	Synced    int
	Failed    int
	Remaining int
}

type Options struct {
	Timeout time.Duration
	Logger  *log.Logger
	Now     func() time.Time
}

func New(service remote.Service, store *storage.SQLiteStore, opts Options) *Queue {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Queue{
		remote:  service,
		store:   store,
		logger:  logger,
		timeout: timeout,
		now:     now,
	}
}

// StartEntry opens a running entry on the server, falling back to a local
// pending entry when the service is unreachable.
func (q *Queue) StartEntry(ctx context.Context, req remote.StartRequest) (timeentry.Entry, error) {
	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	confirmed, err := q.remote.StartTimer(callCtx, req)
	if err == nil {
		confirmed.PendingSync = false
		if storeErr := q.store.UpsertEntry(confirmed); storeErr != nil {
			return timeentry.Entry{}, fmt.Errorf("cache started entry: %w", storeErr)
		}
		return confirmed, nil
	}

	if !timeentry.IsTransport(err) {
		return timeentry.Entry{}, err
	}

	local := timeentry.Entry{
		ID:           timeentry.NewLocalID(),
		UserID:       req.UserID,
		Project:      req.Project,
		Task:         req.Task,
		Description:  req.Description,
		StartTime:    req.StartTime,
		Billable:     req.Billable,
		TrackingType: req.TrackingType,
		Status:       timeentry.StatusInProgress,
		HourlyRate:   req.HourlyRate,
		PendingSync:  true,
	}
	if err := q.enqueueLocal(local, opStart); err != nil {
		return timeentry.Entry{}, err
	}
	q.logger.Printf("time entry service unreachable, session %s running in degraded mode: %v", local.ID, err)
	return local, nil
}

// StopEntry confirms a finalized entry with the server. The entry arrives
// already finalized (end time, duration, amount, completed status); on
// transport failure or an unknown server id it stays committed locally with
// the pending flag set.
func (q *Queue) StopEntry(ctx context.Context, entry timeentry.Entry) (timeentry.Entry, error) {
	if timeentry.IsLocalID(entry.ID) {
		// Start never reached the server; the completed entry replaces the
		// queued start and is created wholesale on reconciliation.
		entry.PendingSync = true
		if err := q.enqueueLocal(entry, opStop); err != nil {
			return timeentry.Entry{}, err
		}
		return entry, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	confirmed, err := q.remote.StopTimer(callCtx, entry.ID, remote.StopRequest{
		EndTime:     entry.EndTime,
		Duration:    entry.Duration,
		TotalAmount: entry.TotalAmount,
	})
	if err == nil {
		confirmed.PendingSync = false
		if storeErr := q.store.UpsertEntry(confirmed); storeErr != nil {
			return timeentry.Entry{}, fmt.Errorf("cache stopped entry: %w", storeErr)
		}
		return confirmed, nil
	}

	switch {
	case errors.Is(err, timeentry.ErrEntryNotFound):
		q.logger.Printf("entry %s unknown to remote service, keeping local completion: %v", entry.ID, err)
	case timeentry.IsTransport(err):
		q.logger.Printf("time entry service unreachable, entry %s committed locally: %v", entry.ID, err)
	default:
		return timeentry.Entry{}, err
	}

	entry.PendingSync = true
	if err := q.enqueueLocal(entry, opStop); err != nil {
		return timeentry.Entry{}, err
	}
	return entry, nil
}

// CreateEntry persists a manual entry, falling back locally on transport
// failure.
func (q *Queue) CreateEntry(ctx context.Context, entry timeentry.Entry) (timeentry.Entry, error) {
	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	confirmed, err := q.remote.CreateTimeEntry(callCtx, entry)
	if err == nil {
		confirmed.PendingSync = false
		if storeErr := q.store.UpsertEntry(confirmed); storeErr != nil {
			return timeentry.Entry{}, fmt.Errorf("cache created entry: %w", storeErr)
		}
		return confirmed, nil
	}

	if !timeentry.IsTransport(err) {
		return timeentry.Entry{}, err
	}

	entry.ID = timeentry.NewLocalID()
	entry.PendingSync = true
	if err := q.enqueueLocal(entry, opCreate); err != nil {
		return timeentry.Entry{}, err
	}
	q.logger.Printf("time entry service unreachable, manual entry %s committed locally: %v", entry.ID, err)
	return entry, nil
}

// UpdateEntry applies a partial edit to an entry, with the same offline
// fallback as the other writes. Edits to local-only entries never touch the
// network; the queued row simply carries the new state to reconciliation.
func (q *Queue) UpdateEntry(ctx context.Context, entryID string, fields remote.UpdateFields) (timeentry.Entry, error) {
	if timeentry.IsLocalID(entryID) {
		entry, found, err := q.store.GetEntryByID(entryID)
		if err != nil {
			return timeentry.Entry{}, err
		}
		if !found {
			return timeentry.Entry{}, fmt.Errorf("update entry %s: %w", entryID, timeentry.ErrEntryNotFound)
		}
		applyUpdate(&entry, fields)
		if err := q.store.UpsertEntry(entry); err != nil {
			return timeentry.Entry{}, fmt.Errorf("persist local edit: %w", err)
		}
		return entry, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	confirmed, err := q.remote.UpdateTimeEntry(callCtx, entryID, fields)
	if err == nil {
		confirmed.PendingSync = false
		if storeErr := q.store.UpsertEntry(confirmed); storeErr != nil {
			return timeentry.Entry{}, fmt.Errorf("cache updated entry: %w", storeErr)
		}
		return confirmed, nil
	}

	if !timeentry.IsTransport(err) {
		return timeentry.Entry{}, err
	}

	entry, found, storeErr := q.store.GetEntryByID(entryID)
	if storeErr != nil {
		return timeentry.Entry{}, storeErr
	}
	if !found {
		// Nothing cached to edit offline; surface the failure.
		return timeentry.Entry{}, err
	}
	applyUpdate(&entry, fields)
	entry.PendingSync = true
	if err := q.enqueueLocal(entry, opUpdate); err != nil {
		return timeentry.Entry{}, err
	}
	q.logger.Printf("time entry service unreachable, edit to %s committed locally: %v", entryID, err)
	return entry, nil
}

// ActiveEntry returns the user's cached in-progress entry, if any. CLI
// invocations use it to pick a running timer back up in a fresh process.
func (q *Queue) ActiveEntry(userID string) (timeentry.Entry, bool, error) {
	entries, err := q.store.ListEntries(storage.ListFilters{
		UserID: userID,
		Status: timeentry.StatusInProgress,
	})
	if err != nil {
		return timeentry.Entry{}, false, err
	}
	if len(entries) == 0 {
		return timeentry.Entry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}

// DeleteEntry removes an entry remotely and locally. A pending local-only
// entry is simply discarded together with its queued operations.
func (q *Queue) DeleteEntry(ctx context.Context, entryID string) error {
	if !timeentry.IsLocalID(entryID) {
		callCtx, cancel := context.WithTimeout(ctx, q.timeout)
		defer cancel()
		if err := q.remote.DeleteTimeEntry(callCtx, entryID); err != nil && !errors.Is(err, timeentry.ErrEntryNotFound) {
			return err
		}
	}

	if _, err := q.store.DeleteEntry(entryID); err != nil {
		return err
	}
	return q.discardPending(entryID)
}

// Reconcile replays queued entries against the remote service FIFO by
// creation time. Entries that still fail stay queued for the next pass.
func (q *Queue) Reconcile(ctx context.Context) (Result, error) {
	pending, err := q.store.ListPending()
	if err != nil {
		return Result{}, err
	}

	// Collapse multiple queued operations per entry; the stored row already
	// holds the latest state.
	seen := make(map[string]struct{}, len(pending))
	result := Result{}

	for _, op := range pending {
		if _, done := seen[op.EntryID]; done {
			continue
		}
		seen[op.EntryID] = struct{}{}

		entry, found, err := q.store.GetEntryByID(op.EntryID)
		if err != nil {
			return result, err
		}
		if !found {
			// The user discarded the entry; nothing left to sync.
			if err := q.discardPending(op.EntryID); err != nil {
				return result, err
			}
			continue
		}
		if entry.Active() {
			// A session still running has no final state to replay. It stays
			// queued and syncs in one shot once it stops; creating it now
			// would leave the live session pointing at a stale local id.
			continue
		}
		result.Attempted++

		confirmed, err := q.replay(ctx, entry, op.Operation)
		if err != nil {
			if timeentry.IsTransport(err) {
				// Still offline; later queue items would fail the same way.
				result.Failed++
				break
			}
			q.logger.Printf("reconcile of entry %s failed: %v", entry.ID, err)
			result.Failed++
			continue
		}

		if timeentry.IsLocalID(entry.ID) {
			if err := q.store.MarkSynced(entry.ID, confirmed); err != nil {
				return result, err
			}
		} else {
			confirmed.PendingSync = false
			if err := q.store.UpsertEntry(confirmed); err != nil {
				return result, err
			}
			if err := q.discardPending(entry.ID); err != nil {
				return result, err
			}
		}
		result.Synced++
	}

	remaining, err := q.store.ListPending()
	if err != nil {
		return result, err
	}
	result.Remaining = countDistinctEntries(remaining)
	return result, nil
}

// PendingCount reports how many entries still await the remote service.
func (q *Queue) PendingCount() (int, error) {
	pending, err := q.store.ListPending()
	if err != nil {
		return 0, err
	}
	return countDistinctEntries(pending), nil
}

func (q *Queue) replay(ctx context.Context, entry timeentry.Entry, operation string) (timeentry.Entry, error) {
	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	if timeentry.IsLocalID(entry.ID) {
		payload := entry
		payload.ID = ""
		payload.PendingSync = false
		return q.remote.CreateTimeEntry(callCtx, payload)
	}

	if operation == opUpdate {
		return q.remote.UpdateTimeEntry(callCtx, entry.ID, updateFieldsFromEntry(entry))
	}

	return q.remote.StopTimer(callCtx, entry.ID, remote.StopRequest{
		EndTime:     entry.EndTime,
		Duration:    entry.Duration,
		TotalAmount: entry.TotalAmount,
	})
}

func applyUpdate(entry *timeentry.Entry, fields remote.UpdateFields) {
	if fields.Description != nil {
		entry.Description = *fields.Description
	}
	if fields.Project != nil {
		entry.Project = *fields.Project
	}
	if fields.Task != nil {
		entry.Task = *fields.Task
	}
	if fields.StartTime != nil {
		entry.StartTime = *fields.StartTime
	}
	if fields.EndTime != nil {
		entry.EndTime = *fields.EndTime
	}
	if fields.Duration != nil {
		entry.Duration = *fields.Duration
	}
	if fields.Billable != nil {
		entry.Billable = *fields.Billable
	}
	if fields.HourlyRate != nil {
		entry.HourlyRate = *fields.HourlyRate
	}
}

// updateFieldsFromEntry rebuilds the edit payload from the stored row, which
// carries the latest state an offline edit left behind.
func updateFieldsFromEntry(entry timeentry.Entry) remote.UpdateFields {
	fields := remote.UpdateFields{
		Description: &entry.Description,
		Project:     &entry.Project,
		Billable:    &entry.Billable,
		HourlyRate:  &entry.HourlyRate,
	}
	if !entry.Task.IsZero() {
		fields.Task = &entry.Task
	}
	if !entry.StartTime.IsZero() {
		fields.StartTime = &entry.StartTime
	}
	if !entry.EndTime.IsZero() {
		fields.EndTime = &entry.EndTime
	}
	if entry.Duration > 0 {
		fields.Duration = &entry.Duration
	}
	return fields
}

func (q *Queue) enqueueLocal(entry timeentry.Entry, operation string) error {
	if err := q.store.UpsertEntry(entry); err != nil {
		return fmt.Errorf("persist fallback entry: %w", err)
	}
	if err := q.store.EnqueuePending(entry.ID, operation, q.now()); err != nil {
		return fmt.Errorf("queue fallback entry: %w", err)
	}
	return nil
}

func (q *Queue) discardPending(entryID string) error {
	pending, err := q.store.ListPending()
	if err != nil {
		return err
	}
	for _, op := range pending {
		if op.EntryID != entryID {
			continue
		}
		if err := q.store.DequeuePending(op.Seq); err != nil {
			return err
		}
	}
	return nil
}

func countDistinctEntries(ops []storage.PendingOp) int {
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		seen[op.EntryID] = struct{}{}
	}
	return len(seen)
}
