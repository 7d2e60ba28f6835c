// Package timerctl owns the per-user session state machine driving time
// entries from start through commit.
package timerctl

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"timepunch/internal/durcalc"
	"timepunch/remote"
	"timepunch/shift"
	"timepunch/syncq"
	"timepunch/timeentry"
)

// State is the lifecycle position of a user's session.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

type session struct {
	entry timeentry.Entry
	state State

	// Display clock: seconds accumulated before the current running
	// segment, and when that segment began. Frozen while paused; never
	// written to the entry until stop.
	accumulated  int
	segmentStart time.Time

	inFlight bool
}

// StartParams carries a start command.
type StartParams struct {
	UserID      string
	Project     timeentry.Ref
	Task        timeentry.Ref
	Description string
	Billable    bool
	HourlyRate  float64
}

// ManualParams carries a manual-entry command.
type ManualParams struct {
	UserID       string
	Project      timeentry.Ref
	Task         timeentry.Ref
	Description  string
	DurationText string
	Billable     bool
	HourlyRate   float64
}

type Controller struct {
	queue     *syncq.Queue
	directory remote.Directory
	logger    *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type Options struct {
	Logger *log.Logger
	Now    func() time.Time
}

func New(queue *syncq.Queue, directory remote.Directory, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		queue:     queue,
		directory: directory,
		logger:    logger,
		now:       now,
		sessions:  make(map[string]*session),
	}
}

// Start opens a running session for the user. At most one session per user
// may be active, and no second command may be issued while persistence is
// in flight.
func (c *Controller) Start(ctx context.Context, params StartParams) (timeentry.Entry, error) {
	if err := validateStart(params); err != nil {
		return timeentry.Entry{}, err
	}

	c.mu.Lock()
	if existing, ok := c.sessions[params.UserID]; ok {
		c.mu.Unlock()
		if existing.inFlight {
			return timeentry.Entry{}, &timeentry.ConflictError{UserID: params.UserID, Reason: "a persistence call is in flight"}
		}
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: params.UserID, Reason: "a session is already active"}
	}
	placeholder := &session{state: StateRunning, inFlight: true}
	c.sessions[params.UserID] = placeholder
	c.mu.Unlock()

	trackingType, rate := c.resolveUserPolicy(ctx, params.UserID, params.HourlyRate)
	startedAt := c.now()

	entry, err := c.queue.StartEntry(ctx, remote.StartRequest{
		UserID:       params.UserID,
		Project:      params.Project,
		Task:         params.Task,
		Description:  strings.TrimSpace(params.Description),
		TrackingType: trackingType,
		Billable:     params.Billable,
		HourlyRate:   rate,
		StartTime:    startedAt,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		delete(c.sessions, params.UserID)
		return timeentry.Entry{}, err
	}
	if entry.StartTime.IsZero() {
		entry.StartTime = startedAt
	}

	placeholder.entry = entry
	placeholder.state = StateRunning
	placeholder.segmentStart = startedAt
	placeholder.inFlight = false
	return entry, nil
}

// Attach rebuilds a running session from a previously persisted in-progress
// entry, so a new process can stop a timer an earlier one started. The
// display clock restarts from the entry's wall-clock start.
func (c *Controller) Attach(entry timeentry.Entry) error {
	if entry.UserID == "" || !entry.Active() {
		return timeentry.NewValidationError("entry", "only an in-progress entry can be attached")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[entry.UserID]; ok {
		return &timeentry.ConflictError{UserID: entry.UserID, Reason: "a session is already active"}
	}
	c.sessions[entry.UserID] = &session{
		entry:        entry,
		state:        StateRunning,
		segmentStart: entry.StartTime,
	}
	return nil
}

// Pause freezes the display clock. Nothing is persisted; the wall-clock
// start of the entry is unaffected.
func (c *Controller) Pause(userID string) (timeentry.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeSession(userID)
	if err != nil {
		return timeentry.Entry{}, err
	}
	if sess.inFlight {
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: userID, Reason: "a persistence call is in flight"}
	}
	if sess.state != StateRunning {
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: userID, Reason: "session is not running"}
	}

	sess.accumulated += durcalc.ElapsedSeconds(sess.segmentStart, c.now())
	sess.state = StatePaused
	sess.entry.Status = timeentry.StatusPaused
	return sess.entry, nil
}

// Resume continues a paused session; the display clock picks up from the
// previously accumulated value.
func (c *Controller) Resume(userID string) (timeentry.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.activeSession(userID)
	if err != nil {
		return timeentry.Entry{}, err
	}
	if sess.inFlight {
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: userID, Reason: "a persistence call is in flight"}
	}
	if sess.state != StatePaused {
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: userID, Reason: "session is not paused"}
	}

	sess.segmentStart = c.now()
	sess.state = StateRunning
	sess.entry.Status = timeentry.StatusInProgress
	return sess.entry, nil
}

// Stop finalizes the session: it computes duration and billable amount,
// delegates persistence (with offline fallback), and commits. Once Stop
// returns, the user has no active session.
func (c *Controller) Stop(ctx context.Context, userID string) (timeentry.Entry, error) {
	c.mu.Lock()
	sess, err := c.activeSession(userID)
	if err != nil {
		c.mu.Unlock()
		return timeentry.Entry{}, err
	}
	if sess.inFlight {
		c.mu.Unlock()
		return timeentry.Entry{}, &timeentry.ConflictError{UserID: userID, Reason: "a persistence call is in flight"}
	}
	sess.inFlight = true

	now := c.now()
	entry := sess.entry
	c.mu.Unlock()

	if now.Before(entry.StartTime) {
		c.logger.Printf("clock skew for user %s: stop at %v precedes start %v", userID, now, entry.StartTime)
	}
	entry.EndTime = now
	entry.Duration = durcalc.FinalizeDuration(entry.StartTime, now)
	if entry.Billable {
		entry.TotalAmount = durcalc.BillableAmount(entry.Duration, entry.HourlyRate)
	}
	entry.Status = timeentry.StatusCompleted

	committed, err := c.queue.StopEntry(ctx, entry)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Rejection or local persistence failure: the session stays as it
		// was so the user can retry.
		sess.inFlight = false
		return timeentry.Entry{}, err
	}

	delete(c.sessions, userID)
	if committed.PendingSync {
		c.logger.Printf("entry %s for user %s committed in degraded mode, awaiting sync", committed.ID, userID)
	}
	return committed, nil
}

// ManualEntry records a completed entry from a user-supplied duration. It
// bypasses the running/paused lifecycle entirely.
func (c *Controller) ManualEntry(ctx context.Context, params ManualParams) (timeentry.Entry, error) {
	if params.Project.IsZero() {
		return timeentry.Entry{}, timeentry.NewValidationError("project", "a project is required")
	}
	if strings.TrimSpace(params.Description) == "" {
		return timeentry.Entry{}, timeentry.NewValidationError("description", "a description is required")
	}

	seconds, err := durcalc.ParseManualDuration(params.DurationText)
	if err != nil {
		return timeentry.Entry{}, err
	}
	if seconds <= 0 {
		return timeentry.Entry{}, timeentry.NewValidationError("duration", "duration must be positive")
	}

	trackingType, rate := c.resolveUserPolicy(ctx, params.UserID, params.HourlyRate)
	rules := shift.RulesFor(trackingType)
	if !rules.AllowMultiDay && time.Duration(seconds)*time.Second > rules.MaxSpan {
		return timeentry.Entry{}, timeentry.NewValidationError(
			"duration",
			"duration exceeds the span allowed by the user's shift",
		)
	}

	now := c.now()
	entry := timeentry.Entry{
		UserID:       params.UserID,
		Project:      params.Project,
		Task:         params.Task,
		Description:  strings.TrimSpace(params.Description),
		StartTime:    now.Add(-time.Duration(seconds) * time.Second),
		EndTime:      now,
		Duration:     seconds,
		Billable:     params.Billable,
		TrackingType: trackingType,
		Status:       timeentry.StatusCompleted,
		ManualEntry:  true,
		HourlyRate:   rate,
	}
	if entry.Billable {
		entry.TotalAmount = durcalc.BillableAmount(seconds, rate)
	}

	committed, err := c.queue.CreateEntry(ctx, entry)
	if err != nil {
		return timeentry.Entry{}, err
	}
	if committed.PendingSync {
		c.logger.Printf("manual entry %s for user %s committed in degraded mode, awaiting sync", committed.ID, params.UserID)
	}
	return committed, nil
}

// CurrentSession returns the user's active entry, with the duration field
// showing the live display clock. The second return value is false when
// the user is idle.
func (c *Controller) CurrentSession(userID string) (timeentry.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[userID]
	if !ok || sess.inFlight && sess.entry.ID == "" {
		return timeentry.Entry{}, false
	}

	entry := sess.entry
	entry.Duration = c.elapsedLocked(sess)
	return entry, true
}

// Elapsed returns the display clock for the user's session in seconds.
func (c *Controller) Elapsed(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[userID]
	if !ok {
		return 0
	}
	return c.elapsedLocked(sess)
}

func (c *Controller) elapsedLocked(sess *session) int {
	elapsed := sess.accumulated
	if sess.state == StateRunning && !sess.segmentStart.IsZero() {
		elapsed += durcalc.ElapsedSeconds(sess.segmentStart, c.now())
	}
	return elapsed
}

func (c *Controller) activeSession(userID string) (*session, error) {
	sess, ok := c.sessions[userID]
	if !ok {
		return nil, &timeentry.ConflictError{UserID: userID, Reason: "no active session"}
	}
	return sess, nil
}

// resolveUserPolicy looks up the user's shift and rate. A missing or
// unknown shift degrades to hourly tracking; the condition is logged as a
// data-quality issue, never fatal.
func (c *Controller) resolveUserPolicy(ctx context.Context, userID string, requestedRate float64) (timeentry.TrackingType, float64) {
	trackingType := timeentry.TrackingHourly
	rate := requestedRate

	user, err := c.directory.GetUser(ctx, userID)
	if err != nil {
		c.logger.Printf("shift directory lookup for user %s failed, defaulting to hourly tracking: %v", userID, err)
		return trackingType, rate
	}

	resolved, err := shift.ResolveTrackingType(user)
	if err != nil {
		c.logger.Printf("tracking type fallback for user %s: %v", userID, err)
	} else {
		trackingType = resolved
	}
	if rate <= 0 {
		rate = user.HourlyRate
	}
	return trackingType, rate
}

func validateStart(params StartParams) error {
	if strings.TrimSpace(params.UserID) == "" {
		return timeentry.NewValidationError("userId", "a user is required")
	}
	if params.Project.IsZero() {
		return timeentry.NewValidationError("project", "a project is required")
	}
	if strings.TrimSpace(params.Description) == "" {
		return timeentry.NewValidationError("description", "a description is required")
	}
	return nil
}
