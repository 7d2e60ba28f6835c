// Package web serves a localhost-only JSON API for the tracking engine; it
// intentionally has no auth/CSRF protection in this mode.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"timepunch/internal/timeutil"
	"timepunch/remote"
	"timepunch/report"
	"timepunch/storage"
	"timepunch/syncq"
	"timepunch/timeentry"
	"timepunch/timerctl"
)

type Server struct {
	controller *timerctl.Controller
	queue      *syncq.Queue
	store      *storage.SQLiteStore
	now        func() time.Time
	mux        *http.ServeMux
}

type startRequest struct {
	UserID      string        `json:"userId"`
	Project     timeentry.Ref `json:"project"`
	Task        timeentry.Ref `json:"task"`
	Description string        `json:"description"`
	Billable    bool          `json:"billable"`
	HourlyRate  float64       `json:"hourlyRate"`
}

type manualRequest struct {
	UserID      string        `json:"userId"`
	Project     timeentry.Ref `json:"project"`
	Task        timeentry.Ref `json:"task"`
	Description string        `json:"description"`
	Duration    string        `json:"duration"`
	Billable    bool          `json:"billable"`
	HourlyRate  float64       `json:"hourlyRate"`
}

// updateRequest carries a partial edit; absent fields stay untouched.
type updateRequest struct {
	Description *string        `json:"description"`
	Project     *timeentry.Ref `json:"project"`
	Task        *timeentry.Ref `json:"task"`
	Billable    *bool          `json:"billable"`
	HourlyRate  *float64       `json:"hourlyRate"`
}

type sessionResponse struct {
	Active bool             `json:"active"`
	Entry  *timeentry.Entry `json:"entry,omitempty"`
}

type reconcileResponse struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(controller *timerctl.Controller, queue *syncq.Queue, store *storage.SQLiteStore, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	server := &Server{
		controller: controller,
		queue:      queue,
		store:      store,
		now:        now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/timer/start", server.handleStart)
	mux.HandleFunc("POST /api/timer/{user}/pause", server.handlePause)
	mux.HandleFunc("POST /api/timer/{user}/resume", server.handleResume)
	mux.HandleFunc("POST /api/timer/{user}/stop", server.handleStop)
	mux.HandleFunc("GET /api/timer/{user}", server.handleCurrentSession)
	mux.HandleFunc("POST /api/entries", server.handleManualEntry)
	mux.HandleFunc("GET /api/entries", server.handleListEntries)
	mux.HandleFunc("PATCH /api/entries/{id}", server.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", server.handleDeleteEntry)
	mux.HandleFunc("GET /api/report/totals", server.handleReportTotals)
	mux.HandleFunc("GET /api/report/projects", server.handleReportProjects)
	mux.HandleFunc("GET /api/report/users", server.handleReportUsers)
	mux.HandleFunc("GET /api/report/daily", server.handleReportDaily)
	mux.HandleFunc("POST /api/sync/reconcile", server.handleReconcile)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.controller.Start(r.Context(), timerctl.StartParams{
		UserID:      body.UserID,
		Project:     body.Project,
		Task:        body.Task,
		Description: body.Description,
		Billable:    body.Billable,
		HourlyRate:  body.HourlyRate,
	})
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	entry, err := s.controller.Pause(strings.TrimSpace(r.PathValue("user")))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	entry, err := s.controller.Resume(strings.TrimSpace(r.PathValue("user")))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	entry, err := s.controller.Stop(r.Context(), strings.TrimSpace(r.PathValue("user")))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	entry, active := s.controller.CurrentSession(strings.TrimSpace(r.PathValue("user")))
	resp := sessionResponse{Active: active}
	if active {
		resp.Entry = &entry
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManualEntry(w http.ResponseWriter, r *http.Request) {
	var body manualRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.controller.ManualEntry(r.Context(), timerctl.ManualParams{
		UserID:       body.UserID,
		Project:      body.Project,
		Task:         body.Task,
		Description:  body.Description,
		DurationText: body.Duration,
		Billable:     body.Billable,
		HourlyRate:   body.HourlyRate,
	})
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := s.store.ListEntries(filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("entry id is required"))
		return
	}

	var body updateRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fields := remote.UpdateFields{
		Description: body.Description,
		Project:     body.Project,
		Task:        body.Task,
		Billable:    body.Billable,
		HourlyRate:  body.HourlyRate,
	}
	if fields == (remote.UpdateFields{}) {
		writeError(w, http.StatusBadRequest, errors.New("at least one field is required"))
		return
	}

	entry, err := s.queue.UpdateEntry(r.Context(), id, fields)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("entry id is required"))
		return
	}

	if err := s.queue.DeleteEntry(r.Context(), id); err != nil {
		writeTaxonomyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportTotals(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.loadEntries(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.BuildTotals(entries))
}

func (s *Server) handleReportProjects(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.loadEntries(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.ByProject(entries))
}

func (s *Server) handleReportUsers(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.loadEntries(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.ByUser(entries))
}

func (s *Server) handleReportDaily(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("days must be a positive integer"))
			return
		}
		days = parsed
	}

	entries, ok := s.loadEntries(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.DailySeries(entries, days, s.now()))
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := s.queue.Reconcile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, reconcileResponse{
		Attempted: result.Attempted,
		Synced:    result.Synced,
		Failed:    result.Failed,
		Remaining: result.Remaining,
	})
}

func (s *Server) loadEntries(w http.ResponseWriter, r *http.Request) ([]timeentry.Entry, bool) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	entries, err := s.store.ListEntries(filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return entries, true
}

func filtersFromQuery(r *http.Request) (storage.ListFilters, error) {
	filters := storage.ListFilters{
		UserID:  strings.TrimSpace(r.URL.Query().Get("userId")),
		Project: strings.TrimSpace(r.URL.Query().Get("project")),
	}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filters.Status = timeentry.Status(status)
	}
	if from := strings.TrimSpace(r.URL.Query().Get("from")); from != "" {
		parsed, err := timeutil.ParseDayKey(from)
		if err != nil {
			return storage.ListFilters{}, fmt.Errorf("invalid from date (expected YYYY-MM-DD)")
		}
		filters.StartDate = parsed
	}
	if to := strings.TrimSpace(r.URL.Query().Get("to")); to != "" {
		parsed, err := timeutil.ParseDayKey(to)
		if err != nil {
			return storage.ListFilters{}, fmt.Errorf("invalid to date (expected YYYY-MM-DD)")
		}
		filters.EndDate = parsed
	}
	return filters, nil
}

func writeTaxonomyError(w http.ResponseWriter, err error) {
	var (
		validation *timeentry.ValidationError
		conflict   *timeentry.ConflictError
		rejection  *timeentry.RemoteRejectionError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, err)
	case errors.As(err, &rejection):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, timeentry.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
