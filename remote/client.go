// Package remote implements the HTTP clients for the external time-entry
// service and the shift directory.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timepunch/internal/timeutil"
	"timepunch/shift"
	"timepunch/timeentry"
)

// Service defines the time-entry operations of the external backend.
type Service interface {
	StartTimer(ctx context.Context, req StartRequest) (timeentry.Entry, error)
	StopTimer(ctx context.Context, entryID string, req StopRequest) (timeentry.Entry, error)
	CreateTimeEntry(ctx context.Context, entry timeentry.Entry) (timeentry.Entry, error)
	UpdateTimeEntry(ctx context.Context, entryID string, fields UpdateFields) (timeentry.Entry, error)
	DeleteTimeEntry(ctx context.Context, entryID string) error
	ListTimeEntries(ctx context.Context, filters ListFilters) ([]timeentry.Entry, error)
}

// Directory exposes the excluded team/identity service.
type Directory interface {
	GetUser(ctx context.Context, userID string) (shift.User, error)
}

// StartRequest opens a running entry on the server.
type StartRequest struct {
	UserID       string                 `json:"userId"`
	Project      timeentry.Ref          `json:"project"`
	Task         timeentry.Ref          `json:"task,omitzero"`
	Description  string                 `json:"description"`
	TrackingType timeentry.TrackingType `json:"trackingType"`
	Billable     bool                   `json:"billable"`
	HourlyRate   float64                `json:"hourlyRate,omitempty"`
	StartTime    time.Time              `json:"startTime"`
}

// StopRequest finalizes a running entry with client-computed values for the
// server to confirm.
type StopRequest struct {
	EndTime     time.Time `json:"endTime"`
	Duration    int       `json:"duration"`
	TotalAmount float64   `json:"totalAmount,omitempty"`
}

// UpdateFields is a partial update; nil fields are left untouched.
type UpdateFields struct {
	Description *string        `json:"description,omitempty"`
	Project     *timeentry.Ref `json:"project,omitempty"`
	Task        *timeentry.Ref `json:"task,omitempty"`
	StartTime   *time.Time     `json:"startTime,omitempty"`
	EndTime     *time.Time     `json:"endTime,omitempty"`
	Duration    *int           `json:"duration,omitempty"`
	Billable    *bool          `json:"billable,omitempty"`
	HourlyRate  *float64       `json:"hourlyRate,omitempty"`
}

// ListFilters narrows ListTimeEntries server-side.
type ListFilters struct {
	UserID    string
	Project   string
	Status    timeentry.Status
	StartDate time.Time
	EndDate   time.Time
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	AuthToken  string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	authToken  string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		authToken:  strings.TrimSpace(cfg.AuthToken),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

func (c *HTTPClient) StartTimer(ctx context.Context, req StartRequest) (timeentry.Entry, error) {
	var out timeentry.Entry
	if err := c.doJSON(ctx, http.MethodPost, "/api/time-entries/start", req, &out); err != nil {
		return timeentry.Entry{}, err
	}
	return out, nil
}

func (c *HTTPClient) StopTimer(ctx context.Context, entryID string, req StopRequest) (timeentry.Entry, error) {
	path := "/api/time-entries/" + url.PathEscape(entryID) + "/stop"
	var out timeentry.Entry
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return timeentry.Entry{}, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTimeEntry(ctx context.Context, entry timeentry.Entry) (timeentry.Entry, error) {
	var out timeentry.Entry
	if err := c.doJSON(ctx, http.MethodPost, "/api/time-entries", entry, &out); err != nil {
		return timeentry.Entry{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateTimeEntry(ctx context.Context, entryID string, fields UpdateFields) (timeentry.Entry, error) {
	path := "/api/time-entries/" + url.PathEscape(entryID)
	var out timeentry.Entry
	if err := c.doJSON(ctx, http.MethodPatch, path, fields, &out); err != nil {
		return timeentry.Entry{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteTimeEntry(ctx context.Context, entryID string) error {
	path := "/api/time-entries/" + url.PathEscape(entryID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) ListTimeEntries(ctx context.Context, filters ListFilters) ([]timeentry.Entry, error) {
	query := url.Values{}
	if filters.UserID != "" {
		query.Set("userId", filters.UserID)
	}
	if filters.Project != "" {
		query.Set("project", filters.Project)
	}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if !filters.StartDate.IsZero() {
		query.Set("startDate", timeutil.DayKey(filters.StartDate))
	}
	if !filters.EndDate.IsZero() {
		query.Set("endDate", timeutil.DayKey(filters.EndDate))
	}

	path := "/api/time-entries"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []timeentry.Entry
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type rejectionBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	op := method + " " + endpointPath
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &timeentry.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request %s: %w", op, timeentry.ErrEntryNotFound)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return rejectionFromResponse(op, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &timeentry.TransportError{
			Op:  op,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s: %w", op, err)
	}
	return nil
}

func rejectionFromResponse(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	rejection := &timeentry.RemoteRejectionError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(raw)),
	}

	var parsed rejectionBody
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != nil {
			rejection.Code = parsed.Error.Code
			rejection.Message = parsed.Error.Message
		} else if parsed.Code != "" || parsed.Message != "" {
			rejection.Code = parsed.Code
			rejection.Message = parsed.Message
		}
	}
	return rejection
}
