package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"timepunch/timeentry"
)

type fakeDoer struct {
	fn func(r *http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(r *http.Request) (*http.Response, error) {
	return f.fn(r)
}

func jsonResponse(status int, payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, fn func(r *http.Request) (*http.Response, error)) *HTTPClient {
	t.Helper()

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://timesheet.example.com",
		AuthToken:  "secret-token",
		UserAgent:  "timepunch-test/1.0",
		HTTPClient: fakeDoer{fn: fn},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	for _, baseURL := range []string{"", "   ", "not a url", "/relative/path"} {
		if _, err := NewClient(ClientConfig{BaseURL: baseURL}); err == nil {
			t.Fatalf("expected error for base URL %q", baseURL)
		}
	}
}

func TestHTTPClient_StartTimerEndpointAndHeaders(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/time-entries/start" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "timepunch-test/1.0" {
			t.Fatalf("unexpected User-Agent: %q", got)
		}

		var req StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if req.UserID != "u-17" || req.Project.Display() != "Website Redesign" {
			t.Fatalf("unexpected request payload: %+v", req)
		}

		return jsonResponse(http.StatusCreated, timeentry.Entry{
			ID:     "srv-1",
			UserID: req.UserID,
			Status: timeentry.StatusInProgress,
		}), nil
	})

	entry, err := client.StartTimer(context.Background(), StartRequest{
		UserID:      "u-17",
		Project:     timeentry.RefNamed("p-1", "Website Redesign"),
		Description: "wireframes",
		StartTime:   time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("start timer: %v", err)
	}
	if entry.ID != "srv-1" {
		t.Fatalf("unexpected entry id: %q", entry.ID)
	}
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.StartTimer(context.Background(), StartRequest{UserID: "u-17"})
	if !timeentry.IsTransport(err) {
		t.Fatalf("expected transport classification, got %v", err)
	}
}

func TestHTTPClient_ServerErrorIsTransport(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(bytes.NewReader([]byte("upstream down"))),
		}, nil
	})

	_, err := client.ListTimeEntries(context.Background(), ListFilters{})
	if !timeentry.IsTransport(err) {
		t.Fatalf("expected 5xx to classify as transport failure, got %v", err)
	}
}

func TestHTTPClient_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	})

	_, err := client.StopTimer(context.Background(), "srv-404", StopRequest{})
	if !errors.Is(err, timeentry.ErrEntryNotFound) {
		t.Fatalf("expected not-found sentinel, got %v", err)
	}
}

func TestHTTPClient_RejectionParsing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "flat", body: `{"code":"INVALID_PROJECT","message":"unknown project"}`, code: "INVALID_PROJECT"},
		{name: "nested", body: `{"error":{"code":"LOCKED","message":"period is closed"}}`, code: "LOCKED"},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnprocessableEntity,
				Body:       io.NopCloser(bytes.NewReader([]byte(tc.body))),
			}, nil
		})

		_, err := client.CreateTimeEntry(context.Background(), timeentry.Entry{UserID: "u-17"})
		var rejection *timeentry.RemoteRejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("%s: expected rejection, got %v", tc.name, err)
		}
		if rejection.Code != tc.code {
			t.Fatalf("%s: expected code %q, got %q", tc.name, tc.code, rejection.Code)
		}
		if rejection.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("%s: unexpected status: %d", tc.name, rejection.StatusCode)
		}
	}
}

func TestHTTPClient_ListTimeEntriesQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		query := r.URL.Query()
		if query.Get("userId") != "u-17" || query.Get("status") != "completed" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		if query.Get("startDate") != "2026-08-01" {
			t.Fatalf("unexpected startDate: %q", query.Get("startDate"))
		}
		return jsonResponse(http.StatusOK, []timeentry.Entry{{ID: "srv-1"}, {ID: "srv-2"}}), nil
	})

	entries, err := client.ListTimeEntries(context.Background(), ListFilters{
		UserID:    "u-17",
		Status:    timeentry.StatusCompleted,
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestHTTPClient_UpdateTimeEntrySendsOnlyChangedFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/time-entries/srv-9" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if payload["description"] != "revised copy" {
			t.Fatalf("unexpected description: %v", payload["description"])
		}
		if _, present := payload["billable"]; present {
			t.Fatalf("unset fields must be omitted, got %v", payload)
		}

		return jsonResponse(http.StatusOK, timeentry.Entry{
			ID:          "srv-9",
			Description: "revised copy",
			Status:      timeentry.StatusCompleted,
		}), nil
	})

	description := "revised copy"
	entry, err := client.UpdateTimeEntry(context.Background(), "srv-9", UpdateFields{Description: &description})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if entry.Description != "revised copy" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestHTTPClient_DeleteToleratesEmptyBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/time-entries/srv-9" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusNoContent,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	})

	if err := client.DeleteTimeEntry(context.Background(), "srv-9"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
}

func TestHTTPDirectory_GetUser(t *testing.T) {
	t.Parallel()

	directory, err := NewDirectory(ClientConfig{
		BaseURL: "https://directory.example.com",
		HTTPClient: fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/users/u-17" {
				t.Fatalf("unexpected path: %s", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, map[string]any{
				"id": "u-17", "name": "Sam", "shift": "weekly", "hourlyRate": 42.5,
			}), nil
		}},
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	user, err := directory.GetUser(context.Background(), "u-17")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Shift != "weekly" || user.HourlyRate != 42.5 {
		t.Fatalf("unexpected user: %+v", user)
	}
}
