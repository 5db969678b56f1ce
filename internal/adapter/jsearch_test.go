package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func newTestJSearch(t *testing.T, handler http.HandlerFunc) *JSearchAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewJSearchAdapter(JSearchOptions{BaseURL: srv.URL, APIKey: "rapid-key", Timeout: time.Second}, srv.Client())
	if err != nil {
		t.Fatalf("NewJSearchAdapter: %v", err)
	}
	return a
}

func TestSearchJobs_Success(t *testing.T) {
	var gotQuery, gotKey, gotHost, gotPath string
	a := newTestJSearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"data": [
				{
					"job_title": "Data Analyst",
					"employer_name": "Acme",
					"job_location": "Denver, CO",
					"job_description": "Analyze data.",
					"job_apply_link": "https://acme.example/apply/1",
					"posted_at": "2 days ago"
				},
				{
					"job_title": "Senior Data Analyst",
					"employer_name": "Globex",
					"job_city": "Austin",
					"job_state": "TX",
					"job_country": "US",
					"job_apply_link": "https://globex.example/apply/2",
					"job_posted_at_datetime_utc": "2026-10-01T00:00:00.000Z"
				}
			]
		}`))
	})

	jobs, err := a.SearchJobs(context.Background(), "Data Analyst", "Denver")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Data Analyst" || j.Company != "Acme" || j.Location != "Denver, CO" {
		t.Errorf("unexpected first job: %+v", j)
	}
	if j.URL != "https://acme.example/apply/1" || j.DatePosted != "2 days ago" || j.Description != "Analyze data." {
		t.Errorf("unexpected first job fields: %+v", j)
	}
	if jobs[1].Location != "Austin, TX, US" {
		t.Errorf("Location = %q, want composed city/state/country", jobs[1].Location)
	}
	if jobs[1].DatePosted != "2026-10-01T00:00:00.000Z" {
		t.Errorf("DatePosted = %q", jobs[1].DatePosted)
	}

	if gotPath != "/search" {
		t.Errorf("path = %q, want /search", gotPath)
	}
	for _, want := range []string{"query=Data+Analyst+in+Denver", "page=1", "num_pages=1", "country=us", "date_posted=all"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if gotKey != "rapid-key" {
		t.Errorf("x-rapidapi-key = %q", gotKey)
	}
	if gotHost != DefaultJSearchHost {
		t.Errorf("x-rapidapi-host = %q", gotHost)
	}
}

func TestSearchJobs_CapsAtMaxResults(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"data":[`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"job_title":"Pilot"}`)
	}
	b.WriteString(`]}`)

	a := newTestJSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(b.String()))
	})

	jobs, err := a.SearchJobs(context.Background(), "Pilot", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 10 {
		t.Errorf("expected 10 jobs, got %d", len(jobs))
	}
}

func TestSearchJobs_NoLocationLeavesQueryBare(t *testing.T) {
	var gotQuery string
	a := newTestJSearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"data":[]}`))
	})

	jobs, err := a.SearchJobs(context.Background(), "pilot", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
	if gotQuery != "pilot" {
		t.Errorf("query = %q, want pilot", gotQuery)
	}
}

func TestSearchJobs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty body", http.StatusOK, "  ", model.ErrEmptyResponse},
		{"missing data", http.StatusOK, `{"status":"OK"}`, model.ErrMalformedPayload},
		{"data not a list", http.StatusOK, `{"data":"nope"}`, model.ErrMalformedPayload},
		{"not json", http.StatusOK, `<html>oops</html>`, model.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestJSearch(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := a.SearchJobs(context.Background(), "pilot", "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchJobs_HTTPStatus(t *testing.T) {
	a := newTestJSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := a.SearchJobs(context.Background(), "pilot", "")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", httpErr.RetryAfter)
	}
}

func TestSearchJobs_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	a, err := NewJSearchAdapter(JSearchOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.SearchJobs(context.Background(), "pilot", ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":     0,
		"120":  120 * time.Second,
		"soon": 0,
		"-5":   0,
	}
	for in, want := range tests {
		if got := ParseRetryAfter(in); got != want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
