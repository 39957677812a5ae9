package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
)

func TestGreenhouseBoard_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Software Engineer",
				"location": {"name": "San Francisco, CA"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"first_published": "2026-02-10T09:00:00Z",
				"updated_at": "2026-02-13T10:00:00Z",
				"content": "&lt;p&gt;Build things.&lt;/p&gt;&lt;ul&gt;&lt;li&gt;Go&lt;/li&gt;&lt;/ul&gt;"
			},
			{
				"id": 67890,
				"title": "Backend Engineer",
				"location": {"name": "Remote, US"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890",
				"updated_at": "2026-02-13T11:30:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("expected content=true, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	board := NewGreenhouseBoard("acme", "Acme Corp", testClient(srv))
	jobs, err := board.FetchBoard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ID != "12345" {
		t.Errorf("expected ID 12345, got %s", j.ID)
	}
	if j.Company != "Acme Corp" {
		t.Errorf("expected company Acme Corp, got %s", j.Company)
	}
	if j.SourceURL != "https://boards.greenhouse.io/acme/jobs/12345" {
		t.Errorf("unexpected source url %s", j.SourceURL)
	}
	if j.PostedAt == nil || !j.PostedAt.Equal(time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("expected PostedAt from first_published, got %v", j.PostedAt)
	}
	if j.Description != "Build things.\n\n• Go" {
		t.Errorf("unexpected description %q", j.Description)
	}

	// No first_published: fall back to updated_at.
	if p := jobs[1].PostedAt; p == nil || p.Day() != 13 {
		t.Errorf("expected PostedAt from updated_at, got %v", p)
	}
}

func TestGreenhouseBoard_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewGreenhouseBoard("fail-co", "Fail Co", testClient(srv)).FetchBoard(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestGreenhouseBoard_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	_, err := NewGreenhouseBoard("bad-co", "Bad Co", testClient(srv)).FetchBoard(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestGreenhouseBoard_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGreenhouseBoard("acme", "Acme", testClient(srv)).FetchBoard(context.Background())
	if !model.IsRateLimited(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}

func TestLeverBoard_Success(t *testing.T) {
	payload := `[
		{
			"id": "abc-123",
			"text": "Backend Engineer",
			"description": "<p>About us</p>",
			"descriptionPlain": "About us",
			"lists": [{"text": "Requirements", "content": "<li>Go</li><li>SQL</li>"}],
			"categories": {"location": "San Francisco", "team": "Platform"},
			"createdAt": 1770710400000,
			"workplaceType": "remote",
			"hostedUrl": "https://jobs.lever.co/acme/abc-123",
			"applyUrl": "https://jobs.lever.co/acme/abc-123/apply",
			"salaryRange": {"min": 120000, "max": 150000, "currency": "USD", "interval": "per-year-salary"}
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme" || r.URL.Query().Get("mode") != "json" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	jobs, err := NewLeverBoard("acme", "Acme", testClient(srv)).FetchBoard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Location != "Remote - San Francisco" {
		t.Errorf("expected remote-prefixed location, got %q", j.Location)
	}
	if j.PostedAt == nil || !j.PostedAt.Equal(time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected PostedAt: %v", j.PostedAt)
	}
	if j.Salary != "120000-150000 USD/year" {
		t.Errorf("unexpected salary %q", j.Salary)
	}
	if !strings.Contains(j.Description, "Requirements") || !strings.Contains(j.Description, "• SQL") {
		t.Errorf("expected lists in description, got %q", j.Description)
	}
	if j.SourceURL != "https://jobs.lever.co/acme/abc-123" {
		t.Errorf("unexpected source url %s", j.SourceURL)
	}
}

func TestAshbyBoard_SkipsUnlisted(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": "a1",
				"title": "Software Engineer",
				"location": "New York",
				"isRemote": false,
				"descriptionHtml": "<div><p>Join us.</p></div>",
				"jobUrl": "https://jobs.ashbyhq.com/acme/a1",
				"publishedAt": "2026-02-10T09:00:00.000+00:00",
				"isListed": true,
				"compensation": {"compensationTierSummary": "$150K – $180K"}
			},
			{
				"id": "a2",
				"title": "Hidden Role",
				"location": "Remote",
				"jobUrl": "https://jobs.ashbyhq.com/acme/a2",
				"isListed": false
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posting-api/job-board/acme" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	jobs, err := NewAshbyBoard("acme", "Acme", testClient(srv)).FetchBoard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 listed job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "a1" || j.Description != "Join us." || j.Salary != "$150K – $180K" {
		t.Errorf("unexpected job: %+v", j)
	}
	if j.PostedAt == nil || j.PostedAt.Hour() != 9 {
		t.Errorf("unexpected PostedAt: %v", j.PostedAt)
	}
}
