package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/quota"
)

func jsearchPayload(n int, page string) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{
			"job_id": "p%s-%d",
			"employer_name": "Acme",
			"job_title": "Software Engineer %d",
			"job_city": "Austin",
			"job_state": "TX",
			"job_country": "US",
			"job_is_remote": false,
			"job_posted_at_datetime_utc": "2026-03-01T12:00:00.000Z",
			"job_apply_link": "https://acme.example/jobs/%s-%d",
			"job_description": "Write Go.",
			"job_min_salary": 90000,
			"job_max_salary": 120000,
			"job_salary_currency": "USD",
			"job_salary_period": "YEAR"
		}`, page, i, i, page, i))
	}
	return `{"status": "OK", "data": [` + strings.Join(items, ",") + `]}`
}

func TestJSearch_PaginatesUntilEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("X-RapidAPI-Host") != jsearchHost {
			t.Errorf("unexpected host header %q", r.Header.Get("X-RapidAPI-Host"))
		}
		q := r.URL.Query()
		if q.Get("query") != "golang in Austin" {
			t.Errorf("unexpected query %q", q.Get("query"))
		}
		if q.Get("date_posted") != "today" {
			t.Errorf("expected date_posted=today for recent searches")
		}
		page := q.Get("page")
		switch page {
		case "1":
			w.Write([]byte(jsearchPayload(2, page)))
		case "2":
			w.Write([]byte(jsearchPayload(1, page)))
		default:
			w.Write([]byte(`{"status": "OK", "data": []}`))
		}
	}))
	defer srv.Close()

	a := NewJSearchAdapter(JSearchConfig{APIKey: "test-key", Pages: 5}, testDeps(srv))
	jobs, err := a.FetchJobs(context.Background(), model.JobFilter{Keywords: []string{"golang"}, Location: "Austin", Recent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls (stop at first empty page), got %d", got)
	}

	j := jobs[0]
	if j.Location != "Austin, TX, US" {
		t.Errorf("unexpected location %q", j.Location)
	}
	if j.Salary != "90000-120000 USD/year" {
		t.Errorf("unexpected salary %q", j.Salary)
	}
	if j.OriginalSource != "jsearch" {
		t.Errorf("unexpected source %q", j.OriginalSource)
	}
	if j.PostedAt == nil || j.PostedAt.Day() != 1 {
		t.Errorf("unexpected PostedAt %v", j.PostedAt)
	}
	if j.RawSourceData == nil {
		t.Error("expected raw source data to be kept")
	}
}

func TestJSearch_DefaultKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query"); q != model.DefaultKeyword {
			t.Errorf("expected default keyword, got %q", q)
		}
		w.Write([]byte(`{"status": "OK", "data": []}`))
	}))
	defer srv.Close()

	a := NewJSearchAdapter(JSearchConfig{APIKey: "k"}, testDeps(srv))
	if _, err := a.FetchJobs(context.Background(), model.JobFilter{Keywords: []string{"  "}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSearch_RateLimitIsSoftEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewJSearchAdapter(JSearchConfig{APIKey: "k"}, testDeps(srv))
	jobs, err := a.FetchJobs(context.Background(), model.JobFilter{Keywords: []string{"go", "rust"}})
	if err != nil {
		t.Fatalf("429 should not be an error, got %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected the first 429 to stop the adapter, got %d calls", got)
	}
}

func TestJSearch_AllCallsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewJSearchAdapter(JSearchConfig{APIKey: "k"}, testDeps(srv))
	if _, err := a.FetchJobs(context.Background(), model.JobFilter{Keywords: []string{"go", "rust"}}); err == nil {
		t.Fatal("expected error when every call fails")
	}
}

func TestJSearch_FailedKeywordDoesNotStopOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") == "go" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if q.Get("page") == "1" {
			w.Write([]byte(jsearchPayload(1, "1")))
			return
		}
		w.Write([]byte(`{"status": "OK", "data": []}`))
	}))
	defer srv.Close()

	a := NewJSearchAdapter(JSearchConfig{APIKey: "k"}, testDeps(srv))
	jobs, err := a.FetchJobs(context.Background(), model.JobFilter{Keywords: []string{"go", "rust"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job from the healthy keyword, got %d", len(jobs))
	}
}

func TestJSearch_StopsWhenQuotaExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(jsearchPayload(1, r.URL.Query().Get("page"))))
	}))
	defer srv.Close()

	deps := testDeps(srv)
	deps.Quota = quota.NewMemoryStore(quota.Limits{"jsearch": 1})
	a := NewJSearchAdapter(JSearchConfig{APIKey: "k", Pages: 3}, deps)

	jobs, err := a.FetchJobs(context.Background(), model.JobFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || calls.Load() != 1 {
		t.Errorf("expected 1 job from 1 call, got %d jobs from %d calls", len(jobs), calls.Load())
	}
}

func TestJSearch_IsEnabled(t *testing.T) {
	if NewJSearchAdapter(JSearchConfig{}, Deps{}).IsEnabled() {
		t.Error("expected adapter without key to be disabled")
	}
	a := NewJSearchAdapter(JSearchConfig{APIKey: "k"}, Deps{})
	if !a.IsEnabled() {
		t.Error("expected adapter with key to be enabled")
	}
	if env := a.RequiredEnv(); len(env) != 1 || env[0] != "JSEARCH_API_KEY" {
		t.Errorf("unexpected RequiredEnv %v", env)
	}
}
