package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timePtr(t time.Time) *time.Time { return &t }

func sampleJob(title, company string) model.ScrapedJob {
	return model.ScrapedJob{
		ID:             "123",
		Company:        company,
		Title:          title,
		Location:       "Remote, US",
		SourceURL:      "https://example.com/apply",
		PostedAt:       timePtr(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
		OriginalSource: "jsearch",
	}
}

// newTestSlack returns a notifier that never sleeps and records requested waits.
func newTestSlack(srv *httptest.Server, slept *[]time.Duration) *SlackNotifier {
	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	n.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return n
}

func TestSlackNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)

	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.ScrapedJob{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	job := sampleJob("Backend Engineer", "acme Corp")
	job.Salary = "150000-180000 USD/year"

	if err := n.Notify([]model.ScrapedJob{job}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	header := payload.Blocks[0]
	if header.Text.Text != "🚀 Acme Corp: Backend Engineer" {
		t.Errorf("header text = %q, want company: title", header.Text.Text)
	}

	companyField := payload.Blocks[1].Fields[0]
	if companyField.Text != "*Company:*\nAcme Corp" {
		t.Errorf("company field = %q", companyField.Text)
	}

	fields := payload.Blocks[2].Fields
	if fields[1].Text != "*Source:*\nJsearch" {
		t.Errorf("source field = %q", fields[1].Text)
	}
	if fields[2].Text != "*Salary:*\n150000-180000 USD/year" {
		t.Errorf("salary field = %q", fields[2].Text)
	}

	actionURL := payload.Blocks[3].Elements[0].URL
	if actionURL != "https://example.com/apply" {
		t.Errorf("action URL = %q", actionURL)
	}
}

func TestSlackNotifier_MultipleJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var slept []time.Duration
	n := newTestSlack(srv, &slept)
	jobs := []model.ScrapedJob{
		sampleJob("Engineer 1", "A"),
		sampleJob("Engineer 2", "B"),
		sampleJob("Engineer 3", "C"),
	}

	if err := n.Notify(jobs); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
	if len(slept) != 2 || slept[0] != 500*time.Millisecond {
		t.Errorf("pauses = %v, want two 500ms gaps", slept)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	jobs := []model.ScrapedJob{
		sampleJob("A", "X"),
		sampleJob("B", "Y"),
		sampleJob("C", "Z"),
	}

	if err := n.Notify(jobs); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	jobs := []model.ScrapedJob{
		sampleJob("Fails", "A"),
		sampleJob("Succeeds", "B"),
	}

	if err := n.Notify(jobs); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var slept []time.Duration
	n := newTestSlack(srv, &slept)
	if err := n.Notify([]model.ScrapedJob{sampleJob("Rate Limited Job", "Test")}); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Errorf("slept = %v, want [3s]", slept)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	job := model.ScrapedJob{
		ID:             "456",
		Company:        "TestCo",
		Title:          "SRE",
		Location:       "New York, NY",
		SourceURL:      "https://example.com/sre",
		OriginalSource: "ats",
		Description:    "Keep things running. We offer H-1B visa sponsorship.",
	}

	if err := n.Notify([]model.ScrapedJob{job}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[1].Type != "section" || len(payload.Blocks[1].Fields) != 2 {
		t.Errorf("block[1] not a 2-field section")
	}
	if payload.Blocks[2].Type != "section" || len(payload.Blocks[2].Fields) != 3 {
		t.Fatalf("block[2] not a 3-field section")
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*Posted:*\nJust detected" {
		t.Errorf("posted field = %q, want 'Just detected' for nil PostedAt", got)
	}
	if got := payload.Blocks[2].Fields[2].Text; got != "*Salary:*\nNot listed" {
		t.Errorf("salary field = %q", got)
	}
	preview := payload.Blocks[3]
	if preview.Type != "section" || preview.Text == nil || !strings.Contains(preview.Text.Text, "visa sponsorship") {
		t.Errorf("block[3] = %+v, want description preview with visa note", preview)
	}
	if payload.Blocks[4].Type != "actions" || len(payload.Blocks[4].Elements) != 1 {
		t.Errorf("block[4] not a single-element actions block")
	}
	if payload.Blocks[4].Elements[0].Style != "primary" {
		t.Errorf("button style = %q, want primary", payload.Blocks[4].Elements[0].Style)
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("block[5] type = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := preview(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("preview not truncated: %q", got)
	}
	if n := len([]rune(got)); n > previewLength+1 {
		t.Errorf("preview length = %d, want <= %d", n, previewLength+1)
	}
	if preview("  short   text ") != "short text" {
		t.Errorf("preview did not collapse whitespace")
	}
}

func TestSendTestMessage(t *testing.T) {
	var got []model.ScrapedJob
	rec := notifierFunc(func(jobs []model.ScrapedJob) error {
		got = jobs
		return nil
	})
	if err := SendTestMessage(rec); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if len(got) != 1 || got[0].OriginalSource != "test" {
		t.Errorf("got %+v, want one test job", got)
	}
}

func TestSendTestMessage_UsesGivenJob(t *testing.T) {
	var got []model.ScrapedJob
	rec := notifierFunc(func(jobs []model.ScrapedJob) error {
		got = jobs
		return nil
	})
	collected := sampleJob("Backend Engineer", "Acme")
	if err := SendTestMessage(rec, collected); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Backend Engineer" || got[0].OriginalSource != "jsearch" {
		t.Errorf("got %+v, want the collected job", got)
	}
}

func TestSlackNotifier_RateLimitedTwiceGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "soon")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var slept []time.Duration
	n := newTestSlack(srv, &slept)
	err := n.Notify([]model.ScrapedJob{sampleJob("Busy Job", "Test")})
	if err == nil {
		t.Fatal("expected an error when every attempt is rate limited")
	}
	if c := calls.Load(); c != maxSlackAttempts {
		t.Errorf("calls = %d, want %d", c, maxSlackAttempts)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("slept = %v, want [1s] for an unparseable Retry-After", slept)
	}
}

type notifierFunc func([]model.ScrapedJob) error

func (f notifierFunc) Notify(jobs []model.ScrapedJob) error { return f(jobs) }
