package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/filter"
	"github.com/amishk599/jobsweep/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

const previewLength = 280

// SlackNotifier sends job alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration // between messages
	sleep      func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts each job to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// Notify sends each job as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.ScrapedJob) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 {
			s.sleep(s.pause)
		}

		if err := s.sendMessage(j); err != nil {
			s.logger.Error("slack notification failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}

	sent := len(jobs) - failures
	if failures == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failures)
	return nil
}

// maxSlackAttempts bounds the posts per message. Only a 429 earns another one.
const maxSlackAttempts = 2

func (s *SlackNotifier) sendMessage(j model.ScrapedJob) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	for attempt := 1; ; attempt++ {
		status, wait, err := s.post(body)
		if err != nil {
			return fmt.Errorf("post to slack (attempt %d): %w", attempt, err)
		}
		switch {
		case status == http.StatusOK:
			s.logger.Info("slack message sent", "company", j.Company, "title", j.Title, "attempts", attempt)
			return nil
		case status == http.StatusTooManyRequests && attempt < maxSlackAttempts:
			s.logger.Warn("slack rate limited, retrying", "retry_after", wait)
			s.sleep(wait)
		default:
			return fmt.Errorf("slack returned %d after %d attempt(s)", status, attempt)
		}
	}
}

// post sends one webhook request and returns the status with the server's
// requested wait.
func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, retryAfter(resp.Header.Get("Retry-After")), nil
}

// retryAfter reads a Retry-After seconds value. Anything unusable waits 1s.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string     `json:"type"`
	Text  *slackText `json:"text,omitempty"`
	URL   string     `json:"url,omitempty"`
	Style string     `json:"style,omitempty"`
}

// SampleJob is the placeholder posting sent when no real job is at hand.
func SampleJob(now time.Time) model.ScrapedJob {
	return model.ScrapedJob{
		ID:             "test-001",
		Company:        "jobsweep",
		Title:          "Test Notification: Integration Verified",
		Location:       "Everywhere",
		SourceURL:      "https://github.com/amishk599/jobsweep",
		PostedAt:       &now,
		Description:    "If you can read this, notifications are wired up.",
		OriginalSource: "test",
	}
}

// SendTestMessage pushes jobs through n to check the integration end to end.
// With no jobs it sends SampleJob.
func SendTestMessage(n model.Notifier, jobs ...model.ScrapedJob) error {
	if len(jobs) == 0 {
		jobs = []model.ScrapedJob{SampleJob(time.Now())}
	}
	return n.Notify(jobs)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// preview shortens a description to its first previewLength runes.
func preview(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	r := []rune(desc)
	if len(r) <= previewLength {
		return desc
	}
	return strings.TrimSpace(string(r[:previewLength])) + "…"
}

func buildPayload(j model.ScrapedJob) slackPayload {
	postedText := "Just detected"
	if j.PostedAt != nil {
		pst, err := time.LoadLocation("America/Los_Angeles")
		if err == nil {
			postedText = j.PostedAt.In(pst).Format(time.RFC1123)
		} else {
			postedText = j.PostedAt.Format(time.RFC1123)
		}
	}

	company := capitalize(j.Company)
	source := capitalize(j.OriginalSource)

	salary := j.Salary
	if salary == "" {
		salary = "Not listed"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🚀 " + company + ": " + j.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + company},
				{Type: "mrkdwn", Text: "*Location:*\n" + j.Location},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + postedText},
				{Type: "mrkdwn", Text: "*Source:*\n" + source},
				{Type: "mrkdwn", Text: "*Salary:*\n" + salary},
			},
		},
	}

	body := preview(j.Description)
	if filter.MentionsVisa(j) {
		body = strings.TrimSpace(body + "\n🛂 _Mentions visa sponsorship_")
	}
	if body != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: body},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  &slackText{Type: "plain_text", Text: "Apply Now"},
					URL:   j.SourceURL,
					Style: "primary",
				},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
