package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
)

const (
	jsearchBaseURL = "https://jsearch.p.rapidapi.com/search"
	jsearchHost    = "jsearch.p.rapidapi.com"
)

type jsearchJob struct {
	JobID             string   `json:"job_id"`
	EmployerName      string   `json:"employer_name"`
	JobTitle          string   `json:"job_title"`
	JobCity           string   `json:"job_city"`
	JobState          string   `json:"job_state"`
	JobCountry        string   `json:"job_country"`
	JobIsRemote       bool     `json:"job_is_remote"`
	JobPostedAtUTC    string   `json:"job_posted_at_datetime_utc"`
	JobPostedAtUnix   int64    `json:"job_posted_at_timestamp"`
	JobApplyLink      string   `json:"job_apply_link"`
	JobGoogleLink     string   `json:"job_google_link"`
	JobDescription    string   `json:"job_description"`
	JobMinSalary      *float64 `json:"job_min_salary"`
	JobMaxSalary      *float64 `json:"job_max_salary"`
	JobSalaryCurrency string   `json:"job_salary_currency"`
	JobSalaryPeriod   string   `json:"job_salary_period"`
	JobEmploymentType string   `json:"job_employment_type"`
	JobPublisher      string   `json:"job_publisher"`
	JobHighlights     struct {
		Qualifications   []string `json:"Qualifications"`
		Responsibilities []string `json:"Responsibilities"`
		Benefits         []string `json:"Benefits"`
	} `json:"job_highlights"`
}

type jsearchResponse struct {
	Status string       `json:"status"`
	Data   []jsearchJob `json:"data"`
}

// JSearchConfig configures the RapidAPI JSearch adapter.
type JSearchConfig struct {
	APIKey string
	Pages  int // pages per keyword
}

// JSearchAdapter queries the JSearch aggregator on RapidAPI.
type JSearchAdapter struct {
	base
	cfg     JSearchConfig
	baseURL string
}

// NewJSearchAdapter creates a JSearch adapter.
func NewJSearchAdapter(cfg JSearchConfig, deps Deps) *JSearchAdapter {
	if cfg.Pages <= 0 {
		cfg.Pages = 3
	}
	return &JSearchAdapter{base: newBase("jsearch", deps), cfg: cfg, baseURL: jsearchBaseURL}
}

func (a *JSearchAdapter) IsEnabled() bool { return a.cfg.APIKey != "" }

func (a *JSearchAdapter) RequiredEnv() []string { return []string{"JSEARCH_API_KEY"} }

// FetchJobs searches each keyword, up to the configured page count.
func (a *JSearchAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	return a.collectKeywords(ctx, f.Keywords, a.cfg.Pages, func(ctx context.Context, kw string, page int) ([]model.ScrapedJob, int, error) {
		return a.fetchPage(ctx, kw, page, f)
	})
}

func (a *JSearchAdapter) fetchPage(ctx context.Context, keyword string, page int, f model.JobFilter) ([]model.ScrapedJob, int, error) {
	query := keyword
	if f.Location != "" {
		query += " in " + f.Location
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")
	if f.Recent {
		params.Set("date_posted", "today")
	}
	reqURL := a.baseURL + "?" + params.Encode()

	var resp jsearchResponse
	err := a.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", a.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", jsearchHost)
		return req, nil
	}, &resp)
	if err != nil {
		return nil, 0, fmt.Errorf("jsearch %q page %d: %w", keyword, page, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(resp.Data))
	for _, j := range resp.Data {
		jobs = append(jobs, a.toScrapedJob(j))
	}
	return jobs, len(resp.Data), nil
}

func (a *JSearchAdapter) toScrapedJob(j jsearchJob) model.ScrapedJob {
	location := joinNonEmpty(", ", j.JobCity, j.JobState, j.JobCountry)
	if j.JobIsRemote {
		location = joinNonEmpty(" - ", "Remote", location)
	}

	postedAt := parseTime(j.JobPostedAtUTC, time.RFC3339, "2006-01-02T15:04:05.000Z")
	if postedAt == nil && j.JobPostedAtUnix > 0 {
		t := time.Unix(j.JobPostedAtUnix, 0).UTC()
		postedAt = &t
	}

	sourceURL := j.JobApplyLink
	if sourceURL == "" {
		sourceURL = j.JobGoogleLink
	}

	var min, max float64
	if j.JobMinSalary != nil {
		min = *j.JobMinSalary
	}
	if j.JobMaxSalary != nil {
		max = *j.JobMaxSalary
	}

	return model.ScrapedJob{
		ID:             j.JobID,
		Title:          j.JobTitle,
		Company:        j.EmployerName,
		Location:       location,
		PostedAt:       postedAt,
		SourceURL:      sourceURL,
		Description:    textclean.BestDescription(j.JobDescription, highlightsHTML(j)),
		Salary:         formatSalary(min, max, j.JobSalaryCurrency, j.JobSalaryPeriod),
		OriginalSource: a.name,
		RawSourceData:  j,
	}
}

// highlightsHTML renders the structured highlights as a list so they can stand
// in for a missing description.
func highlightsHTML(j jsearchJob) string {
	var out string
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		out += "<h3>" + title + "</h3><ul>"
		for _, it := range items {
			out += "<li>" + it + "</li>"
		}
		out += "</ul>"
	}
	section("Responsibilities", j.JobHighlights.Responsibilities)
	section("Qualifications", j.JobHighlights.Qualifications)
	section("Benefits", j.JobHighlights.Benefits)
	return out
}
