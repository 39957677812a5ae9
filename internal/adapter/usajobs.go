package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
	"github.com/amishk599/jobsweep/internal/validate"
)

const (
	usajobsBaseURL  = "https://data.usajobs.gov/api/search"
	usajobsHost     = "data.usajobs.gov"
	usajobsMaxPages = 3
)

type usajobsRemuneration struct {
	MinimumRange     string `json:"MinimumRange"`
	MaximumRange     string `json:"MaximumRange"`
	RateIntervalCode string `json:"RateIntervalCode"`
}

type usajobsDescriptor struct {
	PositionID              string                `json:"PositionID"`
	PositionTitle           string                `json:"PositionTitle"`
	PositionURI             string                `json:"PositionURI"`
	ApplyURI                []string              `json:"ApplyURI"`
	PositionLocationDisplay string                `json:"PositionLocationDisplay"`
	OrganizationName        string                `json:"OrganizationName"`
	DepartmentName          string                `json:"DepartmentName"`
	PublicationStartDate    string                `json:"PublicationStartDate"`
	QualificationSummary    string                `json:"QualificationSummary"`
	PositionRemuneration    []usajobsRemuneration `json:"PositionRemuneration"`
	UserArea                struct {
		Details struct {
			JobSummary      string   `json:"JobSummary"`
			MajorDuties     []string `json:"MajorDuties"`
			Education       string   `json:"Education"`
			Requirements    string   `json:"Requirements"`
			Evaluations     string   `json:"Evaluations"`
			HowToApply      string   `json:"HowToApply"`
			RemoteIndicator bool     `json:"RemoteIndicator"`
		} `json:"Details"`
	} `json:"UserArea"`
}

type usajobsItem struct {
	MatchedObjectID         string            `json:"MatchedObjectId"`
	MatchedObjectDescriptor usajobsDescriptor `json:"MatchedObjectDescriptor"`
}

type usajobsResponse struct {
	SearchResult struct {
		SearchResultCount int           `json:"SearchResultCount"`
		SearchResultItems []usajobsItem `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

// USAJobsConfig configures the USAJOBS adapter. The API identifies callers by
// the email address sent as User-Agent.
type USAJobsConfig struct {
	APIKey         string
	Email          string
	ResultsPerPage int
	Validator      *validate.Validator // nil means the default minimum length
}

// USAJobsAdapter queries the federal USAJOBS search API. The feed mixes in
// many non-engineering postings, so every record must also pass the
// description validator before it is returned.
type USAJobsAdapter struct {
	base
	cfg       USAJobsConfig
	baseURL   string
	validator *validate.Validator
}

// NewUSAJobsAdapter creates a USAJOBS adapter.
func NewUSAJobsAdapter(cfg USAJobsConfig, deps Deps) *USAJobsAdapter {
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 100
	}
	v := cfg.Validator
	if v == nil {
		v = validate.New(validate.DefaultMinDescriptionLength)
	}
	return &USAJobsAdapter{
		base:      newBase("usajobs", deps),
		cfg:       cfg,
		baseURL:   usajobsBaseURL,
		validator: v,
	}
}

func (a *USAJobsAdapter) IsEnabled() bool { return a.cfg.APIKey != "" && a.cfg.Email != "" }

func (a *USAJobsAdapter) RequiredEnv() []string { return []string{"USAJOBS_API_KEY", "USAJOBS_EMAIL"} }

// FetchJobs searches each keyword across at most three pages.
func (a *USAJobsAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	return a.collectKeywords(ctx, f.Keywords, usajobsMaxPages, func(ctx context.Context, kw string, page int) ([]model.ScrapedJob, int, error) {
		return a.fetchPage(ctx, kw, page, f)
	})
}

func (a *USAJobsAdapter) fetchPage(ctx context.Context, keyword string, page int, f model.JobFilter) ([]model.ScrapedJob, int, error) {
	params := url.Values{}
	params.Set("Keyword", keyword)
	params.Set("Page", strconv.Itoa(page))
	params.Set("ResultsPerPage", strconv.Itoa(a.cfg.ResultsPerPage))
	if f.Recent {
		params.Set("DatePosted", "1")
	}
	if f.Location != "" {
		params.Set("LocationName", f.Location)
	}
	reqURL := a.baseURL + "?" + params.Encode()

	var resp usajobsResponse
	err := a.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Host = usajobsHost
		req.Header.Set("User-Agent", a.cfg.Email)
		req.Header.Set("Authorization-Key", a.cfg.APIKey)
		return req, nil
	}, &resp)
	if err != nil {
		return nil, 0, fmt.Errorf("usajobs %q page %d: %w", keyword, page, err)
	}

	items := resp.SearchResult.SearchResultItems
	jobs := make([]model.ScrapedJob, 0, len(items))
	for _, it := range items {
		job := a.toScrapedJob(it)
		if res := a.validator.JobDescription(job.Description); !res.Valid {
			a.logger.Debug("dropping posting with unusable description",
				"title", job.Title,
				"reason", res.Reason,
				"length", res.Length,
			)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, len(items), nil
}

func (a *USAJobsAdapter) toScrapedJob(it usajobsItem) model.ScrapedJob {
	d := it.MatchedObjectDescriptor
	details := d.UserArea.Details

	var body strings.Builder
	section := func(title, content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		body.WriteString("<h2>" + title + "</h2><p>" + content + "</p>")
	}
	section("Summary", details.JobSummary)
	if len(details.MajorDuties) > 0 {
		body.WriteString("<h2>Duties</h2><ul>")
		for _, duty := range details.MajorDuties {
			body.WriteString("<li>" + duty + "</li>")
		}
		body.WriteString("</ul>")
	}
	section("Qualifications", d.QualificationSummary)
	section("Requirements", details.Requirements)
	section("Education", details.Education)
	section("How You Will Be Evaluated", details.Evaluations)
	section("How to Apply", details.HowToApply)

	location := d.PositionLocationDisplay
	if details.RemoteIndicator {
		location = joinNonEmpty(" - ", "Remote", location)
	}

	company := d.OrganizationName
	if company == "" {
		company = d.DepartmentName
	}

	var salary string
	if len(d.PositionRemuneration) > 0 {
		r := d.PositionRemuneration[0]
		salary = formatSalary(parseAmount(r.MinimumRange), parseAmount(r.MaximumRange), "USD", strings.TrimPrefix(r.RateIntervalCode, "Per "))
	}

	id := d.PositionID
	if id == "" {
		id = it.MatchedObjectID
	}

	return model.ScrapedJob{
		ID:             id,
		Title:          d.PositionTitle,
		Company:        company,
		Location:       location,
		PostedAt:       parseTime(d.PublicationStartDate, "2006-01-02T15:04:05.0000", "2006-01-02T15:04:05", time.RFC3339),
		SourceURL:      d.PositionURI,
		Description:    textclean.BestDescription(body.String(), d.QualificationSummary),
		Salary:         salary,
		OriginalSource: a.name,
		RawSourceData:  it,
	}
}
