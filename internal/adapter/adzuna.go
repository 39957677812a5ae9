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

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

type adzunaJob struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Created      string  `json:"created"`
	RedirectURL  string  `json:"redirect_url"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	Predicted    string  `json:"salary_is_predicted"`
	ContractTime string  `json:"contract_time"`
	Company      struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location     struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
	} `json:"location"`
}

type adzunaResponse struct {
	Count   int         `json:"count"`
	Results []adzunaJob `json:"results"`
}

// AdzunaConfig configures the Adzuna adapter.
type AdzunaConfig struct {
	AppID          string
	AppKey         string
	Country        string // two-letter country code in the URL path
	Pages          int
	ResultsPerPage int
}

// AdzunaAdapter queries the Adzuna search API.
type AdzunaAdapter struct {
	base
	cfg     AdzunaConfig
	baseURL string
}

// NewAdzunaAdapter creates an Adzuna adapter.
func NewAdzunaAdapter(cfg AdzunaConfig, deps Deps) *AdzunaAdapter {
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.Pages <= 0 {
		cfg.Pages = 2
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 50
	}
	return &AdzunaAdapter{base: newBase("adzuna", deps), cfg: cfg, baseURL: adzunaBaseURL}
}

func (a *AdzunaAdapter) IsEnabled() bool { return a.cfg.AppID != "" && a.cfg.AppKey != "" }

func (a *AdzunaAdapter) RequiredEnv() []string { return []string{"ADZUNA_APP_ID", "ADZUNA_APP_KEY"} }

// FetchJobs searches each keyword, up to the configured page count.
func (a *AdzunaAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	return a.collectKeywords(ctx, f.Keywords, a.cfg.Pages, func(ctx context.Context, kw string, page int) ([]model.ScrapedJob, int, error) {
		return a.fetchPage(ctx, kw, page, f)
	})
}

func (a *AdzunaAdapter) fetchPage(ctx context.Context, keyword string, page int, f model.JobFilter) ([]model.ScrapedJob, int, error) {
	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("what", keyword)
	params.Set("results_per_page", strconv.Itoa(a.cfg.ResultsPerPage))
	params.Set("content-type", "application/json")
	if f.Location != "" {
		params.Set("where", f.Location)
	}
	if f.Recent {
		params.Set("max_days_old", "1")
	}
	reqURL := fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.cfg.Country, page, params.Encode())

	var resp adzunaResponse
	err := a.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}, &resp)
	if err != nil {
		return nil, 0, fmt.Errorf("adzuna %q page %d: %w", keyword, page, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(resp.Results))
	for _, j := range resp.Results {
		jobs = append(jobs, a.toScrapedJob(j))
	}
	return jobs, len(resp.Results), nil
}

func (a *AdzunaAdapter) toScrapedJob(j adzunaJob) model.ScrapedJob {
	location := j.Location.DisplayName
	if location == "" && len(j.Location.Area) > 0 {
		location = j.Location.Area[len(j.Location.Area)-1]
	}
	// Adzuna reports US jobs with bare city names; keep the country so the
	// location classifier can place them.
	if len(j.Location.Area) > 0 && j.Location.Area[0] == "US" {
		location = joinNonEmpty(", ", location, "US")
	}

	salary := ""
	if j.Predicted != "1" {
		salary = formatSalary(j.SalaryMin, j.SalaryMax, "USD", "year")
	}

	return model.ScrapedJob{
		ID:             j.ID,
		Title:          textclean.CleanHTMLToText(j.Title),
		Company:        j.Company.DisplayName,
		Location:       location,
		PostedAt:       parseTime(j.Created, time.RFC3339),
		SourceURL:      j.RedirectURL,
		Description:    textclean.BestDescription(j.Description),
		Salary:         salary,
		OriginalSource: a.name,
		RawSourceData:  j,
	}
}
