package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"` // HTML <li> items
}

type leverSalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"` // e.g. "per-year-salary"
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Lists            []leverList       `json:"lists"`
	Additional       string            `json:"additional"`
	Categories       leverCategories   `json:"categories"`
	CreatedAt        int64             `json:"createdAt"`
	WorkplaceType    string            `json:"workplaceType"`
	HostedURL        string            `json:"hostedUrl"`
	ApplyURL         string            `json:"applyUrl"`
	SalaryRange      *leverSalaryRange `json:"salaryRange"`
}

// LeverBoard lists postings from the Lever public postings API.
type LeverBoard struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverBoard creates a board reader for a Lever company slug.
func NewLeverBoard(companySlug string, companyName string, client *http.Client) *LeverBoard {
	return &LeverBoard{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// FetchBoard retrieves all postings and normalizes them into ScrapedJob.
func (b *LeverBoard) FetchBoard(ctx context.Context) ([]model.ScrapedJob, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, b.companySlug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", b.companySlug, err)
	}

	var leverJobs []leverJob
	if err := doJSON(b.client, req, &leverJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", b.companySlug, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(leverJobs))
	for _, lj := range leverJobs {
		// Determine location: prefer allLocations if available, fallback to location
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}
		if lj.WorkplaceType == "remote" && !strings.Contains(strings.ToLower(location), "remote") {
			location = joinNonEmpty(" - ", "Remote", location)
		}

		// Convert createdAt (Unix milliseconds) to time.Time
		var postedAt *time.Time
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			postedAt = &t
		}

		var salary string
		if sr := lj.SalaryRange; sr != nil {
			period := strings.TrimSuffix(strings.TrimPrefix(sr.Interval, "per-"), "-salary")
			salary = formatSalary(sr.Min, sr.Max, sr.Currency, period)
		}

		sourceURL := lj.HostedURL
		if sourceURL == "" {
			sourceURL = lj.ApplyURL
		}

		jobs = append(jobs, model.ScrapedJob{
			ID:             lj.ID,
			Title:          lj.Text,
			Company:        b.companyName,
			Location:       location,
			PostedAt:       postedAt,
			SourceURL:      sourceURL,
			Description:    textclean.BestDescription(leverHTML(lj), lj.DescriptionPlain),
			Salary:         salary,
			OriginalSource: "lever",
			RawSourceData:  lj,
		})
	}

	return jobs, nil
}

// leverHTML stitches the description, the titled lists and the closing
// section back into one HTML document.
func leverHTML(lj leverJob) string {
	var b strings.Builder
	b.WriteString(lj.Description)
	for _, l := range lj.Lists {
		b.WriteString("<h3>" + l.Text + "</h3><ul>" + l.Content + "</ul>")
	}
	b.WriteString(lj.Additional)
	return b.String()
}
