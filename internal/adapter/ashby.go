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

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	IsRemote         bool   `json:"isRemote"`
	DescriptionHTML  string `json:"descriptionHtml"`
	DescriptionPlain string `json:"descriptionPlain"`
	JobUrl           string `json:"jobUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
	Compensation     *struct {
		Summary string `json:"compensationTierSummary"`
	} `json:"compensation"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyBoard lists postings from the Ashby public job board API.
type AshbyBoard struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbyBoard creates a board reader for an Ashby job board.
func NewAshbyBoard(boardToken string, companyName string, client *http.Client) *AshbyBoard {
	return &AshbyBoard{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// FetchBoard retrieves the listed postings and normalizes them into ScrapedJob.
func (b *AshbyBoard) FetchBoard(ctx context.Context) ([]model.ScrapedJob, error) {
	url := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyBaseURL, b.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", b.boardToken, err)
	}

	var ashbyResp ashbyResponse
	if err := doJSON(b.client, req, &ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", b.boardToken, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}

		location := aj.Location
		if aj.IsRemote && !strings.Contains(strings.ToLower(location), "remote") {
			location = joinNonEmpty(" - ", "Remote", location)
		}

		id := aj.ID
		if id == "" {
			id = aj.JobUrl
		}

		var salary string
		if aj.Compensation != nil {
			salary = aj.Compensation.Summary
		}

		jobs = append(jobs, model.ScrapedJob{
			ID:             id,
			Title:          aj.Title,
			Company:        b.companyName,
			Location:       location,
			PostedAt:       parseTime(aj.PublishedAt, time.RFC3339),
			SourceURL:      aj.JobUrl,
			Description:    textclean.BestDescription(aj.DescriptionHTML, aj.DescriptionPlain),
			Salary:         salary,
			OriginalSource: "ashby",
			RawSourceData:  aj,
		})
	}

	return jobs, nil
}
