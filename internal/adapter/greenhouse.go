package adapter

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	UpdatedAt      string             `json:"updated_at"`
	FirstPublished string             `json:"first_published"`
	Content        string             `json:"content"` // HTML, entity-encoded
	CompanyName    string             `json:"company_name"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseBoard lists postings from the Greenhouse public boards API.
type GreenhouseBoard struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseBoard creates a board reader for a Greenhouse board token.
func NewGreenhouseBoard(boardToken string, companyName string, client *http.Client) *GreenhouseBoard {
	return &GreenhouseBoard{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// FetchBoard retrieves every posting on the board, descriptions included,
// and normalizes them into ScrapedJob.
func (b *GreenhouseBoard) FetchBoard(ctx context.Context) ([]model.ScrapedJob, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, b.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", b.boardToken, err)
	}

	var ghResp greenhouseResponse
	if err := doJSON(b.client, req, &ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", b.boardToken, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		// first_published is when the role went live; updated_at moves on
		// every edit.
		postedAt := parseTime(gj.FirstPublished, time.RFC3339)
		if postedAt == nil {
			postedAt = parseTime(gj.UpdatedAt, time.RFC3339)
		}

		jobs = append(jobs, model.ScrapedJob{
			ID:             strconv.FormatInt(gj.ID, 10),
			Title:          gj.Title,
			Company:        b.companyName,
			Location:       gj.Location.Name,
			PostedAt:       postedAt,
			SourceURL:      gj.AbsoluteURL,
			Description:    textclean.BestDescription(html.UnescapeString(gj.Content)),
			OriginalSource: "greenhouse",
			RawSourceData:  gj,
		})
	}

	return jobs, nil
}
