package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
)

const joobleBaseURL = "https://jooble.org/api"

type joobleJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Source   string      `json:"source"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Company  string      `json:"company"`
	Updated  string      `json:"updated"`
}

type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

type joobleRequest struct {
	Keywords        string `json:"keywords"`
	Location        string `json:"location,omitempty"`
	Page            string `json:"page"`
	DateCreatedFrom string `json:"datecreatedfrom,omitempty"`
}

// JoobleConfig configures the Jooble adapter.
type JoobleConfig struct {
	APIKey string
	Pages  int
}

// JoobleAdapter queries the Jooble REST API. The key is part of the URL path
// and queries are POSTed as JSON.
type JoobleAdapter struct {
	base
	cfg     JoobleConfig
	baseURL string
	now     func() time.Time
}

// NewJoobleAdapter creates a Jooble adapter.
func NewJoobleAdapter(cfg JoobleConfig, deps Deps) *JoobleAdapter {
	if cfg.Pages <= 0 {
		cfg.Pages = 2
	}
	return &JoobleAdapter{base: newBase("jooble", deps), cfg: cfg, baseURL: joobleBaseURL, now: time.Now}
}

func (a *JoobleAdapter) IsEnabled() bool { return a.cfg.APIKey != "" }

func (a *JoobleAdapter) RequiredEnv() []string { return []string{"JOOBLE_API_KEY"} }

// FetchJobs searches each keyword, up to the configured page count.
func (a *JoobleAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	return a.collectKeywords(ctx, f.Keywords, a.cfg.Pages, func(ctx context.Context, kw string, page int) ([]model.ScrapedJob, int, error) {
		return a.fetchPage(ctx, kw, page, f)
	})
}

func (a *JoobleAdapter) fetchPage(ctx context.Context, keyword string, page int, f model.JobFilter) ([]model.ScrapedJob, int, error) {
	body := joobleRequest{
		Keywords: keyword,
		Location: f.Location,
		Page:     strconv.Itoa(page),
	}
	if f.Recent {
		body.DateCreatedFrom = a.now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("jooble: encoding request: %w", err)
	}

	var resp joobleResponse
	err = a.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/"+a.cfg.APIKey, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, 0, fmt.Errorf("jooble %q page %d: %w", keyword, page, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		jobs = append(jobs, model.ScrapedJob{
			ID:             j.ID.String(),
			Title:          textclean.CleanHTMLToText(j.Title),
			Company:        j.Company,
			Location:       j.Location,
			PostedAt:       parseTime(j.Updated, "2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05", time.RFC3339),
			SourceURL:      j.Link,
			Description:    textclean.BestDescription(j.Snippet),
			Salary:         j.Salary,
			OriginalSource: a.name,
			RawSourceData:  j,
		})
	}
	return jobs, len(resp.Jobs), nil
}
