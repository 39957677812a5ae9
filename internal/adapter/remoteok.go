package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/textclean"
)

const remoteOKBaseURL = "https://remoteok.com/api"

type remoteOKJob struct {
	ID          json.Number `json:"id"`
	Slug        string      `json:"slug"`
	Epoch       int64       `json:"epoch"`
	Date        string      `json:"date"`
	Company     string      `json:"company"`
	Position    string      `json:"position"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	SalaryMin   float64     `json:"salary_min"`
	SalaryMax   float64     `json:"salary_max"`
	URL         string      `json:"url"`
	ApplyURL    string      `json:"apply_url"`
}

// RemoteOKConfig configures the RemoteOK adapter.
type RemoteOKConfig struct {
	Disabled bool
}

// RemoteOKAdapter reads the public RemoteOK JSON board. It needs no
// credentials.
type RemoteOKAdapter struct {
	base
	cfg     RemoteOKConfig
	baseURL string
	now     func() time.Time
}

// NewRemoteOKAdapter creates a RemoteOK adapter.
func NewRemoteOKAdapter(cfg RemoteOKConfig, deps Deps) *RemoteOKAdapter {
	return &RemoteOKAdapter{base: newBase("remoteok", deps), cfg: cfg, baseURL: remoteOKBaseURL, now: time.Now}
}

func (a *RemoteOKAdapter) IsEnabled() bool { return !a.cfg.Disabled }

func (a *RemoteOKAdapter) RequiredEnv() []string { return nil }

// FetchJobs queries the board once per keyword using the keyword as a tag.
func (a *RemoteOKAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	return a.collectKeywords(ctx, f.Keywords, 1, func(ctx context.Context, kw string, _ int) ([]model.ScrapedJob, int, error) {
		return a.fetchTag(ctx, kw, f)
	})
}

func (a *RemoteOKAdapter) fetchTag(ctx context.Context, keyword string, f model.JobFilter) ([]model.ScrapedJob, int, error) {
	tag := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(keyword)), " ", "-")
	reqURL := a.baseURL + "?tag=" + url.QueryEscape(tag)

	var raw []json.RawMessage
	err := a.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}, &raw)
	if err != nil {
		return nil, 0, fmt.Errorf("remoteok %q: %w", keyword, err)
	}

	// The first element is a legal notice, not a job.
	if len(raw) > 0 {
		raw = raw[1:]
	}

	now := a.now()
	jobs := make([]model.ScrapedJob, 0, len(raw))
	for _, msg := range raw {
		var j remoteOKJob
		if err := json.Unmarshal(msg, &j); err != nil {
			a.logger.Warn("skipping malformed posting", "error", err)
			continue
		}
		if j.Position == "" {
			continue
		}
		job := a.toScrapedJob(j)
		if f.Recent && !isRecent(job.PostedAt, now) {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, len(raw), nil
}

func (a *RemoteOKAdapter) toScrapedJob(j remoteOKJob) model.ScrapedJob {
	var postedAt *time.Time
	if j.Epoch > 0 {
		t := time.Unix(j.Epoch, 0).UTC()
		postedAt = &t
	} else {
		postedAt = parseTime(j.Date, time.RFC3339)
	}

	// Every RemoteOK posting is remote; the location field only narrows the
	// region.
	location := strings.TrimSpace(j.Location)
	switch {
	case location == "":
		location = "Remote"
	case !strings.Contains(strings.ToLower(location), "remote"):
		location = "Remote - " + location
	}

	sourceURL := j.URL
	if sourceURL == "" {
		sourceURL = j.ApplyURL
	}

	return model.ScrapedJob{
		ID:             j.ID.String(),
		Title:          j.Position,
		Company:        j.Company,
		Location:       location,
		PostedAt:       postedAt,
		SourceURL:      sourceURL,
		Description:    textclean.BestDescription(j.Description),
		Salary:         formatSalary(j.SalaryMin, j.SalaryMax, "USD", "year"),
		OriginalSource: a.name,
		RawSourceData:  j,
	}
}
