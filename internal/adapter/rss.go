package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobsweep/internal/filter"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/retry"
	"github.com/amishk599/jobsweep/internal/textclean"
)

// Feed is one RSS/Atom job feed.
type Feed struct {
	URL             string
	Company         string // label used when the title names no company
	DefaultLocation string // used when items carry no location metadata
}

// DefaultFeeds are polled when the configuration lists none.
var DefaultFeeds = []Feed{
	{URL: "https://weworkremotely.com/categories/remote-programming-jobs.rss", Company: "We Work Remotely", DefaultLocation: "Remote"},
	{URL: "https://weworkremotely.com/categories/remote-full-stack-programming-jobs.rss", Company: "We Work Remotely", DefaultLocation: "Remote"},
	{URL: "https://remotive.com/remote-jobs/feed/software-dev", Company: "Remotive", DefaultLocation: "Remote"},
	{URL: "https://jobicy.com/?feed=job_feed&job_categories=dev", Company: "Jobicy", DefaultLocation: "Remote"},
}

// RSSConfig configures the RSS adapter.
type RSSConfig struct {
	Feeds    []Feed
	Disabled bool
}

// RSSAdapter polls a fixed list of job feeds concurrently and filters items
// inline by title and location.
type RSSAdapter struct {
	base
	feeds    []Feed
	disabled bool
}

// NewRSSAdapter creates an RSS adapter. An empty feed list falls back to DefaultFeeds.
func NewRSSAdapter(cfg RSSConfig, deps Deps) *RSSAdapter {
	feeds := cfg.Feeds
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &RSSAdapter{
		base:     newBase("rss", deps),
		feeds:    feeds,
		disabled: cfg.Disabled,
	}
}

func (a *RSSAdapter) IsEnabled() bool { return !a.disabled && len(a.feeds) > 0 }

func (a *RSSAdapter) RequiredEnv() []string { return nil }

// Feeds returns the configured feed list.
func (a *RSSAdapter) Feeds() []Feed { return a.feeds }

// FetchJobs polls every feed concurrently. A failing feed is logged and
// contributes nothing; results keep feed order.
func (a *RSSAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	results := make([][]model.ScrapedJob, len(a.feeds))
	errs := make([]error, len(a.feeds))

	// Goroutines always return nil so one feed failing never cancels the others.
	var g errgroup.Group
	for i, feed := range a.feeds {
		g.Go(func() error {
			jobs, err := a.fetchFeed(ctx, feed, f.Recent)
			if err != nil {
				a.logger.Warn("feed failed", "feed", feed.URL, "error", err)
				errs[i] = err
				return nil
			}
			results[i] = jobs
			return nil
		})
	}
	_ = g.Wait()

	var jobs []model.ScrapedJob
	for _, r := range results {
		jobs = append(jobs, r...)
	}

	if len(jobs) == 0 {
		failed := 0
		for _, err := range errs {
			if err != nil {
				failed++
			}
		}
		if failed == len(a.feeds) && failed > 0 {
			return nil, fmt.Errorf("rss: all %d feeds failed: %w", failed, errors.Join(errs...))
		}
	}
	return jobs, nil
}

func (a *RSSAdapter) fetchFeed(ctx context.Context, feed Feed, recent bool) ([]model.ScrapedJob, error) {
	var parsed *gofeed.Feed
	err := retry.Do(ctx, a.retry, a.logger, a.name, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

		resp, err := a.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching feed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			return &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        fmt.Errorf("fetching feed: unexpected status %d", resp.StatusCode),
			}
		}

		p, err := gofeed.NewParser().Parse(resp.Body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("parsing feed: %w", err))
		}
		parsed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]model.ScrapedJob, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		job, reason, ok := a.toScrapedJob(feed, item, recent)
		if !ok {
			a.logger.Debug("feed item rejected", "feed", feed.URL, "title", item.Title, "reason", reason)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (a *RSSAdapter) toScrapedJob(feed Feed, item *gofeed.Item, recent bool) (model.ScrapedJob, string, bool) {
	title, company := splitTitle(strings.TrimSpace(item.Title))
	if company == "" {
		company = feed.Company
	}

	if ok, reason := filter.RSSTitleCheck(title, recent); !ok {
		return model.ScrapedJob{}, reason, false
	}

	location := itemLocation(item, feed.DefaultLocation)
	switch filter.ClassifyLocation(location) {
	case filter.LocationUS, filter.LocationRemote:
	case filter.LocationForeign:
		return model.ScrapedJob{}, "foreign location", false
	default:
		return model.ScrapedJob{}, "unknown location", false
	}

	var postedAt *time.Time
	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		postedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		postedAt = &t
	}

	id := item.GUID
	if id == "" {
		id = item.Link
	}

	return model.ScrapedJob{
		ID:             id,
		Title:          title,
		Company:        company,
		Location:       location,
		PostedAt:       postedAt,
		SourceURL:      item.Link,
		Description:    textclean.BestDescription(item.Content, item.Description),
		OriginalSource: a.name,
		RawSourceData:  item,
	}, "", true
}

var (
	hiringTitleRegex = regexp.MustCompile(`(?i)^(.+?)\s+is\s+hiring(?:\s+an?)?\s*:?\s+(.+)$`)
	atTitleRegex     = regexp.MustCompile(`(?i)^(.+)\s+at\s+(.+)$`)
	colonTitleRegex  = regexp.MustCompile(`^([^:]+):\s+(.+)$`)
)

// splitTitle separates a combined feed title into role and company.
// Recognised shapes: "Role at Company", "Company is hiring Role" and
// "Company: Role". company is empty when no shape matches.
func splitTitle(raw string) (title, company string) {
	if m := hiringTitleRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1])
	}
	if m := atTitleRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if m := colonTitleRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1])
	}
	return raw, ""
}

// itemLocation picks the location from item metadata: the region or location
// custom elements first, then the first category that names a place.
func itemLocation(item *gofeed.Item, fallback string) string {
	for _, key := range []string{"region", "location", "job_location"} {
		if v := strings.TrimSpace(item.Custom[key]); v != "" {
			return v
		}
	}
	for _, c := range item.Categories {
		if filter.ClassifyLocation(c) != filter.LocationUnknown {
			return c
		}
	}
	return fallback
}
