package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/jobsweep/internal/filter"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/retry"
)

// Supported ATS providers.
const (
	ProviderGreenhouse = "greenhouse"
	ProviderLever      = "lever"
	ProviderAshby      = "ashby"
)

// ATSTarget is one company board on a known ATS.
type ATSTarget struct {
	Company  string
	Provider string
	Slug     string
}

// DefaultATSTargets is the roster used when the configuration lists none.
var DefaultATSTargets = []ATSTarget{
	{Company: "Stripe", Provider: ProviderGreenhouse, Slug: "stripe"},
	{Company: "Airbnb", Provider: ProviderGreenhouse, Slug: "airbnb"},
	{Company: "Figma", Provider: ProviderGreenhouse, Slug: "figma"},
	{Company: "Discord", Provider: ProviderGreenhouse, Slug: "discord"},
	{Company: "Databricks", Provider: ProviderGreenhouse, Slug: "databricks"},
	{Company: "Robinhood", Provider: ProviderGreenhouse, Slug: "robinhood"},
	{Company: "Palantir", Provider: ProviderLever, Slug: "palantir"},
	{Company: "Plaid", Provider: ProviderLever, Slug: "plaid"},
	{Company: "Spotify", Provider: ProviderLever, Slug: "spotify"},
	{Company: "Ramp", Provider: ProviderAshby, Slug: "ramp"},
	{Company: "Notion", Provider: ProviderAshby, Slug: "notion"},
	{Company: "Linear", Provider: ProviderAshby, Slug: "linear"},
}

// boardFetcher lists every open posting on one company's board.
type boardFetcher interface {
	FetchBoard(ctx context.Context) ([]model.ScrapedJob, error)
}

// ATSRecord is the raw payload kept for ATS postings.
type ATSRecord struct {
	Provider string `json:"provider"`
	Slug     string `json:"slug"`
	Posting  any    `json:"posting"`
}

// ATSConfig configures the ATS adapter.
type ATSConfig struct {
	Targets  []ATSTarget
	Disabled bool
}

// ATSAdapter walks a roster of company boards one at a time, paced by the
// shared pacer, and keeps postings that pass the per-company keyword filter.
type ATSAdapter struct {
	base
	targets  []ATSTarget
	disabled bool
	boardFor func(t ATSTarget) (boardFetcher, error)
	now      func() time.Time
}

// NewATSAdapter creates an ATS adapter. An empty roster falls back to
// DefaultATSTargets.
func NewATSAdapter(cfg ATSConfig, deps Deps) *ATSAdapter {
	targets := cfg.Targets
	if len(targets) == 0 {
		targets = DefaultATSTargets
	}
	a := &ATSAdapter{
		base:     newBase("ats", deps),
		targets:  targets,
		disabled: cfg.Disabled,
		now:      time.Now,
	}
	a.boardFor = a.newBoard
	return a
}

func (a *ATSAdapter) IsEnabled() bool { return !a.disabled && len(a.targets) > 0 }

func (a *ATSAdapter) RequiredEnv() []string { return nil }

// Targets returns the configured roster.
func (a *ATSAdapter) Targets() []ATSTarget { return a.targets }

func (a *ATSAdapter) newBoard(t ATSTarget) (boardFetcher, error) {
	switch t.Provider {
	case ProviderGreenhouse:
		return NewGreenhouseBoard(t.Slug, t.Company, a.client), nil
	case ProviderLever:
		return NewLeverBoard(t.Slug, t.Company, a.client), nil
	case ProviderAshby:
		return NewAshbyBoard(t.Slug, t.Company, a.client), nil
	default:
		return nil, fmt.Errorf("unsupported ATS provider %q", t.Provider)
	}
}

// FetchJobs reads each board in roster order. A failing board is logged and
// skipped; a 429 from a provider skips that provider's remaining boards.
func (a *ATSAdapter) FetchJobs(ctx context.Context, f model.JobFilter) ([]model.ScrapedJob, error) {
	f = f.Normalize()
	kf := filter.NewKeywordFilter(f)
	now := a.now()

	var (
		jobs    []model.ScrapedJob
		limited = make(map[string]bool)
		failed  int
		lastErr error
	)

	for _, t := range a.targets {
		if limited[t.Provider] {
			continue
		}
		if err := a.pacer.Wait(ctx, a.name); err != nil {
			return jobs, err
		}

		board, err := a.boardFor(t)
		if err != nil {
			a.logger.Warn("skipping target", "company", t.Company, "ats", t.Provider, "error", err)
			failed++
			lastErr = err
			continue
		}

		var postings []model.ScrapedJob
		err = retry.Do(ctx, a.retry, a.logger, a.name, func(ctx context.Context) error {
			var err error
			postings, err = board.FetchBoard(ctx)
			return err
		})
		switch {
		case err == nil:
		case model.IsRateLimited(err):
			a.logger.Warn("rate limited, skipping provider", "ats", t.Provider, "company", t.Company)
			limited[t.Provider] = true
			continue
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return jobs, err
		default:
			a.logger.Warn("board fetch failed", "company", t.Company, "ats", t.Provider, "error", err)
			failed++
			lastErr = err
			continue
		}

		kept := 0
		for _, p := range postings {
			if !kf.Match(p) {
				continue
			}
			if f.Recent && !isRecent(p.PostedAt, now) {
				continue
			}
			p.OriginalSource = a.name
			p.RawSourceData = ATSRecord{Provider: t.Provider, Slug: t.Slug, Posting: p.RawSourceData}
			jobs = append(jobs, p)
			kept++
		}
		a.logger.Debug("board fetched", "company", t.Company, "ats", t.Provider, "postings", len(postings), "kept", kept)
	}

	if len(jobs) == 0 && failed > 0 && failed == len(a.targets) {
		return nil, fmt.Errorf("ats: all %d boards failed: %w", failed, lastErr)
	}
	return jobs, nil
}
