// Package coordinator fans a search out to every enabled job source, merges
// what comes back and runs it through the curation stages.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobsweep/internal/filter"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/validate"
)

// Rejection stages, used as keys in Report.Rejected.
const (
	StageWhitelist = "whitelist"
	StageBlacklist = "blacklist"
	StageLocation  = "location"
	StageDate      = "date"
	StageQuality   = "quality"
)

// Report describes one run for observability and tuning.
type Report struct {
	Sources      []string            `json:"sources"` // enabled sources, in registration order
	PerSource    map[string]int      `json:"per_source"`
	SourceErrors map[string]string   `json:"source_errors,omitempty"`
	MissingEnv   map[string][]string `json:"missing_env,omitempty"`

	Fetched     int            `json:"fetched"`
	Dropped     int            `json:"dropped"` // missing title or source url
	Duplicates  int            `json:"duplicates"`
	Rejected    map[string]int `json:"rejected"`
	Prioritized int            `json:"prioritized"`
	Returned    int            `json:"returned"`
}

// Result is the outcome of one run.
type Result struct {
	RunID  string             `json:"run_id"`
	Jobs   []model.ScrapedJob `json:"jobs"`
	Report Report             `json:"report"`
}

// Coordinator owns the source roster and the curation pipeline.
type Coordinator struct {
	sources       []model.Source
	logger        *slog.Logger
	now           func() time.Time
	validator     *validate.Validator
	sourceTimeout time.Duration
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the clock used by the freshness stage.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithValidator overrides the description validator used by the quality stage.
func WithValidator(v *validate.Validator) Option {
	return func(c *Coordinator) { c.validator = v }
}

// WithSourceTimeout bounds each source call. Zero means no bound.
func WithSourceTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.sourceTimeout = d }
}

// New creates a coordinator over the given sources.
func New(sources []model.Source, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		sources:   sources,
		logger:    logger,
		now:       time.Now,
		validator: validate.New(validate.DefaultMinDescriptionLength),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns every registered source, enabled or not.
func (c *Coordinator) Sources() []model.Source { return c.sources }

// FetchAllJobs runs the pipeline and returns only the curated jobs.
func (c *Coordinator) FetchAllJobs(ctx context.Context, f model.JobFilter) []model.ScrapedJob {
	return c.Run(ctx, f).Jobs
}

// Run fetches from every enabled source concurrently, waits for all of them
// to settle, then dedups, filters and orders the union. It never fails: a
// degraded run simply returns fewer jobs, with the reasons in the report.
func (c *Coordinator) Run(ctx context.Context, f model.JobFilter) Result {
	f = f.Normalize()
	res := Result{
		RunID: uuid.NewString(),
		Report: Report{
			PerSource:    make(map[string]int),
			SourceErrors: make(map[string]string),
			Rejected: map[string]int{
				StageWhitelist: 0,
				StageBlacklist: 0,
				StageLocation:  0,
				StageDate:      0,
				StageQuality:   0,
			},
		},
	}
	logger := c.logger.With("run_id", res.RunID)

	var enabled []model.Source
	for _, s := range c.sources {
		if s.IsEnabled() {
			enabled = append(enabled, s)
			res.Report.Sources = append(res.Report.Sources, s.Name())
		}
	}

	if len(enabled) == 0 {
		res.Report.MissingEnv = MissingCredentials(c.sources)
		logger.Error("no job sources enabled, set credentials to enable them",
			"missing_env", formatMissing(res.Report.MissingEnv),
		)
		return res
	}

	logger.Info("fetching jobs",
		"sources", strings.Join(res.Report.Sources, ","),
		"keywords", strings.Join(f.Keywords, ","),
		"recent", f.Recent,
	)

	results := c.fetchAll(ctx, enabled, f)

	var merged []model.ScrapedJob
	for _, r := range results {
		if !r.OK() {
			res.Report.SourceErrors[r.Source] = r.Err.Error()
			logger.Warn("source failed", "source", r.Source, "duration", r.Duration, "error", r.Err)
			continue
		}
		res.Report.PerSource[r.Source] = len(r.Jobs)
		logger.Info("source fetched", "source", r.Source, "count", len(r.Jobs), "duration", r.Duration)
		merged = append(merged, r.Jobs...)
	}
	res.Report.Fetched = len(merged)

	res.Jobs = c.curate(merged, f, &res.Report, logger)
	res.Report.Returned = len(res.Jobs)

	logger.Info("curation complete",
		"fetched", res.Report.Fetched,
		"dropped", res.Report.Dropped,
		"duplicates", res.Report.Duplicates,
		"whitelist", res.Report.Rejected[StageWhitelist],
		"blacklist", res.Report.Rejected[StageBlacklist],
		"location", res.Report.Rejected[StageLocation],
		"date", res.Report.Rejected[StageDate],
		"quality", res.Report.Rejected[StageQuality],
		"prioritized", res.Report.Prioritized,
		"returned", res.Report.Returned,
	)
	return res
}

// fetchAll calls every source in its own goroutine and returns one settled
// result per source, in source order. Goroutines never return an error, so a
// failing source cannot cancel its siblings.
func (c *Coordinator) fetchAll(ctx context.Context, sources []model.Source, f model.JobFilter) []model.FetchResult {
	results := make([]model.FetchResult, len(sources))

	var g errgroup.Group
	for i, s := range sources {
		g.Go(func() error {
			results[i] = c.fetchOne(ctx, s, f)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetchOne converts a source call, including a panic, into a FetchResult.
func (c *Coordinator) fetchOne(ctx context.Context, s model.Source, f model.JobFilter) (res model.FetchResult) {
	res.Source = s.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("source panicked", "source", res.Source, "stack", string(debug.Stack()))
			res.Jobs = nil
			res.Err = fmt.Errorf("%s panicked: %v", res.Source, r)
		}
		res.Duration = time.Since(start)
	}()

	if c.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.sourceTimeout)
		defer cancel()
	}

	jobs, err := s.FetchJobs(ctx, f)
	if err != nil {
		return model.FetchResult{Source: res.Source, Err: err}
	}
	return model.FetchResult{Source: res.Source, Jobs: jobs}
}

// MissingCredentials lists, per disabled source, the environment variables
// it needs.
func MissingCredentials(sources []model.Source) map[string][]string {
	missing := make(map[string][]string)
	for _, s := range sources {
		if s.IsEnabled() {
			continue
		}
		if cs, ok := s.(model.CredentialedSource); ok {
			if env := cs.RequiredEnv(); len(env) > 0 {
				missing[s.Name()] = env
			}
		}
	}
	return missing
}

func formatMissing(m map[string][]string) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(m[name], "+"))
	}
	return strings.Join(parts, " ")
}

// curate applies the stages in order: dedup, whitelist, blacklist, location,
// freshness, quality, then the visa priority sort and the limit.
func (c *Coordinator) curate(jobs []model.ScrapedJob, f model.JobFilter, r *Report, logger *slog.Logger) []model.ScrapedJob {
	jobs = dedup(jobs, r)

	var (
		whitelist filter.Whitelist
		blacklist filter.Blacklist
		location  filter.LocationFilter
		fresh     = &filter.Freshness{Window: filter.FreshnessWindow, Now: c.now}
	)

	out := make([]model.ScrapedJob, 0, len(jobs))
	for _, j := range jobs {
		if !whitelist.Match(j) {
			r.Rejected[StageWhitelist]++
			continue
		}
		if phrase, hit := blacklist.Hit(j.Title); hit {
			r.Rejected[StageBlacklist]++
			logger.Info("blacklisted title", "title", j.Title, "phrase", phrase, "source", j.OriginalSource)
			continue
		}
		if !location.Match(j) {
			r.Rejected[StageLocation]++
			continue
		}
		if !fresh.Match(j) {
			r.Rejected[StageDate]++
			continue
		}
		if ok, msg := c.quality(j); !ok {
			r.Rejected[StageQuality]++
			logger.Debug("low quality posting", "title", j.Title, "source", j.OriginalSource, "reason", msg)
			continue
		}
		out = append(out, j)
	}

	out, r.Prioritized = filter.PrioritizeVisa(out)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// quality checks the source domain and the description gates.
func (c *Coordinator) quality(j model.ScrapedJob) (bool, string) {
	domain := validate.JobSourceDomain(j.SourceURL)
	desc := c.validator.JobDescription(j.Description)
	if domain.Valid && desc.Valid {
		return true, ""
	}
	return false, validate.Message(domain, desc, false)
}

// dedup drops records without a title or source url, then keeps the first
// record per lowercase(company)-lowercase(title) key.
func dedup(jobs []model.ScrapedJob, r *Report) []model.ScrapedJob {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.ScrapedJob, 0, len(jobs))
	for _, j := range jobs {
		if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.SourceURL) == "" {
			r.Dropped++
			continue
		}
		key := DedupKey(j)
		if _, ok := seen[key]; ok {
			r.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}

// DedupKey returns the key two records must share to count as duplicates.
func DedupKey(j model.ScrapedJob) string {
	return strings.ToLower(j.Company) + "-" + strings.ToLower(j.Title)
}
