package model

import (
	"context"
	"strings"
	"time"
)

// DefaultKeyword is searched when a JobFilter carries no keywords.
const DefaultKeyword = "software engineer"

// ScrapedJob is the normalized record every source emits.
// IDs are source-local and not unique across sources.
type ScrapedJob struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`          // free text
	PostedAt       *time.Time `json:"posted_at"`         // nil means unknown
	SourceURL      string     `json:"source_url"`        // canonical link back to the posting
	Description    string     `json:"description"`       // plain text, already cleaned
	Salary         string     `json:"salary,omitempty"`  // human-readable, e.g. "$90000-$120000 USD/year"
	OriginalSource string     `json:"original_source"`   // adapter name
	RawSourceData  any        `json:"raw_source_data,omitempty"`
}

// JobFilter holds the query parameters passed into the pipeline.
type JobFilter struct {
	Recent   bool     // only postings from the last 24h
	Keywords []string // search terms, in order
	Level    []string // seniority/type hints, e.g. "internship"
	Location string
	Limit    int // 0 means no limit
}

// Normalize trims keywords and levels, drops empties and falls back to
// DefaultKeyword when nothing is left.
func (f JobFilter) Normalize() JobFilter {
	out := f
	out.Keywords = nil
	for _, kw := range f.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out.Keywords = append(out.Keywords, kw)
		}
	}
	if len(out.Keywords) == 0 {
		out.Keywords = []string{DefaultKeyword}
	}
	out.Level = nil
	for _, l := range f.Level {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			out.Level = append(out.Level, l)
		}
	}
	out.Location = strings.TrimSpace(f.Location)
	if out.Limit < 0 {
		out.Limit = 0
	}
	return out
}

// HasLevel reports whether the filter carries the given level hint.
func (f JobFilter) HasLevel(level string) bool {
	for _, l := range f.Level {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}

// Source is one external job-data provider.
//
// A source with missing credentials reports IsEnabled false and is skipped.
// FetchJobs returns whatever it managed to collect; per-call failures inside
// the source are logged and skipped, an error means the source as a whole
// produced nothing usable.
type Source interface {
	Name() string
	IsEnabled() bool
	FetchJobs(ctx context.Context, filter JobFilter) ([]ScrapedJob, error)
}

// CredentialedSource is implemented by sources that need environment-provided
// credentials. RequiredEnv lists the variable names.
type CredentialedSource interface {
	RequiredEnv() []string
}

// FetchResult is the settled outcome of one source call.
type FetchResult struct {
	Source   string
	Jobs     []ScrapedJob
	Err      error
	Duration time.Duration
}

// OK reports whether the source call succeeded.
func (r FetchResult) OK() bool { return r.Err == nil }

// JobMatcher decides whether a job passes one curation rule.
type JobMatcher interface {
	Match(job ScrapedJob) bool
}

// CandidateStore persists pipeline output and returns the records it had not
// stored before.
type CandidateStore interface {
	SaveCandidates(ctx context.Context, jobs []ScrapedJob) ([]ScrapedJob, error)
	Cleanup(olderThan time.Duration) error
}

// Notifier sends notifications for newly stored candidates.
type Notifier interface {
	Notify(jobs []ScrapedJob) error
}
