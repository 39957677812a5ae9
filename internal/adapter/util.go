package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/filter"
	"github.com/amishk599/jobsweep/internal/model"
)

// pageFunc fetches one page of results for a keyword. raw is the number of
// records the provider returned before any adapter-side filtering; zero ends
// pagination for the keyword.
type pageFunc func(ctx context.Context, keyword string, page int) (jobs []model.ScrapedJob, raw int, err error)

// collectKeywords runs fetch for every keyword, paginating sequentially up to
// maxPages and stopping a keyword at its first empty page. A 429 or an
// exhausted quota ends the whole run and keeps what was already collected.
// Other failures skip the rest of that keyword. The returned error is set only
// when every call failed and nothing was collected.
func (b *base) collectKeywords(ctx context.Context, keywords []string, maxPages int, fetch pageFunc) ([]model.ScrapedJob, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	var (
		jobs    []model.ScrapedJob
		lastErr error
		calls   int
		failed  int
	)

keywords:
	for _, kw := range keywords {
		for page := 1; page <= maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return jobs, err
			}

			calls++
			pageJobs, raw, err := fetch(ctx, kw, page)
			switch {
			case err == nil:
			case model.IsRateLimited(err):
				b.logger.Warn("rate limited, stopping", "keyword", kw, "page", page, "error", err)
				return jobs, nil
			case errors.Is(err, errQuotaExhausted):
				b.logger.Warn("daily quota exhausted, stopping", "keyword", kw, "page", page)
				return jobs, nil
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return jobs, err
			default:
				failed++
				lastErr = err
				b.logger.Warn("fetch failed", "keyword", kw, "page", page, "error", err)
				continue keywords
			}

			if raw == 0 {
				break
			}
			b.logger.Debug("fetched page", "keyword", kw, "page", page, "count", raw, "kept", len(pageJobs))
			jobs = append(jobs, pageJobs...)
		}
	}

	if len(jobs) == 0 && calls > 0 && failed == calls {
		return nil, fmt.Errorf("%s: all %d calls failed: %w", b.name, calls, lastErr)
	}
	return jobs, nil
}

// formatSalary renders a salary range like "90000-120000 USD/year".
// Returns "" when neither bound is known.
func formatSalary(min, max float64, currency, period string) string {
	var s string
	switch {
	case min > 0 && max > 0 && min != max:
		s = fmt.Sprintf("%.0f-%.0f", min, max)
	case min > 0:
		s = fmt.Sprintf("%.0f", min)
	case max > 0:
		s = fmt.Sprintf("%.0f", max)
	default:
		return ""
	}
	if currency != "" {
		s += " " + strings.ToUpper(currency)
	}
	if period != "" {
		s += "/" + strings.ToLower(period)
	}
	return s
}

// parseAmount parses a numeric string such as "85000.00"; returns 0 on failure.
func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseTime tries each layout in turn and returns nil if none match.
// Adapters never substitute the current time for an unknown date.
func parseTime(value string, layouts ...string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// isRecent reports whether t lies within the freshness window of now.
// Adapters use it as a pre-filter; unknown dates are kept for the
// coordinator to judge.
func isRecent(t *time.Time, now time.Time) bool {
	if t == nil {
		return true
	}
	return now.Sub(*t) <= filter.FreshnessWindow
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
