// Package filter holds the curation rules applied to scraped jobs: curated
// title allow/deny lists, the location classifier, the freshness window and
// the visa-sponsorship priority.
package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
)

// FreshnessWindow is how old a posting may be and still be kept.
const FreshnessWindow = 24 * time.Hour

var (
	whitelistRegex = regexp.MustCompile(`\b(?:` + alternation(WhitelistPhrases) + `)|\b(?:` + alternation(whitelistTokens) + `)\b`)
	blacklistRegex = regexp.MustCompile(`\b(?:` + alternation(append(append([]string{}, seniorityPhrases...), disciplinePhrases...)) + `)\b|` + experiencePattern)
	visaRegex      = regexp.MustCompile(`\b(?:` + alternation(VisaKeywords) + `)\b`)
)

// alternation quotes each phrase and joins them into a regexp alternation.
// Longer phrases come first so they win over their prefixes.
func alternation(phrases []string) string {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(p)))
	}
	sortByLengthDesc(quoted)
	return strings.Join(quoted, "|")
}

func sortByLengthDesc(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && len(s[j]) > len(s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Whitelist accepts jobs whose title contains a software-engineering role phrase.
type Whitelist struct{}

// Match returns true if the lowercased title contains a whitelisted phrase.
func (Whitelist) Match(job model.ScrapedJob) bool {
	return whitelistRegex.MatchString(strings.ToLower(job.Title))
}

// Blacklist rejects seniority markers and adjacent disciplines.
type Blacklist struct{}

// Match returns true if the title contains no blacklisted phrase.
func (b Blacklist) Match(job model.ScrapedJob) bool {
	_, hit := b.Hit(job.Title)
	return !hit
}

// Hit returns the first blacklisted phrase found in title.
func (Blacklist) Hit(title string) (string, bool) {
	m := blacklistRegex.FindString(strings.ToLower(title))
	return m, m != ""
}

// LocationFilter keeps jobs located in the US or remote. Foreign locations
// are rejected first; anything not recognisably US or remote is rejected too.
type LocationFilter struct{}

// Match returns true for US and remote locations.
func (LocationFilter) Match(job model.ScrapedJob) bool {
	switch ClassifyLocation(job.Location) {
	case LocationUS, LocationRemote:
		return true
	}
	return false
}

// Freshness keeps jobs posted within Window of Now. Jobs with no posting date
// are rejected.
type Freshness struct {
	Window time.Duration
	Now    func() time.Time
}

// NewFreshness returns a Freshness filter using FreshnessWindow and the wall clock.
func NewFreshness() *Freshness {
	return &Freshness{Window: FreshnessWindow, Now: time.Now}
}

// Match returns true if the job was posted no more than Window ago.
func (f *Freshness) Match(job model.ScrapedJob) bool {
	if job.PostedAt == nil || job.PostedAt.IsZero() {
		return false
	}
	return f.Now().Sub(*job.PostedAt) <= f.Window
}

// MentionsVisa reports whether the job's title or description contains a
// visa-sponsorship keyword.
func MentionsVisa(job model.ScrapedJob) bool {
	return visaRegex.MatchString(strings.ToLower(job.Title + " " + job.Description))
}

// PrioritizeVisa moves jobs that mention visa sponsorship ahead of the rest.
// Relative order inside both groups is preserved. It returns the reordered
// slice and how many jobs were moved to the front.
func PrioritizeVisa(jobs []model.ScrapedJob) ([]model.ScrapedJob, int) {
	out := make([]model.ScrapedJob, 0, len(jobs))
	var rest []model.ScrapedJob
	for _, j := range jobs {
		if MentionsVisa(j) {
			out = append(out, j)
		} else {
			rest = append(rest, j)
		}
	}
	prioritized := len(out)
	return append(out, rest...), prioritized
}

// KeywordFilter matches a single company's postings against search keywords.
// A title must contain one of the include keywords (case-insensitive), must not
// hit the blacklist, and must contain every required term.
// Empty include lists are treated as "match all".
type KeywordFilter struct {
	include  []string
	required []string
}

// NewKeywordFilter builds the per-company filter used by board adapters from
// the search filter: the search keywords plus the whitelist phrases form the
// include list, and an "internship" level requires "intern" in the title.
func NewKeywordFilter(f model.JobFilter) *KeywordFilter {
	include := make([]string, 0, len(f.Keywords)+len(WhitelistPhrases))
	for _, kw := range f.Keywords {
		include = append(include, strings.ToLower(kw))
	}
	include = append(include, WhitelistPhrases...)

	var required []string
	if f.HasLevel("internship") || f.HasLevel("intern") {
		required = append(required, "intern")
	}
	return &KeywordFilter{include: include, required: required}
}

// Match returns true if the job's title passes the include, blacklist and
// required-term checks.
func (f *KeywordFilter) Match(job model.ScrapedJob) bool {
	titleLower := strings.ToLower(job.Title)

	if len(f.include) > 0 {
		matched := false
		for _, kw := range f.include {
			if strings.Contains(titleLower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if _, hit := (Blacklist{}).Hit(titleLower); hit {
		return false
	}

	for _, req := range f.required {
		if !strings.Contains(titleLower, req) {
			return false
		}
	}
	return true
}

// RSSTitleCheck applies the inline title rules used for feed items: the title
// must contain a role keyword and, when recent is set, must not contain a
// seniority keyword. It returns a short reason when the title is rejected.
func RSSTitleCheck(title string, recent bool) (bool, string) {
	lower := strings.ToLower(title)
	if !rssRoleRegex.MatchString(lower) {
		return false, "role"
	}
	if recent && rssSeniorityRegex.MatchString(lower) {
		return false, "seniority"
	}
	return true, ""
}

var (
	rssRoleRegex      = regexp.MustCompile(`\b(?:` + alternation(rssRoleKeywords) + `)`)
	rssSeniorityRegex = regexp.MustCompile(`\b(?:` + alternation(rssSeniorityKeywords) + `)\b`)
)
