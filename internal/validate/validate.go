// Package validate holds the minimum-quality gates a job record must pass
// before it is accepted: description checks and blocked source domains.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinDescriptionLength is the minimum cleaned description length.
const DefaultMinDescriptionLength = 3000

// Rejection reasons.
const (
	ReasonEmpty       = "empty"
	ReasonTooShort    = "too_short"
	ReasonPlaceholder = "placeholder"
	ReasonTruncated   = "truncated"
)

// DescriptionResult is the outcome of validating a job description.
type DescriptionResult struct {
	Valid  bool
	Reason string // empty when valid
	Detail string // human-readable explanation
	Length int    // characters after trimming
}

// DomainResult is the outcome of validating a source URL.
type DomainResult struct {
	Valid         bool
	BlockedDomain string // the matched blocked domain, empty when valid
}

type pattern struct {
	class string
	re    *regexp.Regexp
}

var placeholderPatterns = []pattern{
	{"view full description", regexp.MustCompile(`(?i)\b(view|see|read) (the )?full (job )?(description|posting|details)\b`)},
	{"sign in required", regexp.MustCompile(`(?i)\b(sign|log) ?in to (view|see|apply|continue)\b`)},
	{"javascript required", regexp.MustCompile(`(?i)\b(enable javascript|javascript is (disabled|required))\b`)},
	{"description unavailable", regexp.MustCompile(`(?i)\b(no description (available|provided)|description (not available|unavailable))\b`)},
	{"click to apply", regexp.MustCompile(`(?i)^\s*(click|tap) (here )?to (apply|view)\b`)},
}

var truncationPatterns = []pattern{
	{"trailing ellipsis", regexp.MustCompile(`(\.\.\.|…)\s*$`)},
	{"read more link", regexp.MustCompile(`(?i)\b(read|see|show|view) more\W*$`)},
}

// Validator checks descriptions against a minimum length and the known
// placeholder/truncation patterns.
type Validator struct {
	minLength int
}

// New returns a Validator with the given minimum length; non-positive values
// fall back to DefaultMinDescriptionLength.
func New(minLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinDescriptionLength
	}
	return &Validator{minLength: minLength}
}

// MinLength returns the configured minimum description length.
func (v *Validator) MinLength() int { return v.minLength }

// JobDescription runs the description gates in order: empty, too short,
// placeholder text, truncation. The first failure wins.
func (v *Validator) JobDescription(text string) DescriptionResult {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)

	if trimmed == "" {
		return DescriptionResult{Reason: ReasonEmpty, Detail: "description is empty", Length: 0}
	}

	if length < v.minLength {
		return DescriptionResult{
			Reason: ReasonTooShort,
			Detail: fmt.Sprintf("description is %d characters, at least %d required", length, v.minLength),
			Length: length,
		}
	}

	for _, p := range placeholderPatterns {
		if p.re.MatchString(trimmed) {
			return DescriptionResult{
				Reason: ReasonPlaceholder,
				Detail: fmt.Sprintf("description contains placeholder text (%s)", p.class),
				Length: length,
			}
		}
	}

	if class, ok := truncated(text, trimmed); ok {
		return DescriptionResult{
			Reason: ReasonTruncated,
			Detail: fmt.Sprintf("description appears truncated (%s)", class),
			Length: length,
		}
	}

	return DescriptionResult{Valid: true, Length: length}
}

// truncated reports whether the description looks cut off. Text that ends
// with a newline is treated as complete; otherwise ending on a letter or
// digit with no terminal punctuation counts as ending mid-word.
func truncated(raw, trimmed string) (string, bool) {
	for _, p := range truncationPatterns {
		if p.re.MatchString(trimmed) {
			return p.class, true
		}
	}
	if strings.HasSuffix(strings.TrimRight(raw, " \t"), "\n") {
		return "", false
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	if unicode.IsLetter(last) || unicode.IsDigit(last) {
		return "ends mid-word", true
	}
	return "", false
}

// blockedDomains disallow scraping of their postings.
var blockedDomains = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"monster.com",
	"careerbuilder.com",
	"simplyhired.com",
	"handshake.com",
	"joinhandshake.com",
	"wellfound.com",
}

// JobSourceDomain rejects URLs hosted on a blocked domain or any of its
// subdomains. Matching is case-insensitive. Unparseable URLs pass; they are
// caught by the missing-URL check upstream.
func JobSourceDomain(rawURL string) DomainResult {
	host := hostname(rawURL)
	if host == "" {
		return DomainResult{Valid: true}
	}
	for _, d := range blockedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return DomainResult{BlockedDomain: d}
		}
	}
	return DomainResult{Valid: true}
}

func hostname(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// Message builds the user-facing error for a rejected job import. Domain
// errors take precedence over description errors, which take precedence over
// a low scrape-confidence warning. It returns "" when nothing is wrong.
func Message(domain DomainResult, desc DescriptionResult, lowConfidence bool) string {
	switch {
	case !domain.Valid:
		return fmt.Sprintf("%s does not allow job postings to be imported. Paste the description manually or use the company's own careers page.", domain.BlockedDomain)
	case !desc.Valid:
		switch desc.Reason {
		case ReasonEmpty:
			return "We could not find a job description on that page."
		case ReasonTooShort:
			return fmt.Sprintf("The job description we found is too short (%s). Paste the full description instead.", desc.Detail)
		case ReasonPlaceholder:
			return "The page only shows a preview of the job description. Paste the full description instead."
		case ReasonTruncated:
			return "The job description appears to be cut off. Paste the full description instead."
		default:
			return desc.Detail
		}
	case lowConfidence:
		return "We are not confident the page was read correctly. Review the imported details before saving."
	}
	return ""
}

var defaultValidator = New(DefaultMinDescriptionLength)

// JobDescription validates text with the default minimum length.
func JobDescription(text string) DescriptionResult {
	return defaultValidator.JobDescription(text)
}
