package filter

import (
	"testing"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
)

func job(title, location string) model.ScrapedJob {
	return model.ScrapedJob{Title: title, Location: location}
}

func TestWhitelist_Match(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Software Engineer", true},
		{"Full-Stack Developer (React/Node)", true},
		{"Frontend Engineer, Growth", true},
		{"SWE Intern - Summer 2027", true},
		{"Software Engineering Intern", true},
		{"Data Analyst", false},
		{"Account Executive", false},
		{"Answer Desk Specialist", false},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			if got := (Whitelist{}).Match(job(tc.title, "")); got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestBlacklist_Match(t *testing.T) {
	tests := []struct {
		title   string
		wantHit string
	}{
		{"Senior Software Engineer", "senior"},
		{"Sr. Frontend Engineer", "sr"},
		{"Staff Backend Engineer", "staff"},
		{"Software Engineer II", "ii"},
		{"Tech Lead, Platform", "lead"},
		{"Software Engineer (5+ years)", "5+ years"},
		{"QA Engineer", "qa engineer"},
		{"Software Engineer in Test", "engineer in test"},
		{"Software Development Engineer in Test II", "engineer in test"},
		{"Product Manager, Payments", "product manager"},
		{"Interactive Software Engineer", ""},
		{"Software Engineer, New Grad", ""},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			hit, ok := (Blacklist{}).Hit(tc.title)
			if hit != tc.wantHit {
				t.Errorf("Hit(%q) = %q, want %q", tc.title, hit, tc.wantHit)
			}
			if got := (Blacklist{}).Match(job(tc.title, "")); got == ok {
				t.Errorf("Match(%q) = %v, want %v", tc.title, got, !ok)
			}
		})
	}
}

func TestBlacklistDominatesWhitelist(t *testing.T) {
	j := job("Senior Software Engineer", "Remote")
	if !(Whitelist{}).Match(j) {
		t.Fatal("expected whitelist match for software engineer")
	}
	if (Blacklist{}).Match(j) {
		t.Error("expected blacklist to reject senior title")
	}
}

func TestClassifyLocation(t *testing.T) {
	tests := []struct {
		location string
		want     LocationClass
	}{
		{"San Francisco, CA", LocationUS},
		{"New York, NY 10001", LocationUS},
		{"Austin, Texas", LocationUS},
		{"United States", LocationUS},
		{"Remote (U.S. only)", LocationUS},
		{"Albuquerque, New Mexico", LocationUS},
		{"Remote", LocationRemote},
		{"Anywhere - Remote", LocationRemote},
		{"Remote - Canada", LocationForeign},
		{"London, UK", LocationForeign},
		{"Bengaluru, India", LocationForeign},
		{"Remote (EMEA)", LocationForeign},
		{"Indianapolis, Indiana", LocationUS},
		{"Unknown", LocationUnknown},
		{"", LocationUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.location, func(t *testing.T) {
			if got := ClassifyLocation(tc.location); got != tc.want {
				t.Errorf("ClassifyLocation(%q) = %v, want %v", tc.location, got, tc.want)
			}
		})
	}
}

func TestLocationFilter_RejectsAmbiguous(t *testing.T) {
	if (LocationFilter{}).Match(job("Software Engineer", "Unknown")) {
		t.Error("ambiguous location should be rejected")
	}
	if !(LocationFilter{}).Match(job("Software Engineer", "Remote")) {
		t.Error("remote location should be accepted")
	}
}

func TestFreshness_Boundary(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	f := &Freshness{Window: FreshnessWindow, Now: func() time.Time { return now }}

	at := func(d time.Duration) model.ScrapedJob {
		t := now.Add(-d)
		return model.ScrapedJob{PostedAt: &t}
	}

	if f.Match(at(24*time.Hour + time.Second)) {
		t.Error("24h+1s old posting should be rejected")
	}
	if !f.Match(at(23*time.Hour + 59*time.Minute)) {
		t.Error("23h59m old posting should be accepted")
	}
	if f.Match(model.ScrapedJob{}) {
		t.Error("posting without a date should be rejected")
	}
}

func TestPrioritizeVisa(t *testing.T) {
	jobs := []model.ScrapedJob{
		{ID: "a", Title: "Software Engineer", Description: "Build APIs."},
		{ID: "b", Title: "Frontend Engineer", Description: "We sponsor H1B visas."},
		{ID: "c", Title: "Backend Engineer", Description: "Optimize queries."},
		{ID: "d", Title: "Software Engineer (OPT/CPT friendly)", Description: "Go."},
	}

	got, n := PrioritizeVisa(jobs)
	if n != 2 {
		t.Errorf("prioritized = %d, want 2", n)
	}
	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func ids(jobs []model.ScrapedJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestKeywordFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.JobFilter
		job       model.ScrapedJob
		wantMatch bool
	}{
		{
			name:      "search keyword match",
			filter:    model.JobFilter{Keywords: []string{"platform"}},
			job:       job("Platform Developer", "Remote"),
			wantMatch: true,
		},
		{
			name:      "whitelist phrase match without keyword",
			filter:    model.JobFilter{Keywords: []string{"rust"}},
			job:       job("Backend Engineer", "Remote"),
			wantMatch: true,
		},
		{
			name:      "case insensitive matching",
			filter:    model.JobFilter{Keywords: []string{"FULLSTACK"}},
			job:       job("Fullstack Person", "US Remote"),
			wantMatch: true,
		},
		{
			name:      "blacklisted seniority",
			filter:    model.JobFilter{Keywords: []string{"software engineer"}},
			job:       job("Principal Software Engineer", "Remote"),
			wantMatch: false,
		},
		{
			name:      "internship level requires intern",
			filter:    model.JobFilter{Keywords: []string{"software engineer"}, Level: []string{"internship"}},
			job:       job("Software Engineer", "Remote"),
			wantMatch: false,
		},
		{
			name:      "internship level with intern title",
			filter:    model.JobFilter{Keywords: []string{"software engineer"}, Level: []string{"internship"}},
			job:       job("Software Engineer Intern", "Remote"),
			wantMatch: true,
		},
		{
			name:      "no keywords match",
			filter:    model.JobFilter{Keywords: []string{"devops"}},
			job:       job("Recruiting Coordinator", "New York, NY"),
			wantMatch: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewKeywordFilter(tt.filter)
			if got := f.Match(tt.job); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestRSSTitleCheck(t *testing.T) {
	tests := []struct {
		title      string
		recent     bool
		wantOK     bool
		wantReason string
	}{
		{"Backend Engineer at Acme", false, true, ""},
		{"Marketing Lead at Acme", false, false, "role"},
		{"Senior Developer at Acme", false, true, ""},
		{"Senior Developer at Acme", true, false, "seniority"},
	}
	for _, tc := range tests {
		ok, reason := RSSTitleCheck(tc.title, tc.recent)
		if ok != tc.wantOK || reason != tc.wantReason {
			t.Errorf("RSSTitleCheck(%q, %v) = %v %q, want %v %q", tc.title, tc.recent, ok, reason, tc.wantOK, tc.wantReason)
		}
	}
}
