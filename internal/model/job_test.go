package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestJobFilterNormalize(t *testing.T) {
	f := JobFilter{
		Keywords: []string{"  ", " react developer ", ""},
		Level:    []string{" Internship "},
		Location: "  Austin, TX ",
		Limit:    -3,
	}.Normalize()

	if len(f.Keywords) != 1 || f.Keywords[0] != "react developer" {
		t.Errorf("Keywords = %q", f.Keywords)
	}
	if !f.HasLevel("internship") {
		t.Errorf("Level = %q, want internship", f.Level)
	}
	if f.Location != "Austin, TX" {
		t.Errorf("Location = %q", f.Location)
	}
	if f.Limit != 0 {
		t.Errorf("Limit = %d, want 0", f.Limit)
	}
}

func TestJobFilterNormalize_DefaultKeyword(t *testing.T) {
	f := JobFilter{}.Normalize()
	if len(f.Keywords) != 1 || f.Keywords[0] != DefaultKeyword {
		t.Errorf("Keywords = %q, want [%q]", f.Keywords, DefaultKeyword)
	}
}

func TestIsRateLimited(t *testing.T) {
	wrapped := fmt.Errorf("jsearch page 1: %w", &HTTPError{StatusCode: 429})
	if !IsRateLimited(wrapped) {
		t.Error("expected wrapped 429 to be rate limited")
	}
	if IsRateLimited(&HTTPError{StatusCode: 500}) {
		t.Error("500 is not a rate limit")
	}
	if IsRateLimited(errors.New("boom")) {
		t.Error("plain error is not a rate limit")
	}
}
