package filter

import (
	"regexp"
	"strings"
)

// LocationClass is the outcome of classifying a free-text location.
type LocationClass int

const (
	LocationUnknown LocationClass = iota
	LocationForeign
	LocationUS
	LocationRemote
)

func (c LocationClass) String() string {
	switch c {
	case LocationForeign:
		return "foreign"
	case LocationUS:
		return "us"
	case LocationRemote:
		return "remote"
	default:
		return "unknown"
	}
}

var (
	foreignRegex = regexp.MustCompile(`\b(?:` + alternation(foreignLocations) + `)\b`)
	usRegex      = regexp.MustCompile(`\b(?:united states|usa|us|america|` + alternation(usStates) + `|` + alternation(usCities) + `)\b|\bu\.s\.`)
	// State abbreviations are matched case-sensitively on the original text
	// so "IN" (Indiana) does not collide with the word "in".
	usStateAbbrevRegex = regexp.MustCompile(`(?:^|[\s,(/-])(?:` + strings.Join(usStateAbbreviations, "|") + `)(?:$|[\s,)/.\d-])`)
)

// ClassifyLocation sorts a location string into foreign, US, remote or unknown.
// Foreign matches win over everything else, so "Remote - Canada" is foreign.
func ClassifyLocation(location string) LocationClass {
	lower := strings.ToLower(strings.TrimSpace(location))
	if lower == "" {
		return LocationUnknown
	}

	foreignCheck := lower
	for _, overlap := range usLocationOverlaps {
		foreignCheck = strings.ReplaceAll(foreignCheck, overlap, " ")
	}
	if foreignRegex.MatchString(foreignCheck) {
		return LocationForeign
	}

	if usRegex.MatchString(lower) || usStateAbbrevRegex.MatchString(location) {
		return LocationUS
	}
	if strings.Contains(lower, "remote") {
		return LocationRemote
	}
	return LocationUnknown
}
