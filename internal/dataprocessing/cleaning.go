package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"footlens/pkg/contracts/domain"
)

// NotApplicable is the literal the source uses for a match cell with no value
const NotApplicable = "N.A."

// suffixMarkers are annotations appended to match cells, e.g. "7.1(S)" for a substitute
var suffixMarkers = []string{"(S)", "(A)"}

// dateLayouts are tried in order; month-first numeric dates follow the source
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/2006",
}

// ParseDate parses a calendar date. ok is false for blank or unparsable input.
func ParseDate(raw string) (t *time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			return &day, true
		}
	}
	return nil, false
}

// CleanMatchValue resolves a rating or goal-difference cell. Suffix markers and
// whitespace are stripped before parsing; anything unparsable resolves to 0.
// anomalous is true only for cells that are neither numeric, blank nor N.A.
func CleanMatchValue(raw string) (value float64, anomalous bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NotApplicable {
		return 0, false
	}
	for _, marker := range suffixMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimSpace(s)

	v, ok := parseFinite(s)
	if !ok {
		return 0, true
	}
	return v, false
}

// ParseNullableNumber parses an identity number such as age or FIFA rating.
// Blank cells are null; anomalous is true for non-blank cells that do not parse.
func ParseNullableNumber(raw string) (value domain.NullFloat, anomalous bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NotApplicable {
		return domain.Null(), false
	}
	v, ok := parseFinite(s)
	if !ok {
		return domain.Null(), true
	}
	return domain.Float(v), false
}

// parseFinite parses s as a float, rejecting NaN and infinities
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
