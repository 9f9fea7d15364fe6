package dataprocessing

import (
	"strings"

	"footlens/pkg/contracts/domain"
)

// Checked in order; the first bucket with a matching keyword wins
var severityKeywords = []struct {
	severity domain.Severity
	keywords []string
}{
	{domain.SeveritySevere, []string{"cruciate", "acl", "meniscus", "fracture", "rupture", "tear", "ligament"}},
	{domain.SeverityModerate, []string{"hamstring", "groin", "calf", "shoulder", "ankle", "strain"}},
}

// Duration thresholds in days for SeverityByDuration
const (
	MinorDurationLimit    = 30
	ModerateDurationLimit = 90
)

// ClassifySeverity buckets an injury description by case-insensitive keyword match.
func ClassifySeverity(injury string) domain.Severity {
	text := strings.ToLower(injury)
	for _, bucket := range severityKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				return bucket.severity
			}
		}
	}
	return domain.SeverityMinor
}

// SeverityByDuration buckets an absence by its length. It is not interchangeable
// with ClassifySeverity: a long "Bruise" absence is Severe here and Minor there.
func SeverityByDuration(days domain.NullFloat) domain.Severity {
	switch {
	case !days.Valid:
		return domain.SeverityUnknown
	case days.Value < MinorDurationLimit:
		return domain.SeverityMinor
	case days.Value < ModerateDurationLimit:
		return domain.SeverityModerate
	default:
		return domain.SeveritySevere
	}
}
