package domain

// Severity is the injury impact bucket
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	// SeverityUnknown is only produced by the duration-based classifier
	SeverityUnknown Severity = "Unknown"
)

// Weight returns the team impact multiplier for the severity
func (s Severity) Weight() float64 {
	switch s {
	case SeveritySevere:
		return 1.5
	case SeverityModerate:
		return 1.0
	default:
		return 0.7
	}
}

// Severities lists the keyword classifier buckets
var Severities = []Severity{SeverityMinor, SeverityModerate, SeveritySevere}

// AgeGroup is an ordered age bucket; empty means the age fell outside every bin
type AgeGroup string

const (
	AgeGroupYoung       AgeGroup = "Young"
	AgeGroupPrime       AgeGroup = "Prime"
	AgeGroupExperienced AgeGroup = "Experienced"
	AgeGroupVeteran     AgeGroup = "Veteran"
)

// AgeGroups lists the age buckets in order
var AgeGroups = []AgeGroup{AgeGroupYoung, AgeGroupPrime, AgeGroupExperienced, AgeGroupVeteran}

// PerformanceCategory is an ordered FIFA rating bucket; empty means out of range
type PerformanceCategory string

const (
	PerformanceAverage  PerformanceCategory = "Average"
	PerformanceGood     PerformanceCategory = "Good"
	PerformanceVeryGood PerformanceCategory = "Very Good"
	PerformanceElite    PerformanceCategory = "Elite"
)

// PerformanceCategories lists the rating buckets in order
var PerformanceCategories = []PerformanceCategory{PerformanceAverage, PerformanceGood, PerformanceVeryGood, PerformanceElite}
