package dataprocessing

import "footlens/pkg/contracts/domain"

// bin is a half-open interval (low, high]
type bin[T any] struct {
	low, high float64
	label     T
}

var ageBins = []bin[domain.AgeGroup]{
	{0, 23, domain.AgeGroupYoung},
	{23, 26, domain.AgeGroupPrime},
	{26, 29, domain.AgeGroupExperienced},
	{29, 40, domain.AgeGroupVeteran},
}

var ratingBins = []bin[domain.PerformanceCategory]{
	{0, 75, domain.PerformanceAverage},
	{75, 80, domain.PerformanceGood},
	{80, 85, domain.PerformanceVeryGood},
	{85, 100, domain.PerformanceElite},
}

func cut[T any](v domain.NullFloat, bins []bin[T]) (T, bool) {
	var zero T
	if !v.Valid {
		return zero, false
	}
	for _, b := range bins {
		if v.Value > b.low && v.Value <= b.high {
			return b.label, true
		}
	}
	return zero, false
}

// AgeGroupOf returns the age bucket, or "" when the age is missing or outside (0, 40]
func AgeGroupOf(age domain.NullFloat) domain.AgeGroup {
	g, _ := cut(age, ageBins)
	return g
}

// PerformanceCategoryOf returns the FIFA rating bucket, or "" outside (0, 100]
func PerformanceCategoryOf(rating domain.NullFloat) domain.PerformanceCategory {
	c, _ := cut(rating, ratingBins)
	return c
}
