package dataprocessing

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"footlens/pkg/contracts/domain"
)

// Median returns the median of values; ok is false for an empty input
func Median(values []float64) (m float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	m, err := stats.Median(values)
	if err != nil {
		return 0, false
	}
	return m, true
}

// Mean returns the arithmetic mean of values; ok is false for an empty input
func Mean(values []float64) (m float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return m, true
}

// NullMean is Mean as a nullable value
func NullMean(values []float64) domain.NullFloat {
	if m, ok := Mean(values); ok {
		return domain.Float(m)
	}
	return domain.Null()
}

// SampleStdDev is the sample standard deviation, missing below two values
func SampleStdDev(values []float64) domain.NullFloat {
	if len(values) < 2 {
		return domain.Null()
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) {
		return domain.Null()
	}
	return domain.Float(sd)
}

// Summary is the count, moments and five-number summary of a numeric column
type Summary struct {
	Column string           `json:"column"`
	Count  int              `json:"count"`
	Mean   domain.NullFloat `json:"mean"`
	Std    domain.NullFloat `json:"std"`
	Min    domain.NullFloat `json:"min"`
	Q25    domain.NullFloat `json:"25%"`
	Median domain.NullFloat `json:"50%"`
	Q75    domain.NullFloat `json:"75%"`
	Max    domain.NullFloat `json:"max"`
}

// Describe summarises values. The standard deviation is the sample deviation and
// is null below two values; quartiles interpolate linearly between order statistics.
func Describe(column string, values []float64) Summary {
	s := Summary{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Mean = NullMean(sorted)
	s.Std = SampleStdDev(sorted)
	if v, err := stats.Min(sorted); err == nil {
		s.Min = domain.Float(v)
	}
	if v, err := stats.Max(sorted); err == nil {
		s.Max = domain.Float(v)
	}
	s.Q25 = domain.Float(quantile(sorted, 0.25))
	s.Median = domain.Float(quantile(sorted, 0.50))
	s.Q75 = domain.Float(quantile(sorted, 0.75))
	return s
}

// quantile uses linear interpolation between the closest ranks of sorted
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ValidValues collects the non-null values of a numeric column
func ValidValues(records []domain.InjuryRecord, column string) []float64 {
	values := make([]float64, 0, len(records))
	for i := range records {
		if v := records[i].NumericField(column); v != nil && v.Valid {
			values = append(values, v.Value)
		}
	}
	return values
}
