package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"footlens/pkg/contracts/domain"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		injury string
		want   domain.Severity
	}{
		{"ACL Tear", domain.SeveritySevere},
		{"Cruciate Ligament Rupture", domain.SeveritySevere},
		{"fractured metatarsal", domain.SeveritySevere},
		{"Meniscus injury", domain.SeveritySevere},
		{"Hamstring Strain", domain.SeverityModerate},
		{"GROIN problems", domain.SeverityModerate},
		{"Ankle sprain", domain.SeverityModerate},
		{"Bruise", domain.SeverityMinor},
		{"Illness", domain.SeverityMinor},
		{"", domain.SeverityMinor},
		// Severe keywords take precedence over moderate ones
		{"Ankle ligament tear", domain.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.injury, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySeverity(tt.injury))
		})
	}
}

func TestSeverityByDuration(t *testing.T) {
	tests := []struct {
		name string
		days domain.NullFloat
		want domain.Severity
	}{
		{"missing", domain.Null(), domain.SeverityUnknown},
		{"zero", domain.Float(0), domain.SeverityMinor},
		{"just below minor limit", domain.Float(29), domain.SeverityMinor},
		{"minor limit", domain.Float(30), domain.SeverityModerate},
		{"just below moderate limit", domain.Float(89), domain.SeverityModerate},
		{"moderate limit", domain.Float(90), domain.SeveritySevere},
		{"long", domain.Float(301), domain.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityByDuration(tt.days))
		})
	}
}

func TestSeverityClassifiersDiffer(t *testing.T) {
	assert.Equal(t, domain.SeverityMinor, ClassifySeverity("Bruise"))
	assert.Equal(t, domain.SeveritySevere, SeverityByDuration(domain.Float(120)))
}

func TestAgeGroupOf(t *testing.T) {
	tests := []struct {
		age  domain.NullFloat
		want domain.AgeGroup
	}{
		{domain.Float(18), domain.AgeGroupYoung},
		{domain.Float(23), domain.AgeGroupYoung},
		{domain.Float(24), domain.AgeGroupPrime},
		{domain.Float(26), domain.AgeGroupPrime},
		{domain.Float(29), domain.AgeGroupExperienced},
		{domain.Float(35), domain.AgeGroupVeteran},
		{domain.Float(40), domain.AgeGroupVeteran},
		{domain.Float(41), ""},
		{domain.Float(0), ""},
		{domain.Null(), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeGroupOf(tt.age), "age %v", tt.age)
	}
}

func TestPerformanceCategoryOf(t *testing.T) {
	tests := []struct {
		rating domain.NullFloat
		want   domain.PerformanceCategory
	}{
		{domain.Float(60), domain.PerformanceAverage},
		{domain.Float(75), domain.PerformanceAverage},
		{domain.Float(78), domain.PerformanceGood},
		{domain.Float(85), domain.PerformanceVeryGood},
		{domain.Float(90), domain.PerformanceElite},
		{domain.Float(100), domain.PerformanceElite},
		{domain.Float(101), ""},
		{domain.Null(), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceCategoryOf(tt.rating), "rating %v", tt.rating)
	}
}
