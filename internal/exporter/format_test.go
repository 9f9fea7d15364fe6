package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"footlens/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "zero value",
			input:    0.0,
			expected: "0",
		},
		{
			name:     "positive integer",
			input:    164.0,
			expected: "164",
		},
		{
			name:     "negative decimal with trailing zeros",
			input:    -2.500,
			expected: "-2.5",
		},
		{
			name:     "repeating decimal keeps full precision",
			input:    2.0 / 3,
			expected: "0.6666666666666666",
		},
		{
			name:     "small positive decimal",
			input:    0.001234,
			expected: "0.001234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"string", "Harry Kane", "Harry Kane"},
		{"float", 7.25, "7.25"},
		{"int", 3, "3"},
		{"int64", int64(-12), "-12"},
		{"bool", true, "true"},
		{"time", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "2020-01-01"},
		{"severity", domain.SeveritySevere, "Severe"},
		{"null float", domain.Null(), ""},
		{"valid null float", domain.Float(1.5), "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatValue(tt.input))
		})
	}
}
