package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"iso", "2020-01-31", "2020-01-31", true},
		{"iso with time", "2020-01-31 18:45:00", "2020-01-31", true},
		{"rfc3339", "2020-01-31T18:45:00Z", "2020-01-31", true},
		{"short month", "Jan 1, 2020", "2020-01-01", true},
		{"long month", "January 1, 2020", "2020-01-01", true},
		{"day first words", "5 Mar 2022", "2022-03-05", true},
		{"month first numeric", "3/5/2022", "2022-03-05", true},
		{"surrounding whitespace", "  2020-01-31 ", "2020-01-31", true},
		{"blank", "", "", false},
		{"garbage", "not a date", "", false},
		{"impossible day", "2020-02-31", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
			assert.Zero(t, got.Hour())
		})
	}
}

func TestCleanMatchValue(t *testing.T) {
	tests := []struct {
		raw       string
		want      float64
		anomalous bool
	}{
		{"7.2", 7.2, false},
		{" 6.8 ", 6.8, false},
		{"8(S)", 8, false},
		{"7.1 (A)", 7.1, false},
		{"-2", -2, false},
		{"N.A.", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, true},
		{"7,5", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"-inf", 0, true},
		{"+Infinity", 0, true},
		{"6.5(S) NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, anomalous := CleanMatchValue(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.anomalous, anomalous)
		})
	}
}

func TestParseNullableNumber(t *testing.T) {
	v, bad := ParseNullableNumber("26")
	assert.False(t, bad)
	assert.True(t, v.Valid)
	assert.Equal(t, 26.0, v.Value)

	v, bad = ParseNullableNumber("")
	assert.False(t, bad)
	assert.False(t, v.Valid)

	v, bad = ParseNullableNumber("twenty")
	assert.True(t, bad)
	assert.False(t, v.Valid)

	for _, raw := range []string{"NaN", "Inf", "-inf", "infinity"} {
		v, bad = ParseNullableNumber(raw)
		assert.True(t, bad, raw)
		assert.False(t, v.Valid, raw)
	}
}
