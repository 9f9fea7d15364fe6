package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_PARAMETER", "unknown severity")
	assert.Equal(t, "unknown severity", err.Error())
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"no records", ErrNoRecords, http.StatusNotFound, "NO_RECORDS"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"data unavailable", ErrDataUnavailable, http.StatusServiceUnavailable, "DATA_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Run("invalid request carries the cause", func(t *testing.T) {
		err := InvalidRequestWithError(errors.New("bad query"))
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, "bad query", err.Details)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		err := ErrValidation("severities", "must be one of Minor Moderate Severe")
		assert.Equal(t, ValidationError{Field: "severities", Message: "must be one of Minor Moderate Severe"}, err.Details)
	})

	t.Run("multiple validation errors", func(t *testing.T) {
		err := NewValidationErrors([]ValidationError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}})
		details, ok := err.Details.(ValidationErrors)
		require.True(t, ok)
		assert.Len(t, details.Errors, 2)
	})
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/records", nil)

	require.NoError(t, render.Render(w, r, ErrNoRecords))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NO_RECORDS", body.ErrorCode)
}
