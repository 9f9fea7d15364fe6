package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/dataprocessing"
	"footlens/internal/services"
	"footlens/internal/shared/testutil"
)

type staticSnapshots struct {
	snap *dataprocessing.Snapshot
}

func (s staticSnapshots) Snapshot() *dataprocessing.Snapshot {
	return s.snap
}

func TestHealthHandler_Routes(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	snap, err := dataprocessing.Load(context.Background(), testutil.NewInjuryTable(testutil.SampleInjuries()...).WriteCSV(t), logger)
	require.NoError(t, err)

	tests := []struct {
		name           string
		snapshots      services.SnapshotProvider
		path           string
		expectedStatus int
		expectedState  string
	}{
		{"health", staticSnapshots{}, "/", http.StatusOK, "ok"},
		{"live", staticSnapshots{}, "/live", http.StatusOK, "alive"},
		{"ready with data", staticSnapshots{snap: snap}, "/ready", http.StatusOK, "ready"},
		{"not ready without data", staticSnapshots{}, "/ready", http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService("1.0.0", "", tt.snapshots, logger), logger)

			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Equal(t, "1.0.0", status.Version)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewHealthHandler(services.NewHealthService("1.0.0", "2026-01-01", nil, logger), logger)

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "2026-01-01", body["build_time"])
}
