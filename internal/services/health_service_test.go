package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/config"
	"footlens/internal/shared/testutil"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("2.0.0", "2026-01-01", nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "2.0.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())
	assert.True(t, handler.ContainsMessage("HealthService initialized"))
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		provider   func(t *testing.T) SnapshotProvider
		wantStatus string
	}{
		{
			name:       "no provider",
			provider:   func(t *testing.T) SnapshotProvider { return nil },
			wantStatus: "not_ready",
		},
		{
			name: "no snapshot yet",
			provider: func(t *testing.T) SnapshotProvider {
				return NewDashboardService(nil, DashboardConfig{}, nil)
			},
			wantStatus: "not_ready",
		},
		{
			name: "snapshot published",
			provider: func(t *testing.T) SnapshotProvider {
				logger, _ := testutil.NewTestLogger(t)
				return NewDashboardService(loadSnapshot(t, testutil.SampleInjuries()...), DashboardConfig{}, logger)
			},
			wantStatus: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("", "", tt.provider(t), logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, config.AppVersion, status.Version)

			data, ok := status.Services["data"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, data.Status)
		})
	}
}

func TestHealthService_LivenessCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", nil, logger)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	withBuild := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", nil, logger).Version()
	assert.Equal(t, config.AppName, withBuild["name"])
	assert.Equal(t, "1.2.3", withBuild["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", withBuild["build_time"])

	withoutBuild := NewHealthService("1.2.3", "", nil, logger).Version()
	assert.NotContains(t, withoutBuild, "build_time")
}
