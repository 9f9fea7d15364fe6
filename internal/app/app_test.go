package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footlens/internal/config"
	apierrors "footlens/internal/errors"
	"footlens/internal/exporter"
	"footlens/internal/shared/testutil"
)

func testConfig(t *testing.T, dataFile string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.DataFile = dataFile
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.EnableTracing = false
	cfg.Telemetry.MetricExporter = "none"
	return cfg
}

func newTestApp(t *testing.T) *Application {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	dataFile := testutil.NewInjuryTable(testutil.SampleInjuries()...).WriteCSV(t)

	app, err := NewApplication(context.Background(), testConfig(t, dataFile), logger)
	require.NoError(t, err)
	return app
}

func serve(app *Application, method, path string, body string, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.DashboardService)
	assert.NotNil(t, app.HealthService)
	assert.Equal(t, "127.0.0.1:0", app.Server.Addr)
	assert.Equal(t, 3, app.DashboardService.Snapshot().Len())
	assert.DirExists(t, app.Paths.ExportDir)
	assert.DirExists(t, app.Paths.LogsDir)
}

func TestNewApplication_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewApplication(context.Background(), nil, nil)
		assert.Equal(t, apierrors.ErrTypeConfig, apierrors.TypeOf(err))
	})

	t.Run("missing data file", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		missing := filepath.Join(t.TempDir(), "missing.csv")

		_, err := NewApplication(context.Background(), testConfig(t, missing), logger)
		require.Error(t, err)
		assert.True(t, apierrors.IsLoadError(err))
	})

	t.Run("unsupported data file", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		dataFile := filepath.Join(t.TempDir(), "injuries.json")

		_, err := NewApplication(context.Background(), testConfig(t, dataFile), logger)
		require.Error(t, err)
		assert.True(t, apierrors.IsLoadError(err))
	})
}

func TestRouter_Routes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
		{"snapshot", http.MethodGet, "/api/dashboard/snapshot", http.StatusOK},
		{"overview", http.MethodGet, "/api/dashboard/overview", http.StatusOK},
		{"filtered overview", http.MethodGet, "/api/dashboard/overview?team=Arsenal", http.StatusOK},
		{"no matching records", http.MethodGet, "/api/dashboard/overview?team=Nobody", http.StatusNotFound},
		{"invalid severity", http.MethodGet, "/api/dashboard/overview?severity=Fatal", http.StatusBadRequest},
		{"top drops", http.MethodGet, "/api/dashboard/top-drops?limit=2", http.StatusOK},
		{"trends", http.MethodGet, "/api/dashboard/trends", http.StatusOK},
		{"stats", http.MethodGet, "/api/dashboard/stats", http.StatusOK},
		{"export preview", http.MethodGet, "/api/dashboard/export/preview", http.StatusOK},
		{"reload", http.MethodPost, "/api/dashboard/reload", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/dashboard/overview", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.method, tt.path, "", "")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRouter_Overview(t *testing.T) {
	app := newTestApp(t)

	rec := serve(app, http.MethodGet, "/api/dashboard/overview", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			TotalInjuries int `json:"total_injuries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Data.TotalInjuries)
}

func TestRouter_Export(t *testing.T) {
	app := newTestApp(t)

	t.Run("download", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/dashboard/export", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exporter.XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), config.DefaultExportFileName)
		assert.Equal(t, "3", rec.Header().Get("X-Export-Rows"))
	})

	t.Run("post with filters", func(t *testing.T) {
		rec := serve(app, http.MethodPost, "/api/dashboard/export", `{"teams":["Arsenal"]}`, "application/json")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Export-Rows"))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		rec := serve(app, http.MethodPost, "/api/dashboard/export", `teams=Arsenal`, "text/plain")

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := serve(app, http.MethodPost, "/api/dashboard/export", `{"teams":`, "application/json")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_JSON")
	})
}

func TestRouter_CORS(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/overview", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Export-Rows")
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(ctx))
}

func TestPerformStartupHealthCheck(t *testing.T) {
	app := newTestApp(t)

	assert.NoError(t, app.performStartupHealthCheck(context.Background()))
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()

	assert.Len(t, id, 12)
	assert.Equal(t, id, generateBuildID())
}
