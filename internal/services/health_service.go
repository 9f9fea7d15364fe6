package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"footlens/internal/config"
	"footlens/internal/dataprocessing"
)

// SnapshotProvider exposes the currently published snapshot
type SnapshotProvider interface {
	Snapshot() *dataprocessing.Snapshot
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	snapshots SnapshotProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service. snapshots may be nil, in which case
// the service never reports ready.
func NewHealthService(version, buildTime string, snapshots SnapshotProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = config.AppVersion
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		snapshots: snapshots,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once an injury snapshot is published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDataHealth()
	status.Services["data"] = data
	if data.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"name":         config.AppName,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// checkDataHealth checks that the injury table is loaded
func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.snapshots == nil {
		return ServiceHealth{Status: "not_ready", Message: "no snapshot provider configured"}
	}

	snap := hs.snapshots.Snapshot()
	if snap == nil {
		return ServiceHealth{Status: "not_ready", Message: "injury data not loaded"}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("snapshot %s with %d rows and %d warnings", snap.ID(), snap.Len(), len(snap.Warnings())),
		Uptime:  time.Since(snap.LoadedAt()).Round(time.Second).String(),
	}
}
