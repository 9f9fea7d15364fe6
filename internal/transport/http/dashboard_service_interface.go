package http

import (
	"context"
	"io"

	"footlens/internal/dataprocessing"
	"footlens/internal/exporter"
	"footlens/internal/services"
	"footlens/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	Info(ctx context.Context) (*services.SnapshotInfo, error)
	Reload(ctx context.Context) (*services.SnapshotInfo, error)
	Warnings(ctx context.Context) ([]dataprocessing.Warning, error)
	Options(ctx context.Context) (*services.FilterOptions, error)
	Records(ctx context.Context, f services.Filter) ([]domain.InjuryRecord, error)

	Overview(ctx context.Context, f services.Filter) (*services.Overview, error)
	TopDrops(ctx context.Context, f services.Filter, n int) ([]services.PerformanceDrop, error)
	Injuries(ctx context.Context, f services.Filter, q services.InjuryQuery) (*services.InjuryAnalysis, error)
	Players(ctx context.Context, f services.Filter) (*services.PlayerImpact, error)
	Teams(ctx context.Context, f services.Filter, q services.TeamQuery) (*services.TeamImpact, error)
	Trends(ctx context.Context, f services.Filter, q services.TrendQuery) (*services.Trends, error)
	Stats(ctx context.Context, f services.Filter) ([]dataprocessing.Summary, error)

	ExportPreview(ctx context.Context, f services.Filter, columns []string) (*exporter.Projection, error)
	Export(ctx context.Context, f services.Filter, columns []string, w io.Writer) (int, error)
}
