package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"footlens/internal/dataprocessing"
	"footlens/internal/exporter"
	"footlens/internal/infrastructure"
	"footlens/pkg/contracts/domain"
)

// Loader produces a fresh snapshot of a source file
type Loader interface {
	Load(ctx context.Context, path string) (*dataprocessing.Snapshot, error)
}

// DashboardConfig configures a DashboardService
type DashboardConfig struct {
	Source      string
	Loader      Loader
	Exporter    *exporter.XLSXExporter
	Tables      *exporter.TableExporter
	PreviewRows int
	TopDrops    int
}

// DashboardService answers every dashboard question from the current snapshot.
// All operations are read-only; Reload swaps in a whole new snapshot.
type DashboardService struct {
	snapshot    atomic.Pointer[dataprocessing.Snapshot]
	source      string
	loader      Loader
	xlsx        *exporter.XLSXExporter
	tables      *exporter.TableExporter
	previewRows int
	topDrops    int
	logger      *slog.Logger
}

// NewDashboardService creates a dashboard over snap. snap may be nil until Reload succeeds.
func NewDashboardService(snap *dataprocessing.Snapshot, cfg DashboardConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "dashboard_service")
	if cfg.Exporter == nil {
		cfg.Exporter = exporter.NewXLSXExporter("", logger, nil)
	}
	if cfg.Tables == nil {
		cfg.Tables = exporter.NewTableExporter(exporter.NewCSVWriter(nil, logger), nil)
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	if cfg.TopDrops <= 0 {
		cfg.TopDrops = 5
	}

	s := &DashboardService{
		source:      cfg.Source,
		loader:      cfg.Loader,
		xlsx:        cfg.Exporter,
		tables:      cfg.Tables,
		previewRows: cfg.PreviewRows,
		topDrops:    cfg.TopDrops,
		logger:      logger,
	}
	if snap != nil {
		s.snapshot.Store(snap)
		if s.source == "" {
			s.source = snap.Source()
		}
	}
	return s
}

// Snapshot returns the current snapshot, or nil before the first load
func (s *DashboardService) Snapshot() *dataprocessing.Snapshot {
	return s.snapshot.Load()
}

func (s *DashboardService) current() (*dataprocessing.Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// filtered applies f to the current snapshot
func (s *DashboardService) filtered(f Filter) ([]domain.InjuryRecord, *dataprocessing.Snapshot, error) {
	snap, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	return f.Apply(snap.Records()), snap, nil
}

// SnapshotInfo describes the loaded table
type SnapshotInfo struct {
	ID       string                   `json:"id"`
	Source   string                   `json:"source"`
	LoadedAt time.Time                `json:"loaded_at"`
	Rows     int                      `json:"rows"`
	Columns  []string                 `json:"columns"`
	Warnings []dataprocessing.Warning `json:"warnings"`
}

func infoOf(snap *dataprocessing.Snapshot) *SnapshotInfo {
	warnings := snap.Warnings()
	if warnings == nil {
		warnings = []dataprocessing.Warning{}
	}
	return &SnapshotInfo{
		ID:       snap.ID(),
		Source:   snap.Source(),
		LoadedAt: snap.LoadedAt(),
		Rows:     snap.Len(),
		Columns:  snap.Columns(),
		Warnings: warnings,
	}
}

// Info describes the current snapshot
func (s *DashboardService) Info(ctx context.Context) (*SnapshotInfo, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return infoOf(snap), nil
}

// Reload rebuilds the snapshot from the source file. On failure the previous
// snapshot stays in place.
func (s *DashboardService) Reload(ctx context.Context) (*SnapshotInfo, error) {
	if s.loader == nil || s.source == "" {
		return nil, ErrReloadUnavailable
	}

	snap, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.logger.ErrorContext(ctx, "snapshot reload failed",
			slog.String("source", s.source),
			slog.String("error", err.Error()))
		return nil, err
	}

	previous := s.snapshot.Swap(snap)
	attrs := []any{slog.String("snapshot_id", snap.ID()), slog.Int("rows", snap.Len())}
	if previous != nil {
		attrs = append(attrs, slog.String("previous_snapshot_id", previous.ID()))
	}
	s.logger.InfoContext(ctx, "snapshot reloaded", attrs...)
	return infoOf(snap), nil
}

// Warnings returns the non-fatal anomalies of the current load
func (s *DashboardService) Warnings(ctx context.Context) ([]dataprocessing.Warning, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	if snap.Warnings() == nil {
		return []dataprocessing.Warning{}, nil
	}
	return snap.Warnings(), nil
}

// Options lists the values each filter can take over the whole table
func (s *DashboardService) Options(ctx context.Context) (*FilterOptions, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	opts := buildOptions(snap.Records())
	return &opts, nil
}

// Records returns the filtered rows in table order. An empty result is not an error.
func (s *DashboardService) Records(ctx context.Context, f Filter) ([]domain.InjuryRecord, error) {
	records, _, err := s.filtered(f)
	return records, err
}

// Overview holds the headline KPI cards
type Overview struct {
	TotalInjuries          int              `json:"total_injuries"`
	FilteredOut            int              `json:"filtered_out"`
	AvgDurationDays        domain.NullFloat `json:"avg_duration_days"`
	StdDurationDays        domain.NullFloat `json:"std_duration_days"`
	AvgPerformanceDrop     domain.NullFloat `json:"avg_performance_drop"`
	MostCommonInjury       string           `json:"most_common_injury"`
	MostCommonInjuryCount  int              `json:"most_common_injury_count"`
	AvgTeamPerformanceDrop domain.NullFloat `json:"avg_team_performance_drop"`
	WinDrop                domain.NullFloat `json:"win_drop"`
	WinRateBefore          float64          `json:"win_rate_before"`
	WinRateDuring          float64          `json:"win_rate_during"`
	MatchesAnalyzed        int              `json:"matches_analyzed"`
	HighestImpactInjuries  []InjuryImpact   `json:"highest_impact_injuries"`
}

// InjuryImpact is the team impact of one injury type
type InjuryImpact struct {
	Injury              string           `json:"injury"`
	Cases               int              `json:"cases"`
	AvgTeamDrop         domain.NullFloat `json:"avg_team_drop"`
	AvgRecoveryDuration domain.NullFloat `json:"avg_recovery_days"`
}

// Overview computes the KPI cards over the filtered rows
func (s *DashboardService) Overview(ctx context.Context, f Filter) (*Overview, error) {
	records, snap, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	durations := dataprocessing.ValidValues(records, domain.ColDurationDays)
	o := &Overview{
		TotalInjuries:          len(records),
		FilteredOut:            snap.Len() - len(records),
		AvgDurationDays:        dataprocessing.NullMean(durations),
		StdDurationDays:        dataprocessing.SampleStdDev(durations),
		AvgPerformanceDrop:     meanOf(records, domain.ColPerformanceDrop),
		AvgTeamPerformanceDrop: meanOf(records, domain.ColTeamPerformanceDrop),
		MatchesAnalyzed:        len(records) * domain.MatchesPerWindow,
	}

	winsBefore := meanOf(records, domain.ColWinRatioBefore)
	winsDuring := meanOf(records, domain.ColWinRatioDuring)
	if winsBefore.Valid && winsDuring.Valid {
		o.WinDrop = domain.Float(winsBefore.Value - winsDuring.Value)
	}
	o.WinRateBefore = sumOf(records, domain.ColWinRatioBefore) / float64(o.MatchesAnalyzed) * 100
	o.WinRateDuring = sumOf(records, domain.ColWinRatioDuring) / float64(o.MatchesAnalyzed) * 100

	groups := groupBy(records, func(r *domain.InjuryRecord) string { return r.Injury })
	counts := append([]recordGroup(nil), groups...)
	sort.SliceStable(counts, func(i, j int) bool { return len(counts[i].records) > len(counts[j].records) })
	o.MostCommonInjury = counts[0].key
	o.MostCommonInjuryCount = len(counts[0].records)

	impacts := make([]InjuryImpact, 0, len(groups))
	for _, g := range groups {
		impacts = append(impacts, InjuryImpact{
			Injury:              g.key,
			Cases:               len(g.records),
			AvgTeamDrop:         meanOf(g.records, domain.ColTeamPerformanceDrop),
			AvgRecoveryDuration: meanOf(g.records, domain.ColDurationDays),
		})
	}
	sort.SliceStable(impacts, func(i, j int) bool {
		return nullGreater(impacts[i].AvgTeamDrop, impacts[j].AvgTeamDrop)
	})
	o.HighestImpactInjuries = head(impacts, 3)

	return o, nil
}

// PerformanceDrop is one row of the largest rating declines
type PerformanceDrop struct {
	Name                 string           `json:"name"`
	Team                 string           `json:"team_name"`
	Injury               string           `json:"injury"`
	PerformanceDropIndex float64          `json:"performance_drop_index"`
	InjuryDurationDays   domain.NullFloat `json:"injury_duration_days"`
	Age                  domain.NullFloat `json:"age"`
}

// TopDrops returns the records with the largest performance drop, largest first.
// n <= 0 uses the configured default.
func (s *DashboardService) TopDrops(ctx context.Context, f Filter, n int) ([]PerformanceDrop, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.topDrops
	}

	valid := make([]domain.InjuryRecord, 0, len(records))
	for _, r := range records {
		if r.PerformanceDropIndex.Valid {
			valid = append(valid, r)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].PerformanceDropIndex.Value > valid[j].PerformanceDropIndex.Value
	})

	out := make([]PerformanceDrop, 0, n)
	for _, r := range head(valid, n) {
		out = append(out, PerformanceDrop{
			Name:                 r.Name,
			Team:                 r.Team,
			Injury:               r.Injury,
			PerformanceDropIndex: r.PerformanceDropIndex.Value,
			InjuryDurationDays:   r.InjuryDurationDays,
			Age:                  r.Age,
		})
	}
	return out, nil
}

// exportRows sorts records by drop, largest first, with missing drops last
func exportRows(records []domain.InjuryRecord) []domain.InjuryRecord {
	out := append([]domain.InjuryRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return nullGreater(out[i].PerformanceDropIndex, out[j].PerformanceDropIndex)
	})
	return out
}

func (s *DashboardService) projection(f Filter, columns []string) (*exporter.Projection, error) {
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = domain.ExportColumns
	}

	p, err := exporter.Project(exportRows(records), columns)
	if err != nil {
		if errors.Is(err, exporter.ErrUnknownColumn) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidColumn, err)
		}
		return nil, err
	}
	if p.Len() == 0 {
		return nil, ErrNoRecords
	}
	return p, nil
}

// ExportPreview returns the first rows of the export projection
func (s *DashboardService) ExportPreview(ctx context.Context, f Filter, columns []string) (*exporter.Projection, error) {
	p, err := s.projection(f, columns)
	if err != nil {
		return nil, err
	}
	return p.Head(s.previewRows), nil
}

// Export writes the export projection of the filtered rows to w as a workbook.
// With no columns the default export columns are used.
func (s *DashboardService) Export(ctx context.Context, f Filter, columns []string, w io.Writer) (int, error) {
	p, err := s.projection(f, columns)
	if err != nil {
		return 0, err
	}
	if err := s.xlsx.Write(ctx, w, p); err != nil {
		infrastructure.RecordError(ctx, err)
		return 0, err
	}
	return p.Len(), nil
}

// ExportFile writes the export projection of the filtered rows to a workbook at path
func (s *DashboardService) ExportFile(ctx context.Context, f Filter, columns []string, path string) (int, error) {
	p, err := s.projection(f, columns)
	if err != nil {
		return 0, err
	}
	if err := s.xlsx.WriteFile(ctx, path, p); err != nil {
		infrastructure.RecordError(ctx, err)
		return 0, err
	}
	return p.Len(), nil
}

// ExportCSVFile writes the export projection of the filtered rows as CSV to path
func (s *DashboardService) ExportCSVFile(ctx context.Context, f Filter, columns []string, path string) (int, error) {
	p, err := s.projection(f, columns)
	if err != nil {
		return 0, err
	}
	if err := s.tables.ExportProjection(ctx, p, path); err != nil {
		infrastructure.RecordError(ctx, err)
		return 0, err
	}
	return p.Len(), nil
}
