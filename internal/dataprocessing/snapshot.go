package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"footlens/internal/infrastructure"
	"footlens/pkg/contracts/domain"
)

const tracerName = "footlens/dataprocessing"

// Snapshot is the augmented table of one load. It is never modified after Load
// returns, so it can be shared by reference across goroutines.
type Snapshot struct {
	id       string
	source   string
	loadedAt time.Time
	records  []domain.InjuryRecord
	warnings []Warning
}

// NewSnapshot wraps a pipeline result
func NewSnapshot(source string, result *Result) *Snapshot {
	return &Snapshot{
		id:       uuid.New().String(),
		source:   source,
		loadedAt: time.Now().UTC(),
		records:  result.Records,
		warnings: result.Warnings,
	}
}

// ID identifies the load that produced the snapshot
func (s *Snapshot) ID() string {
	return s.id
}

// Source is the path the table was read from
func (s *Snapshot) Source() string {
	return s.source
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// Warnings returns the non-fatal anomalies found during the load
func (s *Snapshot) Warnings() []Warning {
	return s.warnings
}

// Columns lists every raw and derived column in table order
func (s *Snapshot) Columns() []string {
	return domain.Columns
}

// Records returns the rows in source order. Callers must not modify them.
func (s *Snapshot) Records() []domain.InjuryRecord {
	return s.records
}

// LoadOption configures Load
type LoadOption func(*loadOptions)

type loadOptions struct {
	metrics *infrastructure.BusinessMetrics
}

// WithMetrics records load and stage metrics on m
func WithMetrics(m *infrastructure.BusinessMetrics) LoadOption {
	return func(o *loadOptions) { o.metrics = m }
}

// Load reads path and runs the pipeline over it. The only error it returns is a
// load error; anomalies inside the table become snapshot warnings.
func Load(ctx context.Context, path string, logger *slog.Logger, opts ...LoadOption) (*Snapshot, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.load")
	defer span.End()
	span.SetAttributes(attribute.String("source", path))

	start := time.Now()
	table, err := ReadTable(path)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordPipelineLoad(ctx, o.metrics, path, time.Since(start), 0, 0, err)
		logger.ErrorContext(ctx, "failed to load injury data",
			slog.String("source", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := NewPipeline(logger, o.metrics).Run(ctx, table)
	snap := NewSnapshot(path, result)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("snapshot_id", snap.ID()),
		attribute.Int("rows", snap.Len()),
		attribute.Int("warnings", len(snap.Warnings())),
	)
	infrastructure.RecordPipelineLoad(ctx, o.metrics, path, elapsed, snap.Len(), len(snap.Warnings()), nil)

	logger.InfoContext(ctx, "injury data loaded",
		slog.String("source", path),
		slog.String("snapshot_id", snap.ID()),
		slog.Int("rows", snap.Len()),
		slog.Int("warnings", len(snap.Warnings())),
		slog.Duration("duration", elapsed))

	return snap, nil
}

// SnapshotLoader collapses concurrent loads of the same path into one pipeline run
type SnapshotLoader struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	group   singleflight.Group
}

// NewSnapshotLoader creates a loader. metrics may be nil.
func NewSnapshotLoader(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *SnapshotLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotLoader{logger: logger, metrics: metrics}
}

// Load returns a fresh snapshot of path. Callers that arrive while a load of the
// same path is running share its result.
func (l *SnapshotLoader) Load(ctx context.Context, path string) (*Snapshot, error) {
	v, err, shared := l.group.Do(path, func() (interface{}, error) {
		return Load(ctx, path, l.logger, WithMetrics(l.metrics))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.DebugContext(ctx, "shared in-flight snapshot load", slog.String("source", path))
	}
	return v.(*Snapshot), nil
}
