package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"footlens/internal/dataprocessing"
	"footlens/internal/infrastructure"
	"footlens/pkg/contracts/domain"
)

// TableExporter writes the augmented table and its derived reports as CSV
type TableExporter struct {
	csvWriter *CSVWriter
	metrics   *infrastructure.BusinessMetrics
}

// NewTableExporter creates a table exporter. metrics may be nil.
func NewTableExporter(csvWriter *CSVWriter, metrics *infrastructure.BusinessMetrics) *TableExporter {
	return &TableExporter{csvWriter: csvWriter, metrics: metrics}
}

// ExportTable writes every raw and derived column of records, in table order.
// No BOM is written so the file reads back through the injury table reader unchanged.
func (e *TableExporter) ExportTable(ctx context.Context, records []domain.InjuryRecord, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, domain.Columns, false)
	if err != nil {
		return err
	}

	row := make([]string, len(domain.Columns))
	for i := range records {
		for j, c := range domain.Columns {
			v, _ := records[i].Value(c)
			row[j] = formatValue(v)
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %d: %w", records[i].Row, err)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	infrastructure.RecordExport(ctx, e.metrics, "csv", len(records))
	e.csvWriter.logger.InfoContext(ctx, "augmented table exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(records)))
	return nil
}

// ExportProjection writes a projection with a BOM for spreadsheet tools
func (e *TableExporter) ExportProjection(ctx context.Context, p *Projection, outputPath string) error {
	if err := e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   p.Columns,
		Records:   p.Strings(),
		BOMPrefix: true,
	}); err != nil {
		return err
	}
	infrastructure.RecordExport(ctx, e.metrics, "csv", p.Len())
	return nil
}

// summaryHeaders are the column headers of a statistics report
var summaryHeaders = []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}

// ExportSummaries writes one row of descriptive statistics per column
func (e *TableExporter) ExportSummaries(ctx context.Context, summaries []dataprocessing.Summary, outputPath string) error {
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.Column,
			formatInt(int64(s.Count)),
			s.Mean.String(),
			s.Std.String(),
			s.Min.String(),
			s.Q25.String(),
			s.Median.String(),
			s.Q75.String(),
			s.Max.String(),
		})
	}

	if err := e.csvWriter.WriteCSV(outputPath, WriteOptions{Headers: summaryHeaders, Records: records}); err != nil {
		return err
	}
	infrastructure.RecordExport(ctx, e.metrics, "csv", len(records))
	return nil
}
