package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "footlens/internal/errors"
	"footlens/internal/infrastructure"
)

// XLSXContentType is the MIME type of the spreadsheet export
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExporter serializes projections to a single-sheet workbook
type XLSXExporter struct {
	sheet   string
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewXLSXExporter creates an exporter writing to the named sheet. metrics may be nil.
func NewXLSXExporter(sheet string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *XLSXExporter {
	if sheet == "" {
		sheet = "Sheet1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{
		sheet:   sheet,
		logger:  logger.With(slog.String("component", "xlsx_exporter")),
		metrics: metrics,
	}
}

// Write encodes p as a workbook: a header row of column names, then one row per record.
// Missing values are left as empty cells.
func (x *XLSXExporter) Write(ctx context.Context, w io.Writer, p *Projection) error {
	f := excelize.NewFile()
	defer f.Close()

	if first := f.GetSheetName(0); first != x.sheet {
		if err := f.SetSheetName(first, x.sheet); err != nil {
			return apperrors.NewExportError("failed to name sheet", err)
		}
	}

	sw, err := f.NewStreamWriter(x.sheet)
	if err != nil {
		return apperrors.NewExportError("failed to open sheet writer", err)
	}

	header := make([]interface{}, len(p.Columns))
	for i, c := range p.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewExportError("failed to write header row", err)
	}

	for i, row := range p.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewExportError("invalid cell reference", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("failed to write row %d", i+1), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return apperrors.NewExportError("failed to flush sheet", err)
	}
	if err := f.Write(w); err != nil {
		return apperrors.NewExportError("failed to write workbook", err)
	}

	infrastructure.RecordExport(ctx, x.metrics, "xlsx", p.Len())
	x.logger.InfoContext(ctx, "spreadsheet exported",
		slog.Int("rows", p.Len()),
		slog.Int("columns", len(p.Columns)))
	return nil
}

// WriteFile writes the workbook to path, creating its directory
func (x *XLSXExporter) WriteFile(ctx context.Context, path string, p *Projection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create export directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewExportError("failed to create export file", err)
	}
	if err := x.Write(ctx, f, p); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.NewExportError("failed to close export file", err)
	}
	return nil
}
