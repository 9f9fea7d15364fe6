// Package exporter writes the augmented injury table out of the process.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing with streaming, directory creation and an optional
// UTF-8 BOM for Excel compatibility.
//
// XLSXExporter: Serializes a Projection (a column subset of the table) to a
// single-sheet workbook, either to an io.Writer for HTTP downloads or to a file.
//
// TableExporter: Writes the full augmented table, projections and descriptive
// statistics as CSV.
//
// Example usage:
//
//	proj, err := exporter.Project(snap.Records(), domain.ExportColumns)
//	if err != nil {
//	    return err
//	}
//	xlsx := exporter.NewXLSXExporter("Injury Impact", logger, nil)
//	err = xlsx.WriteFile(ctx, "exports/Injury_Impact_Analysis_Export.xlsx", proj)
package exporter
