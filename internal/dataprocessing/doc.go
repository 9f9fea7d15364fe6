// Package dataprocessing turns the raw football injury table into the augmented
// table the dashboard, exporters and CLI read from.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Reader: loads a CSV or XLSX file into a RawTable addressed by header name
// 2. Cleaners: parse dates, identity numbers and match cells into typed values
// 3. Pipeline: runs the ordered stages that derive every analytic column
// 4. Snapshot: the immutable result of one load, shared by reference
//
// # Usage
//
//	snap, err := dataprocessing.Load(ctx, "data/player_injuries_impact.csv", logger)
//	if err != nil {
//	    return err // always a load error
//	}
//	for _, w := range snap.Warnings() {
//	    fmt.Println(w)
//	}
//
// # Data Flow
//
//	File → ReadTable → RawTable → Pipeline.Run → Result → Snapshot
//
// Stages run in a fixed order: extract, dates, duration, calendar, value cleaning,
// rating aggregates, goal difference, win count, severity, derived indices,
// binning and residual backfill.
//
// # Error Handling
//
// Only a source that cannot be read at all fails a load. Malformed cells degrade to
// a sentinel (0 for match cells, missing for dates and identity numbers) and are
// reported as Warning values, folded per stage, column and message.
package dataprocessing
