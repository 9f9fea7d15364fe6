// Package shared holds code used across FootLens packages that belongs to no single layer.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - InjuryRow and InjuryTable for writing source tables as CSV or XLSX fixtures
//   - SampleInjuries, a small dataset covering every severity bucket
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.NewInjuryTable(testutil.SampleInjuries()...).WriteCSV(t)
//	    snap, err := dataprocessing.Load(context.Background(), path, logger)
//	    ...
//	}
//
// Nothing in this package may depend on services, transport or app packages.
package shared
