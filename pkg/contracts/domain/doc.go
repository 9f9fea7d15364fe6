// Package domain contains the injury records shared by the preprocessing
// pipeline, the dashboard services and the exporters.
//
// An InjuryRecord holds one player's injury episode as read from the source
// table plus every column derived from it. Columns are addressed by their
// source or derived header name through Value and NumericField, which lets
// exporters and filters work from a list of column names.
package domain
