// Package validation checks user input before it reaches the dashboard services.
//
// Request validation uses go-playground/validator struct tags on the request types
// accepted by the HTTP layer and reports failures as a single APIError listing every
// offending field. File validation checks the injury source file and the export
// directory before the CLI or server touch them.
package validation
