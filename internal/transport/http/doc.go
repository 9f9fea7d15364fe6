// Package http implements the HTTP handlers of the injury dashboard.
//
// Handlers are thin: they parse and validate query parameters into service
// filters, call the dashboard service and render either a JSON envelope
//
//	{"status": "success", "data": ..., "count": ...}
//
// or an RFC 7807 problem through the shared error handler. Service errors map as
// follows:
//
//	services.ErrNoSnapshot         503 DATA_UNAVAILABLE
//	services.ErrNoRecords          404 NO_RECORDS
//	services.ErrInvalidColumn      400 INVALID_PARAMETER
//	services.ErrReloadUnavailable  409 RELOAD_UNAVAILABLE
//	validation failures            400 VALIDATION_FAILED
//
// Filters are repeated query parameters (season, severity, position, age_group,
// team, player); an absent parameter does not constrain the rows. The export
// endpoints stream an XLSX workbook as an attachment.
package http
