package services

import "errors"

// Dashboard service errors
var (
	// Snapshot errors
	ErrNoSnapshot        = errors.New("injury data has not been loaded")
	ErrReloadUnavailable = errors.New("snapshot reload is not configured")

	// Query errors
	ErrNoRecords     = errors.New("no injury records match the selected filters")
	ErrInvalidColumn = errors.New("invalid export column")
)
