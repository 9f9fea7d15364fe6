package config

import "time"

// Application constants
const (
	AppName    = "FootLens"
	AppVersion = "1.0.0"

	DefaultDataFile       = "data/player_injuries_impact.csv"
	DefaultExportDir      = "exports"
	DefaultLogsDir        = "logs"
	DefaultExportFileName = "Injury_Impact_Analysis_Export.xlsx"
	DefaultExportSheet    = "Injury Impact"

	DefaultPreviewRows = 10
	DefaultTopDrops    = 5

	DefaultRateLimit      = 100 // requests per second
	DefaultBurstSize      = 50
	DefaultRequestTimeout = 30 * time.Second
)
