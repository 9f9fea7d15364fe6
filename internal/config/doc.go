// Package config loads FootLens configuration.
//
// Sources, lowest precedence first:
//
//  1. Default()
//  2. a YAML file (FOOTLENS_CONFIG, else config.yaml or configs/config.yaml)
//  3. a .env file loaded with godotenv (never overrides variables already set)
//  4. FOOTLENS_* environment variables processed by envconfig
//
// Nested sections map to prefixed variables:
//
//	FOOTLENS_SERVER_PORT=8080
//	FOOTLENS_PATHS_DATA_FILE=data/player_injuries_impact.csv
//	FOOTLENS_LOGGING_LEVEL=debug
//	FOOTLENS_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//	FOOTLENS_OTEL_TRACE_EXPORTER=stdout
//
// Load validates the merged result; an invalid configuration is an error, never
// silently corrected.
package config
