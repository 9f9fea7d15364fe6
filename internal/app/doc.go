// Package app provides application initialization and lifecycle management for
// the FootLens dashboard server. It wires configuration, logging, telemetry, the
// injury snapshot and the HTTP surface together at startup.
//
// # Initialization Flow
//
//	1. Resolve paths and create the export and log directories
//	2. Initialize OpenTelemetry and the business metrics
//	3. Validate and load the injury table into the first snapshot
//	4. Build the dashboard and health services over that snapshot
//	5. Set up middleware and mount the API routes
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within the
// configured shutdown timeout and flushes telemetry.
package app
