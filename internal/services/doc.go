// Package services implements the business logic layer of FootLens.
// It sits between the HTTP handlers and the injury snapshot so that every
// dashboard rule is centralized and testable without a server.
//
// # Services
//
//	DashboardService  filters, KPI cards, tab analytics, export and reload
//	HealthService     liveness, readiness and version reporting
//
// # Snapshot Handling
//
// DashboardService keeps the current *dataprocessing.Snapshot behind an atomic
// pointer. Queries read whichever snapshot is current when they start; Reload
// builds a complete new snapshot before swapping it in, so readers never see a
// partially built table.
//
// # Error Handling
//
// Services return sentinel errors (ErrNoSnapshot, ErrNoRecords, ErrInvalidColumn)
// that handlers map to HTTP problem details with errors.Is.
package services
