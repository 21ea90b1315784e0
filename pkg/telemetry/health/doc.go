// Package health serves liveness and readiness probes for long-running guard
// processes.
//
// # Endpoints
//
//   - /health: Liveness probe - the process is running
//   - /ready: Readiness probe - the rule catalog is loaded and the audit
//     storage answers
//   - /version: Build information
//
// The endpoints are mounted on the metrics server, so a single listen
// address exposes both:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("catalog", health.CatalogCheck(gk.Catalog))
//	checker.RegisterCheck("audit_storage", health.StorageCheck(store))
//	go collector.Serve(ctx, addr, "/metrics", checker.Mount(health.VersionInfo{Version: version}))
//
// # Liveness vs Readiness
//
// Liveness never runs component checks; a slow audit database must not get
// the process restarted. Readiness runs every registered check concurrently,
// each bounded by the checker timeout, and answers 503 when any of them
// fails.
package health
