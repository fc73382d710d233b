// Package main hosts the court case tracker service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and the /v1/court-cases routes. Request bodies are
//     validated before they reach the coordinator.
//   - Coordinator: internal/courtcase.Service merges stored records with unknown case numbers, parses unknown numbers
//     into crawl requests, posts them to the crawl service, and records them as pending once the post succeeds.
//   - Persistence: Postgres via pgx when db.dsn is set; otherwise an in-memory store suitable for local runs and tests.
//     With db.auto_migrate the case table is created on startup.
//   - Configuration & plumbing: Viper populates config from env/files (prefix CASETRACKER_), an optional .env file is
//     loaded first, zap provides structured logging, and Prometheus metrics are exported at /metrics.
//
// Quick checklist:
//   - Configure env vars: CASETRACKER_CRAWLER_SERVICE_BASE_URL (or TJ_CRAWLER_URL), CASETRACKER_DB_DSN (or
//     DATABASE_URL), CASETRACKER_SERVER_PORT or PORT.
//   - Run locally: go run ./cmd/casetracker -config config.yaml (or rely solely on env overrides).
//   - The process reacts to SIGTERM by draining in-flight HTTP requests before exiting.
package main
