// Package api hosts the HTTP server, middleware, and REST handlers. Notable routes:
//   - GET /healthz and /readyz for Kubernetes probes; readyz pings the store.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/court-cases/crawl to request crawls for case numbers.
//   - POST /v1/court-cases/status for the merged status view.
//   - GET and PUT /v1/court-cases to read and upsert case records.
package api
