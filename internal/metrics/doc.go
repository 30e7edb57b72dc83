// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Files processed by outcome (loaded, skipped, failed)
//   - Sections and rows decoded, parse latency
//   - Rows written to PostgreSQL and exports produced per format
//
// A nil *Metrics is valid and records nothing.
package metrics
