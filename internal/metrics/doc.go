// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Fetch cycle counts, latency and last-success age per source
//   - Persistence write counts per table
//   - Running day-high gauge per station and source
//   - Dashboard websocket client count
package metrics
