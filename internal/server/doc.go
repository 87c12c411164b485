// Package server exposes the collector over HTTP: the live dashboard
// snapshot, persisted trend queries, day-high event study, manual
// source refresh, health, metrics, and a websocket feed that pushes
// the dashboard payload on a fixed interval.
//
// Read endpoints never block ingestion: the dashboard is assembled
// from the shared in-memory state, and the trend endpoints read only
// from the database (503 when persistence is not configured).
package server
