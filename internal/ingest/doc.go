// Package ingest runs the collector's source loops.
//
// Each source is an independent self-pacing loop: fetch, update shared
// state, record health, then sleep for whatever remains of the TTL. A
// slow upstream lowers the effective frequency instead of stacking
// requests; at most one fetch per source is in flight at any time,
// including manual refreshes.
//
// Five loops feed the store: the market loop (event metadata on its
// own coarser TTL plus the per-token order-book fan-out), two weather
// feeds (METAR and the daily-history scrape), the hourly forecast and
// the account portfolio. Persistence hangs off the loops best-effort:
// write failures are logged at debug level and never affect source
// health.
package ingest
