// Package polymarket provides clients for the three Polymarket REST surfaces
// used by the collector.
//
// Endpoints:
//   - Gamma (market metadata): https://gamma-api.polymarket.com
//   - CLOB (order books, balances): https://clob.polymarket.com
//   - Data API (positions): https://data-api.polymarket.com
//
// Gamma responses carry several list-valued fields JSON-encoded as strings
// (outcomes, clobTokenIds, outcomePrices); the types in this package decode
// both encodings. Authenticated CLOB endpoints use L2 HMAC headers from the
// auth package.
package polymarket
