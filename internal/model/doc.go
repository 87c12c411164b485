// Package model defines shared data types used across the collector.
//
// Conventions:
//   - Temperatures: float64 degrees Celsius; whole-degree buckets as int
//   - Timestamps: time.Time in UTC; civil dates as "YYYY-MM-DD" strings
//     in the market timezone
//   - Optional fields: pointers, nil meaning "not reported upstream"
package model
