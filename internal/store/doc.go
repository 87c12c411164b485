// Package store persists collector output to Postgres and answers the
// trend queries built on top of it.
//
// The client is a thin generic layer over a pgx pool: Select, Insert
// and Upsert render SQL from column maps, and upserts merge duplicates
// on the table's natural key (the last row wins). A disabled client,
// created when no database is configured, accepts every call and does
// nothing, so callers never branch on whether persistence is on.
package store
