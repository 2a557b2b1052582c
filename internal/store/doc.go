// Package store provides a SQLite-backed ledger of publications.
//
// Each publish appends one row: the file, the composition id it was given,
// the hash of the text written and the hash and canonical JSON of its slot
// list. Rows are never updated or deleted.
//
// # Ordering
//
// All ordering uses the seq column (a logical sequence), never timestamps.
// Queries order by seq ASC so listings are stable across runs.
//
// # Schema changes
//
// The base schema lives in schema.sql. Later changes are appended to
// migrations and tracked with PRAGMA user_version; never edit a released
// migration.
package store
