// Package store persists the catalog in a single SQLite file and exposes the
// query surface the importer, library, and reporting code consume.
//
// The Store owns identity assignment for items and wishlist entries, keeps one
// source link per (item, source), and merges partial rating updates. Items are
// always returned in store order (created_at, then insertion order) so callers
// that pick "the first match" are deterministic across runs.
//
// A process holds an exclusive advisory lock next to the database file for as
// long as the Store is open; a second opener receives ErrLocked. Schema changes
// bump schemaVersion in schema.go.
package store
