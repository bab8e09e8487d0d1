package store

import "errors"

var (
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrLocked is returned when another process holds the catalog lock.
	ErrLocked = errors.New("catalog database is locked by another process")
	// ErrReadOnlyQuery is returned when ReadOnlyQuery receives a statement that could write.
	ErrReadOnlyQuery = errors.New("only SELECT, WITH, and EXPLAIN statements are allowed")
)
