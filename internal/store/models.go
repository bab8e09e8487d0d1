package store

import "discovery/internal/catalog"

// CategoryStats summarizes one category.
type CategoryStats struct {
	Category catalog.Category
	Total    int
	Loved    int
	Disliked int
}

// QueryResult is the tabular output of ReadOnlyQuery.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// DatabaseHealth captures diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	MissingTables    []string
	TotalItems       int
	IntegrityCheck   bool
	Error            string
}
