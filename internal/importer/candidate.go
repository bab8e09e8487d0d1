package importer

import (
	"context"
	"strings"
	"time"

	"discovery/internal/catalog"
)

// Candidate is one item as reported by one source, not yet persisted.
type Candidate struct {
	Title      string
	Creator    string
	Category   catalog.Category
	SourceID   string
	Loved      *bool
	Rating     *int
	RatedAt    time.Time
	Metadata   catalog.Metadata
	SourceData catalog.Metadata
}

// Parser reads one vendor export into candidates. A returned error fails the
// whole file.
type Parser interface {
	Parse(ctx context.Context, path string) ([]Candidate, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, path string) ([]Candidate, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, path string) ([]Candidate, error) {
	return f(ctx, path)
}

// SourceKey derives a source identifier for sources without one of their own.
func SourceKey(creator, title string) string {
	return strings.ToLower(strings.TrimSpace(creator)) + ":" + strings.ToLower(strings.TrimSpace(title))
}

// Result summarizes one import batch.
type Result struct {
	Source       catalog.Source
	ItemsAdded   int
	ItemsUpdated int
	Errors       []string
	// Categories lists the categories touched by the batch in first-seen order.
	Categories []catalog.Category
}

func (r *Result) touch(category catalog.Category) {
	for _, existing := range r.Categories {
		if existing == category {
			return
		}
	}
	r.Categories = append(r.Categories, category)
}
