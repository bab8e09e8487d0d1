package store

import (
	"context"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"

	"discovery/internal/catalog"
)

// Filter narrows QueryItems and CountItems. Zero values disable a clause.
type Filter struct {
	Category  catalog.Category
	Source    catalog.Source
	Loved     bool
	Disliked  bool
	Creator   string
	Search    string
	MinRating int
	MaxRating int
	Limit     int
	Offset    int
	Random    bool
}

const (
	lovedClause = `(EXISTS (SELECT 1 FROM ratings r WHERE r.item_id = i.id AND r.loved = 1)
        OR EXISTS (SELECT 1 FROM item_sources s WHERE s.item_id = i.id AND s.source_loved = 1))`
	dislikedClause = `EXISTS (SELECT 1 FROM ratings r WHERE r.item_id = i.id AND r.loved = 0)`
	minRatingClause = `EXISTS (SELECT 1 FROM ratings r WHERE r.item_id = i.id AND r.rating >= ?)`
	maxRatingClause = `EXISTS (SELECT 1 FROM ratings r WHERE r.item_id = i.id AND r.rating <= ?)`
	sourceClause    = `EXISTS (SELECT 1 FROM item_sources s WHERE s.item_id = i.id AND s.source = ?)`
)

func applyFilter(builder sq.SelectBuilder, f Filter) sq.SelectBuilder {
	if f.Category != "" {
		builder = builder.Where(sq.Eq{"i.category": string(f.Category)})
	}
	if f.Source != "" {
		builder = builder.Where(sq.Expr(sourceClause, string(f.Source)))
	}
	if f.Loved {
		builder = builder.Where(sq.Expr(lovedClause))
	}
	if f.Disliked {
		builder = builder.Where(sq.Expr(dislikedClause))
	}
	if f.Creator != "" {
		builder = builder.Where(sq.Expr(`i.creator LIKE ? ESCAPE '\'`, likePattern(f.Creator)))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		builder = builder.Where(sq.Or{
			sq.Expr(`i.title LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`i.creator LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if f.MinRating > 0 {
		builder = builder.Where(sq.Expr(minRatingClause, f.MinRating))
	}
	if f.MaxRating > 0 {
		builder = builder.Where(sq.Expr(maxRatingClause, f.MaxRating))
	}
	return builder
}

// QueryItems returns items matching f in store order, or shuffled when f.Random.
func (s *Store) QueryItems(ctx context.Context, f Filter) ([]catalog.Item, error) {
	builder := applyFilter(sq.Select(prefixColumns("i", itemColumns)).From("items i"), f)
	if f.Random {
		builder = builder.OrderBy("RANDOM()")
	} else {
		builder = builder.OrderBy("i.created_at", "i.rowid")
	}
	switch {
	case f.Limit > 0:
		builder = builder.Limit(uint64(f.Limit))
	case f.Offset > 0:
		builder = builder.Limit(math.MaxInt64)
	}
	if f.Offset > 0 {
		builder = builder.Offset(uint64(f.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

// CountItems returns the number of items matching f, ignoring paging.
func (s *Store) CountItems(ctx context.Context, f Filter) (int, error) {
	query, args, err := applyFilter(sq.Select("COUNT(1)").From("items i"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
