package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"discovery/internal/catalog"
)

// UpsertItem inserts item or updates its title, creator, and metadata. An empty
// ID is assigned a fresh identifier; created_at is never changed on update.
func (s *Store) UpsertItem(ctx context.Context, item *catalog.Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	if strings.TrimSpace(item.Title) == "" {
		return errors.New("item title is empty")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	metadata, err := encodeMetadata(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             title = excluded.title,
             creator = excluded.creator,
             metadata_json = excluded.metadata_json,
             updated_at = excluded.updated_at`,
		item.ID,
		string(item.Category),
		item.Title,
		nullableString(item.Creator),
		metadata,
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	); err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// GetItem fetches an item by identifier. A missing item yields nil, nil.
func (s *Store) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindBySourceLink returns the item linked to (source, sourceID), or nil.
func (s *Store) FindBySourceLink(ctx context.Context, source catalog.Source, sourceID string) (*catalog.Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+prefixColumns("i", itemColumns)+`
         FROM items i
         JOIN item_sources s ON s.item_id = i.id
         WHERE s.source = ? AND s.source_id = ?
         ORDER BY i.created_at, i.rowid
         LIMIT 1`,
		string(source),
		sourceID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source link: %w", err)
	}
	return item, nil
}

// FindExact returns the first item in category whose title equals the given
// title case-insensitively. A non-empty creator must also be equal; an empty
// creator matches on title alone.
func (s *Store) FindExact(ctx context.Context, title, creator string, category catalog.Category) (*catalog.Item, error) {
	creator = strings.TrimSpace(creator)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE category = ? AND lower(title) = lower(?)
           AND (? = '' OR lower(COALESCE(creator, '')) = lower(?))
         ORDER BY created_at, rowid
         LIMIT 1`,
		string(category),
		strings.TrimSpace(title),
		creator,
		creator,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find exact: %w", err)
	}
	return item, nil
}

// Search returns items whose title or creator contains text, case-insensitively,
// in store order. An empty category searches every category.
func (s *Store) Search(ctx context.Context, text string, category catalog.Category) ([]catalog.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
         WHERE (title LIKE ? ESCAPE '\' OR creator LIKE ? ESCAPE '\')`
	pattern := likePattern(text)
	args := []any{pattern, pattern}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

// ItemsByCategory returns every item in category in store order.
func (s *Store) ItemsByCategory(ctx context.Context, category catalog.Category) ([]catalog.Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY created_at, rowid`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("items by category: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("items by category: %w", err)
	}
	return items, nil
}

// CountByCategory returns the number of items in category.
func (s *Store) CountByCategory(ctx context.Context, category catalog.Category) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE category = ?`, string(category)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
