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

// AddWishlistEntry stores a new wishlist entry, assigning an ID when empty.
func (s *Store) AddWishlistEntry(ctx context.Context, entry *catalog.WishlistEntry) error {
	if entry == nil {
		return errors.New("wishlist entry is nil")
	}
	if strings.TrimSpace(entry.Title) == "" {
		return errors.New("wishlist title is empty")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO wishlist_items (`+wishlistColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Category),
		entry.Title,
		nullableString(entry.Creator),
		nullableString(entry.Notes),
		formatTime(entry.CreatedAt),
	); err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	return nil
}

// WishlistEntry fetches one entry by ID, or nil.
func (s *Store) WishlistEntry(ctx context.Context, id string) (*catalog.WishlistEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+wishlistColumns+` FROM wishlist_items WHERE id = ?`, id)
	entry, err := scanWishlistEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wishlist entry: %w", err)
	}
	return entry, nil
}

// Wishlist returns entries sorted by title. An empty category returns all.
func (s *Store) Wishlist(ctx context.Context, category catalog.Category) ([]catalog.WishlistEntry, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_items`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY title COLLATE NOCASE, created_at`
	return s.queryWishlist(ctx, query, args...)
}

// SearchWishlist returns entries whose title or creator contains text.
func (s *Store) SearchWishlist(ctx context.Context, text string, category catalog.Category) ([]catalog.WishlistEntry, error) {
	pattern := likePattern(text)
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_items
         WHERE (title LIKE ? ESCAPE '\' OR creator LIKE ? ESCAPE '\')`
	args := []any{pattern, pattern}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY title COLLATE NOCASE, created_at`
	return s.queryWishlist(ctx, query, args...)
}

// DeleteWishlistEntry removes an entry, reporting whether it existed.
func (s *Store) DeleteWishlistEntry(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM wishlist_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete wishlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryWishlist(ctx context.Context, query string, args ...any) ([]catalog.WishlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	var entries []catalog.WishlistEntry
	for rows.Next() {
		entry, err := scanWishlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}
