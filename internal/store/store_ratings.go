package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discovery/internal/catalog"
)

// UpsertRating writes the user rating for an item. Nil Loved/Rating and empty
// Notes keep whatever the existing row holds.
func (s *Store) UpsertRating(ctx context.Context, rating *catalog.Rating) error {
	if rating == nil {
		return errors.New("rating is nil")
	}
	if rating.ItemID == "" {
		return errors.New("rating has no item id")
	}
	if rating.Rating != nil && !catalog.ValidRating(*rating.Rating) {
		return fmt.Errorf("rating %d out of range 1-5", *rating.Rating)
	}
	if rating.RatedAt.IsZero() {
		rating.RatedAt = time.Now().UTC()
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO ratings (item_id, loved, rating, notes, rated_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(item_id) DO UPDATE SET
             loved = COALESCE(excluded.loved, ratings.loved),
             rating = COALESCE(excluded.rating, ratings.rating),
             notes = COALESCE(excluded.notes, ratings.notes),
             rated_at = excluded.rated_at`,
		rating.ItemID,
		nullableBool(rating.Loved),
		nullableInt(rating.Rating),
		nullableString(rating.Notes),
		formatTime(rating.RatedAt),
	); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// ClearLoved removes the loved flag from an item's rating, leaving stars and notes.
func (s *Store) ClearLoved(ctx context.Context, itemID string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE ratings SET loved = NULL, rated_at = ? WHERE item_id = ?`,
		formatTime(time.Now()),
		itemID,
	); err != nil {
		return fmt.Errorf("clear loved: %w", err)
	}
	return nil
}

// Rating returns the rating for an item, or nil when the item is unrated.
func (s *Store) Rating(ctx context.Context, itemID string) (*catalog.Rating, error) {
	var (
		loved    sql.NullInt64
		stars    sql.NullInt64
		notes    sql.NullString
		ratedRaw sql.NullString
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT loved, rating, notes, rated_at FROM ratings WHERE item_id = ?`,
		itemID,
	).Scan(&loved, &stars, &notes, &ratedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	rating := &catalog.Rating{
		ItemID: itemID,
		Loved:  nullBool(loved),
		Rating: nullInt(stars),
		Notes:  notes.String,
	}
	if rated, err := parseTimeString(ratedRaw.String); err == nil {
		rating.RatedAt = rated
	}
	return rating, nil
}
