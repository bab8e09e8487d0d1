package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discovery/internal/catalog"
)

// UpsertSourceLink records that link.Source reported link.ItemID. An existing
// link keeps its source_id; loved, data, and sync time are refreshed.
func (s *Store) UpsertSourceLink(ctx context.Context, link *catalog.SourceLink) error {
	if link == nil {
		return errors.New("source link is nil")
	}
	if link.ItemID == "" {
		return errors.New("source link has no item id")
	}
	if link.LastSynced.IsZero() {
		link.LastSynced = time.Now().UTC()
	}
	data, err := encodeMetadata(link.Data)
	if err != nil {
		return fmt.Errorf("marshal source data: %w", err)
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO item_sources (`+sourceColumns+`) VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(item_id, source) DO UPDATE SET
             source_loved = excluded.source_loved,
             source_data_json = excluded.source_data_json,
             last_synced = excluded.last_synced`,
		link.ItemID,
		string(link.Source),
		link.SourceID,
		nullableBool(link.Loved),
		data,
		formatTime(link.LastSynced),
	); err != nil {
		return fmt.Errorf("upsert source link: %w", err)
	}
	return nil
}

// SourceLinks returns every source link for an item ordered by source name.
func (s *Store) SourceLinks(ctx context.Context, itemID string) ([]catalog.SourceLink, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+sourceColumns+` FROM item_sources WHERE item_id = ? ORDER BY source`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("source links: %w", err)
	}
	defer rows.Close()

	var links []catalog.SourceLink
	for rows.Next() {
		link, err := scanSourceLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source link: %w", err)
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}
