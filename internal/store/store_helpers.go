package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"discovery/internal/catalog"
)

const itemColumns = "id, category, title, creator, metadata_json, created_at, updated_at"

const sourceColumns = "item_id, source, source_id, source_loved, source_data_json, last_synced"

const wishlistColumns = "id, category, title, creator, notes, created_at"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type rowScanner interface {
	Scan(dest ...any) error
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func scanItem(scanner rowScanner) (*catalog.Item, error) {
	var (
		id         string
		category   string
		title      string
		creator    sql.NullString
		metadata   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &category, &title, &creator, &metadata, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	item := &catalog.Item{
		ID:       id,
		Category: catalog.Category(category),
		Title:    title,
		Creator:  creator.String,
		Metadata: decodeMetadata(metadata),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]catalog.Item, error) {
	defer rows.Close()
	var items []catalog.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanSourceLink(scanner rowScanner) (*catalog.SourceLink, error) {
	var (
		itemID    string
		source    string
		sourceID  string
		loved     sql.NullInt64
		data      sql.NullString
		syncedRaw sql.NullString
	)
	if err := scanner.Scan(&itemID, &source, &sourceID, &loved, &data, &syncedRaw); err != nil {
		return nil, err
	}
	link := &catalog.SourceLink{
		ItemID:   itemID,
		Source:   catalog.Source(source),
		SourceID: sourceID,
		Loved:    nullBool(loved),
		Data:     decodeMetadata(data),
	}
	if synced, err := parseTimeString(syncedRaw.String); err == nil {
		link.LastSynced = synced
	}
	return link, nil
}

func scanWishlistEntry(scanner rowScanner) (*catalog.WishlistEntry, error) {
	var (
		id         string
		category   string
		title      string
		creator    sql.NullString
		notes      sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &category, &title, &creator, &notes, &createdRaw); err != nil {
		return nil, err
	}
	entry := &catalog.WishlistEntry{
		ID:       id,
		Category: catalog.Category(category),
		Title:    title,
		Creator:  creator.String,
		Notes:    notes.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func encodeMetadata(m catalog.Metadata) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeMetadata(raw sql.NullString) catalog.Metadata {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return catalog.Metadata{}
	}
	var m catalog.Metadata
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil || m == nil {
		return catalog.Metadata{}
	}
	return m
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableBool(value *bool) any {
	if value == nil {
		return nil
	}
	return boolToInt(*value)
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullBool(value sql.NullInt64) *bool {
	if !value.Valid {
		return nil
	}
	return catalog.Bool(value.Int64 != 0)
}

func nullInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	return catalog.Int(int(value.Int64))
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// likePattern wraps value for a substring LIKE match with '\' as the escape character.
func likePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(value) + "%"
}
