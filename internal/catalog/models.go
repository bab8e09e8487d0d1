package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of media kinds the catalog tracks.
type Category string

const (
	CategoryMusic   Category = "music"
	CategoryGame    Category = "game"
	CategoryBook    Category = "book"
	CategoryMovie   Category = "movie"
	CategoryTV      Category = "tv"
	CategoryPodcast Category = "podcast"
	CategoryPaper   Category = "paper"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMusic,
	CategoryGame,
	CategoryBook,
	CategoryMovie,
	CategoryTV,
	CategoryPodcast,
	CategoryPaper,
}

// Source identifies where a catalog entry was reported from.
type Source string

const (
	SourceAppleMusic    Source = "apple_music"
	SourceSpotify       Source = "spotify"
	SourceQobuz         Source = "qobuz"
	SourceSteam         Source = "steam"
	SourceGoodreads     Source = "goodreads"
	SourceKindle        Source = "kindle"
	SourceNetflix       Source = "netflix"
	SourceAppleTV       Source = "apple_tv"
	SourceAmazonPrime   Source = "amazon_prime"
	SourceDisneyPlus    Source = "disney_plus"
	SourceBBCIPlayer    Source = "bbc_iplayer"
	SourceApplePodcasts Source = "apple_podcasts"
	SourceArxiv         Source = "arxiv"
	SourceManual        Source = "manual"
)

// Sources lists every known source.
var Sources = []Source{
	SourceAppleMusic,
	SourceSpotify,
	SourceQobuz,
	SourceSteam,
	SourceGoodreads,
	SourceKindle,
	SourceNetflix,
	SourceAppleTV,
	SourceAmazonPrime,
	SourceDisneyPlus,
	SourceBBCIPlayer,
	SourceApplePodcasts,
	SourceArxiv,
	SourceManual,
}

var (
	// ErrUnknownCategory is returned when a category name is not recognized.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownSource is returned when a source name is not recognized.
	ErrUnknownSource = errors.New("unknown source")
)

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(value string) (Category, error) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range Categories {
		if c == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

// ParseSource resolves a source name. Dashes are accepted in place of underscores.
func ParseSource(value string) (Source, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, s := range Sources {
		if string(s) == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, value)
}

// Metadata is an open, source-agnostic attribute map (album, year, genre...).
type Metadata map[string]any

// String returns the metadata value for key rendered as text, or "".
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%g", typed)
	default:
		return fmt.Sprint(typed)
	}
}

// Item is one real-world entity in the catalog.
type Item struct {
	ID        string
	Category  Category
	Title     string
	Creator   string
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SourceLink records that a source reported an item. At most one per (item, source).
type SourceLink struct {
	ItemID     string
	Source     Source
	SourceID   string
	Loved      *bool
	Data       Metadata
	LastSynced time.Time
}

// Rating is the user-authored opinion about an item.
type Rating struct {
	ItemID  string
	Loved   *bool
	Rating  *int
	Notes   string
	RatedAt time.Time
}

// WishlistEntry is something the user wants but does not have yet.
type WishlistEntry struct {
	ID        string
	Category  Category
	Title     string
	Creator   string
	Notes     string
	CreatedAt time.Time
}

// SyncState records the last time a source was imported.
type SyncState struct {
	Source   Source
	LastSync time.Time
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// ValidRating reports whether r is a 1-5 star value.
func ValidRating(r int) bool { return r >= 1 && r <= 5 }

// LovedLabel renders a tri-state loved flag.
func LovedLabel(loved *bool) string {
	switch {
	case loved == nil:
		return ""
	case *loved:
		return "loved"
	default:
		return "disliked"
	}
}

// Stars renders a 1-5 rating as "[***..]".
func Stars(rating int) string {
	if !ValidRating(rating) {
		return ""
	}
	return "[" + strings.Repeat("*", rating) + strings.Repeat(".", 5-rating) + "]"
}

// ResolveLoved returns the effective loved flag for an item. An explicit user
// rating wins; otherwise any source reporting loved wins over any source
// reporting disliked.
func ResolveLoved(rating *Rating, links []SourceLink) *bool {
	if rating != nil && rating.Loved != nil {
		return Bool(*rating.Loved)
	}
	var disliked bool
	for _, link := range links {
		if link.Loved == nil {
			continue
		}
		if *link.Loved {
			return Bool(true)
		}
		disliked = true
	}
	if disliked {
		return Bool(false)
	}
	return nil
}
