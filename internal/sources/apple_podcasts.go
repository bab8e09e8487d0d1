package sources

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// appleEpoch is the Core Data reference date used by MTLibrary timestamps.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

var sqliteMagic = []byte("SQLite format 3\x00")

// parseApplePodcasts dispatches on the export shape: OPML subscriptions, a
// JSON list, or the MTLibrary.sqlite app database.
func parseApplePodcasts(ctx context.Context, path string) ([]importer.Candidate, error) {
	switch extension(path) {
	case ".opml", ".xml":
		return parsePodcastOPML(path)
	case ".json":
		return parsePodcastJSON(path)
	case ".sqlite", ".db":
		return parsePodcastLibrary(ctx, path)
	}
	if isSQLiteFile(path) {
		return parsePodcastLibrary(ctx, path)
	}
	return nil, fmt.Errorf("%w: expected .opml, .json, or MTLibrary.sqlite", ErrUnsupportedFormat)
}

func isSQLiteFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()
	head := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return false
	}
	return bytes.Equal(head, sqliteMagic)
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	Children []opmlOutline `xml:"outline"`
}

type opmlDocument struct {
	Body struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

func parsePodcastOPML(path string) ([]importer.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc opmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}

	var out []importer.Candidate
	var walk func([]opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, outline := range outlines {
			if len(outline.Children) > 0 {
				walk(outline.Children)
				continue
			}
			title := strings.TrimSpace(outline.Text)
			if title == "" {
				title = strings.TrimSpace(outline.Title)
			}
			if title == "" {
				continue
			}
			feed := strings.TrimSpace(outline.XMLURL)
			candidate := importer.Candidate{
				Title:      title,
				Category:   catalog.CategoryPodcast,
				SourceID:   firstNonEmpty(feed, title),
				SourceData: catalog.Metadata{"feed_url": feed},
			}
			if feed != "" {
				candidate.Metadata = catalog.Metadata{"feed_url": feed}
			}
			out = append(out, candidate)
		}
	}
	walk(doc.Body.Outlines)
	return out, nil
}

func parsePodcastJSON(path string) ([]importer.Candidate, error) {
	var data any
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	var out []importer.Candidate
	for _, podcast := range records(data, "podcasts", "items") {
		title := podcast.str("title", "name")
		if title == "" {
			continue
		}
		feed := podcast.str("feed_url", "feedUrl", "xmlUrl")
		candidate := importer.Candidate{
			Title:    title,
			Creator:  podcast.str("author", "creator"),
			Category: catalog.CategoryPodcast,
			SourceID: firstNonEmpty(feed, title),
			Loved:    podcast.boolPtr("favorite"),
		}
		if feed != "" {
			candidate.Metadata = catalog.Metadata{"feed_url": feed}
		}
		out = append(out, candidate)
	}
	return out, nil
}

type podcastStats struct {
	episodes   int64
	played     int64
	bookmarked int64
	saved      int64
	lastPlayed sql.NullFloat64
}

// parsePodcastLibrary reads shows from the Podcasts app database, opened read
// only. Shows with bookmarked or saved episodes are inferred loved.
func parsePodcastLibrary(ctx context.Context, path string) ([]importer.Candidate, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?"+url.Values{"mode": {"ro"}}.Encode())
	if err != nil {
		return nil, fmt.Errorf("open podcast library: %w", err)
	}
	defer db.Close()

	stats, err := loadPodcastStats(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT Z_PK, ZTITLE, ZAUTHOR, ZFEEDURL, ZWEBPAGEURL, ZUUID, ZSUBSCRIBED, ZCATEGORY, ZADDEDDATE
        FROM ZMTPODCAST ORDER BY Z_PK`)
	if err != nil {
		return nil, fmt.Errorf("%w: read ZMTPODCAST: %v", ErrUnsupportedFormat, err)
	}
	defer rows.Close()

	var out []importer.Candidate
	for rows.Next() {
		var (
			pk         int64
			title      sql.NullString
			author     sql.NullString
			feed       sql.NullString
			webpage    sql.NullString
			id         sql.NullString
			subscribed sql.NullInt64
			category   sql.NullString
			added      sql.NullFloat64
		)
		if err := rows.Scan(&pk, &title, &author, &feed, &webpage, &id, &subscribed, &category, &added); err != nil {
			return nil, fmt.Errorf("scan podcast: %w", err)
		}
		name := strings.TrimSpace(title.String)
		if name == "" {
			continue
		}

		metadata := catalog.Metadata{}
		setIfPresent(metadata, "feed_url", feed.String)
		setIfPresent(metadata, "webpage_url", webpage.String)
		setIfPresent(metadata, "uuid", id.String)
		setIfPresent(metadata, "category", category.String)
		setIfPresent(metadata, "added_at", appleTime(added))

		stat := stats[pk]
		var loved *bool
		reason := ""
		switch {
		case stat.bookmarked > 0:
			loved, reason = catalog.Bool(true), "episode_bookmarked"
		case stat.saved > 0:
			loved, reason = catalog.Bool(true), "episode_saved"
		}
		if stat.episodes > 0 {
			metadata["episode_count"] = stat.episodes
			metadata["played_count"] = stat.played
		}

		out = append(out, importer.Candidate{
			Title:    name,
			Creator:  strings.TrimSpace(author.String),
			Category: catalog.CategoryPodcast,
			SourceID: firstNonEmpty(strings.TrimSpace(feed.String), strings.TrimSpace(id.String), name),
			Loved:    loved,
			Metadata: metadata,
			SourceData: catalog.Metadata{
				"uuid":           id.String,
				"subscribed":     subscribed.Valid && subscribed.Int64 != 0,
				"last_played_at": appleTime(stat.lastPlayed),
				"loved_reason":   reason,
				"bookmarked":     stat.bookmarked,
				"saved":          stat.saved,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read podcasts: %w", err)
	}
	return out, nil
}

func loadPodcastStats(ctx context.Context, db *sql.DB) (map[int64]podcastStats, error) {
	stats := make(map[int64]podcastStats)
	var present int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'ZMTEPISODE'`).Scan(&present); err != nil {
		return nil, fmt.Errorf("%w: not a SQLite database: %v", ErrUnsupportedFormat, err)
	}
	if present == 0 {
		return stats, nil
	}
	rows, err := db.QueryContext(ctx, `SELECT ZPODCAST,
            COUNT(*),
            SUM(CASE WHEN ZHASBEENPLAYED = 1 THEN 1 ELSE 0 END),
            SUM(CASE WHEN ZISBOOKMARKED = 1 THEN 1 ELSE 0 END),
            SUM(CASE WHEN ZSAVED = 1 THEN 1 ELSE 0 END),
            MAX(ZLASTDATEPLAYED)
        FROM ZMTEPISODE GROUP BY ZPODCAST`)
	if err != nil {
		return nil, fmt.Errorf("read episode stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pk  sql.NullInt64
			s   podcastStats
			agg [3]sql.NullInt64
		)
		if err := rows.Scan(&pk, &s.episodes, &agg[0], &agg[1], &agg[2], &s.lastPlayed); err != nil {
			return nil, fmt.Errorf("scan episode stats: %w", err)
		}
		s.played, s.bookmarked, s.saved = agg[0].Int64, agg[1].Int64, agg[2].Int64
		stats[pk.Int64] = s
	}
	return stats, rows.Err()
}

func appleTime(value sql.NullFloat64) string {
	if !value.Valid {
		return ""
	}
	return appleEpoch.Add(time.Duration(value.Float64 * float64(time.Second))).Format(time.RFC3339)
}

func setIfPresent(m catalog.Metadata, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		m[key] = value
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
