package sources

import (
	"context"
	"fmt"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// parseQobuz reads favorites exported as CSV or JSON. Every entry is loved.
func parseQobuz(_ context.Context, path string) ([]importer.Candidate, error) {
	type favorite struct{ title, artist, album string }
	var favorites []favorite

	switch extension(path) {
	case ".csv", ".tsv", ".txt":
		t, err := readTable(path)
		if err != nil {
			return nil, err
		}
		for _, row := range t.rows {
			favorites = append(favorites, favorite{
				title:  t.get(row, "title", "track", "track name", "name"),
				artist: t.get(row, "artist", "artist name", "performer"),
				album:  t.get(row, "album", "album name"),
			})
		}
	case ".json":
		var data any
		if err := readJSON(path, &data); err != nil {
			return nil, err
		}
		for _, track := range records(data, "tracks", "items", "favorites") {
			favorites = append(favorites, favorite{
				title:  track.str("title", "name"),
				artist: track.str("artist", "performer"),
				album:  track.str("album"),
			})
		}
	default:
		return nil, fmt.Errorf("%w: expected .csv or .json", ErrUnsupportedFormat)
	}

	var out []importer.Candidate
	for _, f := range favorites {
		if f.title == "" {
			continue
		}
		metadata := catalog.Metadata{}
		if f.album != "" {
			metadata["album"] = f.album
		}
		out = append(out, importer.Candidate{
			Title:      f.title,
			Creator:    f.artist,
			Category:   catalog.CategoryMusic,
			SourceID:   f.artist + ":" + f.title,
			Loved:      catalog.Bool(true),
			Metadata:   metadata,
			SourceData: catalog.Metadata{"album": f.album},
		})
	}
	return out, nil
}
