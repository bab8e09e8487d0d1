package sources

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"howett.net/plist"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// nonMusicKinds are substrings of a track's Kind that mark it as something
// other than music.
var nonMusicKinds = []string{"podcast", "audiobook", "video", "movie"}

type appleLibrary struct {
	Tracks map[string]appleTrack `plist:"Tracks"`
}

type appleTrack struct {
	TrackID      int64  `plist:"Track ID"`
	PersistentID string `plist:"Persistent ID"`
	Name         string `plist:"Name"`
	Artist       string `plist:"Artist"`
	AlbumArtist  string `plist:"Album Artist"`
	Album        string `plist:"Album"`
	Genre        string `plist:"Genre"`
	Kind         string `plist:"Kind"`
	Year         int    `plist:"Year"`
	PlayCount    int64  `plist:"Play Count"`
	Loved        bool   `plist:"Loved"`
	Favorited    bool   `plist:"Favorited"`
	Disliked     bool   `plist:"Disliked"`
	Podcast      bool   `plist:"Podcast"`
	Movie        bool   `plist:"Movie"`
	TVShow       bool   `plist:"TV Show"`
	MusicVideo   bool   `plist:"Music Video"`
	HasVideo     bool   `plist:"Has Video"`
}

// parseAppleMusic reads a Music/iTunes Library.xml export. Tracks are emitted
// in Track ID order.
func parseAppleMusic(_ context.Context, path string) ([]importer.Candidate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var library appleLibrary
	if err := plist.NewDecoder(file).Decode(&library); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if library.Tracks == nil {
		return nil, fmt.Errorf("%w: no Tracks dict", ErrUnsupportedFormat)
	}

	keys := make([]string, 0, len(library.Tracks))
	for key := range library.Tracks {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(library.Tracks[a].TrackID, library.Tracks[b].TrackID); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var out []importer.Candidate
	for _, key := range keys {
		track := library.Tracks[key]
		name := strings.TrimSpace(track.Name)
		if name == "" || !track.isMusic() {
			continue
		}

		artist := strings.TrimSpace(track.Artist)
		if artist == "" {
			artist = strings.TrimSpace(track.AlbumArtist)
		}
		album := strings.TrimSpace(track.Album)
		genre := strings.TrimSpace(track.Genre)
		metadata := catalog.Metadata{}
		if album != "" {
			metadata["album"] = album
		}
		if genre != "" {
			metadata["genre"] = genre
		}
		if track.Year > 0 {
			metadata["year"] = strconv.Itoa(track.Year)
		}

		sourceID := strings.TrimSpace(track.PersistentID)
		if track.TrackID != 0 {
			sourceID = strconv.FormatInt(track.TrackID, 10)
		}

		var loved *bool
		switch {
		case track.Loved || track.Favorited:
			loved = catalog.Bool(true)
		case track.Disliked:
			loved = catalog.Bool(false)
		}

		out = append(out, importer.Candidate{
			Title:    name,
			Creator:  artist,
			Category: catalog.CategoryMusic,
			SourceID: sourceID,
			Loved:    loved,
			Metadata: metadata,
			SourceData: catalog.Metadata{
				"play_count": track.PlayCount,
				"album":      album,
				"genre":      genre,
			},
		})
	}
	return out, nil
}

func (t appleTrack) isMusic() bool {
	if t.Podcast || t.Movie || t.TVShow || t.MusicVideo || t.HasVideo {
		return false
	}
	kind := strings.ToLower(t.Kind)
	for _, marker := range nonMusicKinds {
		if strings.Contains(kind, marker) {
			return false
		}
	}
	return true
}
