package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

const (
	spotifyLovedPlays   = 5
	spotifyLovedMinutes = 10.0
)

type spotifyLibrary struct {
	Tracks []struct {
		Artist string `json:"artist"`
		Album  string `json:"album"`
		Track  string `json:"track"`
		URI    string `json:"uri"`
	} `json:"tracks"`
	Albums []struct {
		Artist string `json:"artist"`
		Album  string `json:"album"`
		URI    string `json:"uri"`
	} `json:"albums"`
}

type spotifyPlay struct {
	Timestamp string `json:"ts"`
	Artist    string `json:"master_metadata_album_artist_name"`
	Track     string `json:"master_metadata_track_name"`
	Album     string `json:"master_metadata_album_album_name"`
	MsPlayed  int64  `json:"ms_played"`
}

// parseSpotify reads either YourLibrary.json (saved items, all loved) or a
// streaming history file, which is aggregated per artist and track.
func parseSpotify(_ context.Context, path string) ([]importer.Candidate, error) {
	var raw json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	var library spotifyLibrary
	if err := json.Unmarshal(raw, &library); err == nil && (library.Tracks != nil || library.Albums != nil) {
		return spotifyLibraryCandidates(library), nil
	}

	var history []spotifyPlay
	if err := json.Unmarshal(raw, &history); err == nil && len(history) > 0 && history[0].Timestamp != "" {
		return spotifyHistoryCandidates(history), nil
	}
	return nil, fmt.Errorf("%w: expected YourLibrary.json or streaming history", ErrUnsupportedFormat)
}

func spotifyLibraryCandidates(library spotifyLibrary) []importer.Candidate {
	var out []importer.Candidate
	for _, track := range library.Tracks {
		if track.Track == "" {
			continue
		}
		metadata := catalog.Metadata{}
		if track.Album != "" {
			metadata["album"] = track.Album
		}
		out = append(out, importer.Candidate{
			Title:      track.Track,
			Creator:    track.Artist,
			Category:   catalog.CategoryMusic,
			SourceID:   track.Artist + ":" + track.Track,
			Loved:      catalog.Bool(true),
			Metadata:   metadata,
			SourceData: catalog.Metadata{"album": track.Album, "uri": track.URI},
		})
	}
	for _, album := range library.Albums {
		if album.Album == "" {
			continue
		}
		out = append(out, importer.Candidate{
			Title:      album.Album,
			Creator:    album.Artist,
			Category:   catalog.CategoryMusic,
			SourceID:   album.Artist + ":" + album.Album,
			Loved:      catalog.Bool(true),
			Metadata:   catalog.Metadata{"type": "album"},
			SourceData: catalog.Metadata{"uri": album.URI},
		})
	}
	return out
}

func spotifyHistoryCandidates(history []spotifyPlay) []importer.Candidate {
	type tally struct {
		artist, track, album string
		plays                int
		ms                   int64
	}
	var order []string
	tallies := make(map[string]*tally)
	for _, play := range history {
		if play.Artist == "" || play.Track == "" {
			continue
		}
		key := play.Artist + ":" + play.Track
		entry, ok := tallies[key]
		if !ok {
			entry = &tally{artist: play.Artist, track: play.Track, album: play.Album}
			tallies[key] = entry
			order = append(order, key)
		}
		entry.plays++
		entry.ms += play.MsPlayed
	}

	out := make([]importer.Candidate, 0, len(order))
	for _, key := range order {
		entry := tallies[key]
		minutes := float64(entry.ms) / 60000
		loved := entry.plays >= spotifyLovedPlays || minutes >= spotifyLovedMinutes
		metadata := catalog.Metadata{
			"play_count":     entry.plays,
			"minutes_played": math.Round(minutes*10) / 10,
		}
		if entry.album != "" {
			metadata["album"] = entry.album
		}
		out = append(out, importer.Candidate{
			Title:      entry.track,
			Creator:    entry.artist,
			Category:   catalog.CategoryMusic,
			SourceID:   key,
			Loved:      catalog.Bool(loved),
			Metadata:   metadata,
			SourceData: catalog.Metadata{"play_count": entry.plays, "ms_played": entry.ms},
		})
	}
	return out
}
