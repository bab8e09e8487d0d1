package sources

import (
	"errors"
	"fmt"
	"sort"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// ErrUnsupportedFormat is returned when an export file is not in a format the
// source's parser understands.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Spec describes one importable source.
type Spec struct {
	Source   catalog.Source
	Category catalog.Category
	// Formats lists the accepted file types for display.
	Formats      string
	Instructions string
	Parser       importer.Parser
}

var registry = map[catalog.Source]Spec{
	catalog.SourceSpotify: {
		Source: catalog.SourceSpotify, Category: catalog.CategoryMusic,
		Formats: "YourLibrary.json, Streaming_History_Audio_*.json", Instructions: spotifyInstructions,
		Parser: importer.ParserFunc(parseSpotify),
	},
	catalog.SourceAppleMusic: {
		Source: catalog.SourceAppleMusic, Category: catalog.CategoryMusic,
		Formats: "Library.xml", Instructions: appleMusicInstructions,
		Parser: importer.ParserFunc(parseAppleMusic),
	},
	catalog.SourceQobuz: {
		Source: catalog.SourceQobuz, Category: catalog.CategoryMusic,
		Formats: "CSV, JSON", Instructions: qobuzInstructions,
		Parser: importer.ParserFunc(parseQobuz),
	},
	catalog.SourceSteam: {
		Source: catalog.SourceSteam, Category: catalog.CategoryGame,
		Formats: "GetOwnedGames JSON, or --api", Instructions: steamInstructions,
		Parser: importer.ParserFunc(parseSteamFile),
	},
	catalog.SourceGoodreads: {
		Source: catalog.SourceGoodreads, Category: catalog.CategoryBook,
		Formats: "goodreads_library_export.csv", Instructions: goodreadsInstructions,
		Parser: importer.ParserFunc(parseGoodreads),
	},
	catalog.SourceKindle: {
		Source: catalog.SourceKindle, Category: catalog.CategoryBook,
		Formats: "CSV", Instructions: kindleInstructions,
		Parser: importer.ParserFunc(parseKindle),
	},
	catalog.SourceNetflix: {
		Source: catalog.SourceNetflix, Category: catalog.CategoryMovie,
		Formats: "ViewingActivity.csv, ratings HTML", Instructions: netflixInstructions,
		Parser: importer.ParserFunc(parseNetflix),
	},
	catalog.SourceAmazonPrime: {
		Source: catalog.SourceAmazonPrime, Category: catalog.CategoryMovie,
		Formats: "CSV, TSV", Instructions: amazonPrimeInstructions,
		Parser: streamingParser(streamingAmazonPrime),
	},
	catalog.SourceDisneyPlus: {
		Source: catalog.SourceDisneyPlus, Category: catalog.CategoryMovie,
		Formats: "CSV", Instructions: disneyPlusInstructions,
		Parser: streamingParser(streamingDisneyPlus),
	},
	catalog.SourceAppleTV: {
		Source: catalog.SourceAppleTV, Category: catalog.CategoryMovie,
		Formats: "CSV, JSON", Instructions: appleTVInstructions,
		Parser: streamingParser(streamingAppleTV),
	},
	catalog.SourceBBCIPlayer: {
		Source: catalog.SourceBBCIPlayer, Category: catalog.CategoryTV,
		Formats: "CSV, JSON", Instructions: bbcIPlayerInstructions,
		Parser: streamingParser(streamingBBCIPlayer),
	},
	catalog.SourceApplePodcasts: {
		Source: catalog.SourceApplePodcasts, Category: catalog.CategoryPodcast,
		Formats: "OPML, JSON, MTLibrary.sqlite", Instructions: applePodcastsInstructions,
		Parser: importer.ParserFunc(parseApplePodcasts),
	},
	catalog.SourceArxiv: {
		Source: catalog.SourceArxiv, Category: catalog.CategoryPaper,
		Formats: "JSON, CSV", Instructions: arxivInstructions,
		Parser: importer.ParserFunc(parseArxiv),
	},
}

// Lookup returns the spec for source. Manual entries have no importer.
func Lookup(source catalog.Source) (Spec, error) {
	spec, ok := registry[source]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s has no importer", catalog.ErrUnknownSource, source)
	}
	return spec, nil
}

// All returns every importable source ordered by name.
func All() []Spec {
	specs := make([]Spec, 0, len(registry))
	for _, spec := range registry {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Source < specs[j].Source })
	return specs
}
