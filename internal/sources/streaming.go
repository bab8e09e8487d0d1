package sources

import (
	"context"
	"regexp"
	"strings"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// streamingService captures how one video service's export differs from the
// others: which category unlabeled titles default to.
type streamingService struct {
	source          catalog.Source
	defaultCategory catalog.Category
}

var (
	streamingAmazonPrime = streamingService{source: catalog.SourceAmazonPrime, defaultCategory: catalog.CategoryMovie}
	streamingDisneyPlus  = streamingService{source: catalog.SourceDisneyPlus, defaultCategory: catalog.CategoryMovie}
	streamingAppleTV     = streamingService{source: catalog.SourceAppleTV, defaultCategory: catalog.CategoryMovie}
	streamingBBCIPlayer  = streamingService{source: catalog.SourceBBCIPlayer, defaultCategory: catalog.CategoryTV}
)

var (
	titleColumns = []string{"title", "video title", "content_title", "programme", "program", "name"}
	typeColumns  = []string{"type", "content type", "content_type", "contenttype"}

	// episodeMarker finds where an episode suffix starts in a viewing history title.
	episodeMarker = regexp.MustCompile(`(?i)(:\s*(season|series|episode|chapter)\b|\s-\s(s\d|season\b|series\b)|\s+s\d{1,2}\s?e\d{1,3}\b|\s+series\s+\d+)`)
)

var (
	tvTypes    = map[string]bool{"tv": true, "tv show": true, "tv series": true, "series": true, "show": true, "episode": true}
	movieTypes = map[string]bool{"movie": true, "film": true, "feature": true}
)

func streamingParser(service streamingService) importer.Parser {
	return importer.ParserFunc(func(_ context.Context, path string) ([]importer.Candidate, error) {
		return parseStreaming(service, path)
	})
}

type viewing struct {
	title       string
	contentType string
}

// parseStreaming reads a viewing history as CSV (any of comma, tab, or
// semicolon separated) or JSON. Episode titles collapse to their show.
func parseStreaming(service streamingService, path string) ([]importer.Candidate, error) {
	var views []viewing
	if extension(path) == ".json" {
		var data any
		if err := readJSON(path, &data); err != nil {
			return nil, err
		}
		for _, entry := range records(data, "items", "viewingHistory") {
			views = append(views, viewing{
				title:       entry.str("title", "name", "programme"),
				contentType: entry.str("type", "contentType", "content_type"),
			})
		}
	} else {
		t, err := readTable(path)
		if err != nil {
			return nil, err
		}
		for _, row := range t.rows {
			views = append(views, viewing{
				title:       t.get(row, titleColumns...),
				contentType: t.get(row, typeColumns...),
			})
		}
	}

	seen := make(map[string]struct{})
	var out []importer.Candidate
	for _, v := range views {
		original := strings.TrimSpace(v.title)
		if original == "" {
			continue
		}
		category := detectVideoCategory(original, v.contentType, service.defaultCategory)
		title := original
		if category == catalog.CategoryTV {
			title = showTitle(original)
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, importer.Candidate{
			Title:      title,
			Category:   category,
			SourceID:   title,
			SourceData: catalog.Metadata{"original_title": original},
		})
	}
	return out, nil
}

// detectVideoCategory trusts an explicit type column, then episode markers in
// the title, then the service default.
func detectVideoCategory(title, contentType string, fallback catalog.Category) catalog.Category {
	kind := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case tvTypes[kind]:
		return catalog.CategoryTV
	case movieTypes[kind]:
		return catalog.CategoryMovie
	case episodeMarker.MatchString(title):
		return catalog.CategoryTV
	}
	return fallback
}

// showTitle strips an episode suffix such as ": Season 2 Episode 3" or
// " - S1E4". Titles without one are returned unchanged.
func showTitle(title string) string {
	loc := episodeMarker.FindStringIndex(title)
	if loc == nil {
		return title
	}
	show := strings.TrimRight(strings.TrimSpace(title[:loc[0]]), ":- ")
	if show == "" {
		return title
	}
	return show
}
