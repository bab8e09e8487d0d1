package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// parseGoodreads reads the library export CSV. Books rated 4 or 5 are loved,
// rated 1-3 are not, and unrated books carry no opinion.
func parseGoodreads(_ context.Context, path string) ([]importer.Candidate, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if !t.has("Title") {
		return nil, fmt.Errorf("%w: missing Title column", ErrUnsupportedFormat)
	}

	var out []importer.Candidate
	for _, row := range t.rows {
		title := t.get(row, "Title")
		if title == "" {
			continue
		}
		stars, _ := strconv.Atoi(t.get(row, "My Rating"))
		shelf := t.get(row, "Exclusive Shelf")

		metadata := catalog.Metadata{"shelf": shelf}
		if isbn := cleanISBN(t.get(row, "ISBN")); isbn != "" {
			metadata["isbn"] = isbn
		}
		if isbn13 := cleanISBN(t.get(row, "ISBN13")); isbn13 != "" {
			metadata["isbn13"] = isbn13
		}
		if year := t.get(row, "Year Published", "Original Publication Year"); year != "" {
			metadata["year"] = year
		}
		if pages, err := strconv.Atoi(t.get(row, "Number of Pages")); err == nil {
			metadata["pages"] = pages
		}

		var shelves []string
		if raw := t.get(row, "Bookshelves"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					shelves = append(shelves, s)
				}
			}
		}

		candidate := importer.Candidate{
			Title:    title,
			Creator:  t.get(row, "Author"),
			Category: catalog.CategoryBook,
			SourceID: t.get(row, "Book Id"),
			Metadata: metadata,
			SourceData: catalog.Metadata{
				"rating":          stars,
				"shelves":         shelves,
				"exclusive_shelf": shelf,
				"date_read":       t.get(row, "Date Read"),
			},
		}
		if stars > 0 {
			candidate.Loved = catalog.Bool(stars >= 4)
			if catalog.ValidRating(stars) {
				candidate.Rating = catalog.Int(stars)
				candidate.RatedAt = parseLooseDate(t.get(row, "Date Read", "Date Added"))
			}
		}
		out = append(out, candidate)
	}
	return out, nil
}

// cleanISBN strips the ="..." spreadsheet guard Goodreads wraps ISBNs in.
func cleanISBN(value string) string {
	return strings.Trim(strings.TrimSpace(value), `="`)
}
