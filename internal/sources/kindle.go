package sources

import (
	"context"
	"fmt"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// parseKindle reads a book list CSV with Title, Author, and ASIN columns.
func parseKindle(_ context.Context, path string) ([]importer.Candidate, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if !t.has("Title", "Product Name") {
		return nil, fmt.Errorf("%w: missing Title column", ErrUnsupportedFormat)
	}
	var out []importer.Candidate
	for _, row := range t.rows {
		title := t.get(row, "Title", "Product Name")
		if title == "" {
			continue
		}
		asin := t.get(row, "ASIN")
		candidate := importer.Candidate{
			Title:    title,
			Creator:  t.get(row, "Author", "Authors", "Creator"),
			Category: catalog.CategoryBook,
			SourceID: asin,
		}
		if asin != "" {
			candidate.Metadata = catalog.Metadata{"asin": asin}
		}
		out = append(out, candidate)
	}
	return out, nil
}
