package sources

import (
	"context"
	"strings"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

// parseArxiv reads a paper list as JSON or CSV (id, title, authors).
func parseArxiv(_ context.Context, path string) ([]importer.Candidate, error) {
	type paper struct{ id, title, authors string }
	var papers []paper

	if extension(path) == ".json" {
		var data any
		if err := readJSON(path, &data); err != nil {
			return nil, err
		}
		for _, entry := range records(data, "papers", "items") {
			papers = append(papers, paper{
				id:      entry.str("id", "arxiv_id"),
				title:   entry.str("title"),
				authors: entry.str("authors", "author"),
			})
		}
	} else {
		t, err := readTable(path)
		if err != nil {
			return nil, err
		}
		for _, row := range t.rows {
			papers = append(papers, paper{
				id:      t.get(row, "id", "arxiv_id"),
				title:   t.get(row, "title"),
				authors: t.get(row, "authors", "author"),
			})
		}
	}

	var out []importer.Candidate
	for _, p := range papers {
		title := strings.Join(strings.Fields(p.title), " ")
		if title == "" {
			continue
		}
		id := strings.TrimPrefix(strings.TrimSpace(p.id), "arXiv:")
		candidate := importer.Candidate{
			Title:    title,
			Creator:  p.authors,
			Category: catalog.CategoryPaper,
			SourceID: id,
		}
		if id != "" {
			candidate.Metadata = catalog.Metadata{"arxiv_id": id, "url": "https://arxiv.org/abs/" + id}
		}
		out = append(out, candidate)
	}
	return out, nil
}
