package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"discovery/internal/catalog"
	"discovery/internal/store"
)

// Markdown section caps.
const (
	lovedCap    = 100
	dislikedCap = 50
	neutralCap  = 30
)

// ExportItem is one item in a structured export.
type ExportItem struct {
	Title    string           `json:"title" yaml:"title"`
	Creator  string           `json:"creator" yaml:"creator"`
	Metadata catalog.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// CategoryCounts is the per-category summary in a structured export.
type CategoryCounts struct {
	Total    int `json:"total" yaml:"total"`
	Loved    int `json:"loved" yaml:"loved"`
	Disliked int `json:"disliked" yaml:"disliked"`
}

// Library is the structured export document.
type Library struct {
	Stats       map[catalog.Category]CategoryCounts `json:"stats" yaml:"stats"`
	SourceStats map[catalog.Source]int              `json:"source_stats" yaml:"source_stats"`
	Loved       map[catalog.Category][]ExportItem   `json:"loved" yaml:"loved"`
	Disliked    map[catalog.Category][]ExportItem   `json:"disliked" yaml:"disliked"`
	All         map[catalog.Category][]ExportItem   `json:"all" yaml:"all"`
}

// section holds one category's items split by opinion.
type section struct {
	category catalog.Category
	all      []catalog.Item
	loved    []catalog.Item
	disliked []catalog.Item
	neutral  []catalog.Item
}

// collect loads every requested category. An empty category means all.
func (r *Reporter) collect(ctx context.Context, category catalog.Category) ([]section, error) {
	categories := catalog.Categories
	if category != "" {
		categories = []catalog.Category{category}
	}
	sections := make([]section, 0, len(categories))
	for _, c := range categories {
		all, err := r.store.QueryItems(ctx, store.Filter{Category: c})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", c, err)
		}
		loved, err := r.store.QueryItems(ctx, store.Filter{Category: c, Loved: true})
		if err != nil {
			return nil, fmt.Errorf("load loved %s: %w", c, err)
		}
		disliked, err := r.store.QueryItems(ctx, store.Filter{Category: c, Disliked: true})
		if err != nil {
			return nil, fmt.Errorf("load disliked %s: %w", c, err)
		}
		opinionated := make(map[string]struct{}, len(loved)+len(disliked))
		for _, item := range loved {
			opinionated[item.ID] = struct{}{}
		}
		for _, item := range disliked {
			opinionated[item.ID] = struct{}{}
		}
		var neutral []catalog.Item
		for _, item := range all {
			if _, ok := opinionated[item.ID]; !ok {
				neutral = append(neutral, item)
			}
		}
		sections = append(sections, section{category: c, all: all, loved: loved, disliked: disliked, neutral: neutral})
	}
	return sections, nil
}

// ExportMarkdown writes a readable summary of the library: an overview, then
// loved, disliked, and a sample of neutral items per category.
func (r *Reporter) ExportMarkdown(ctx context.Context, w io.Writer, category catalog.Category) error {
	sections, err := r.collect(ctx, category)
	if err != nil {
		return err
	}
	heading := cases.Upper(language.English)
	label := "All Categories"
	if category != "" {
		label = heading.String(string(category))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Discovery Library Export (%s)\n\n", label)

	var total, loved, disliked int
	for _, s := range sections {
		total += len(s.all)
		loved += len(s.loved)
		disliked += len(s.disliked)
	}
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Total items: %d\n", total)
	fmt.Fprintf(&b, "- Total loved: %d\n", loved)
	fmt.Fprintf(&b, "- Total disliked: %d\n\n", disliked)
	for _, s := range sections {
		if len(s.all) > 0 {
			fmt.Fprintf(&b, "- %s: %d items (%d loved)\n", s.category, len(s.all), len(s.loved))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Loved Items\n\n")
	for _, s := range sections {
		writeItems(&b, heading.String(string(s.category)), s.loved, lovedCap, true)
	}
	if disliked > 0 {
		b.WriteString("## Disliked Items\n\n")
		for _, s := range sections {
			writeItems(&b, heading.String(string(s.category)), s.disliked, dislikedCap, false)
		}
	}
	b.WriteString("## All Items (sample)\n\n")
	for _, s := range sections {
		if len(s.all) == 0 {
			continue
		}
		title := fmt.Sprintf("%s (%d total)", heading.String(string(s.category)), len(s.all))
		fmt.Fprintf(&b, "### %s\n\n", title)
		writeList(&b, s.neutral, neutralCap, false)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func writeItems(b *strings.Builder, title string, items []catalog.Item, limit int, details bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	writeList(b, items, limit, details)
}

func writeList(b *strings.Builder, items []catalog.Item, limit int, details bool) {
	for i, item := range items {
		if i == limit {
			fmt.Fprintf(b, "- ... and %d more\n", len(items)-limit)
			break
		}
		line := "- " + item.Title
		if item.Creator != "" {
			line += " by " + item.Creator
		}
		if details {
			var parts []string
			for _, key := range []string{"genre", "year"} {
				if v := item.Metadata.String(key); v != "" {
					parts = append(parts, v)
				}
			}
			if len(parts) > 0 {
				line += " (" + strings.Join(parts, ", ") + ")"
			}
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

// Library builds the structured export. Unlike the Markdown form it is not capped.
func (r *Reporter) Library(ctx context.Context, category catalog.Category) (*Library, error) {
	sections, err := r.collect(ctx, category)
	if err != nil {
		return nil, err
	}
	sources, err := r.store.SourceStats(ctx)
	if err != nil {
		return nil, err
	}
	lib := &Library{
		Stats:       make(map[catalog.Category]CategoryCounts),
		SourceStats: sources,
		Loved:       make(map[catalog.Category][]ExportItem),
		Disliked:    make(map[catalog.Category][]ExportItem),
		All:         make(map[catalog.Category][]ExportItem),
	}
	for _, s := range sections {
		if len(s.all) > 0 {
			lib.Stats[s.category] = CategoryCounts{Total: len(s.all), Loved: len(s.loved), Disliked: len(s.disliked)}
		}
		lib.Loved[s.category] = exportItems(s.loved)
		lib.Disliked[s.category] = exportItems(s.disliked)
		lib.All[s.category] = exportItems(s.all)
	}
	return lib, nil
}

func exportItems(items []catalog.Item) []ExportItem {
	out := make([]ExportItem, 0, len(items))
	for _, item := range items {
		out = append(out, ExportItem{Title: item.Title, Creator: item.Creator, Metadata: item.Metadata})
	}
	return out
}

// ExportJSON writes the structured export as indented JSON.
func (r *Reporter) ExportJSON(ctx context.Context, w io.Writer, category catalog.Category) error {
	lib, err := r.Library(ctx, category)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lib); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// ExportYAML writes the structured export as YAML.
func (r *Reporter) ExportYAML(ctx context.Context, w io.Writer, category catalog.Category) error {
	lib, err := r.Library(ctx, category)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lib); err != nil {
		return fmt.Errorf("encode yaml export: %w", err)
	}
	return enc.Close()
}
