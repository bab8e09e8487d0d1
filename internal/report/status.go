package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"discovery/internal/catalog"
	"discovery/internal/store"
)

const (
	statusSampleSize = 10
	statusShown      = 5
)

// Reporter reads summaries from a catalog store.
type Reporter struct {
	store *store.Store
}

// New returns a Reporter over st.
func New(st *store.Store) *Reporter {
	return &Reporter{store: st}
}

// Totals are library-wide counts.
type Totals struct {
	Items    int `json:"items" yaml:"items"`
	Loved    int `json:"loved" yaml:"loved"`
	Disliked int `json:"disliked" yaml:"disliked"`
	Wishlist int `json:"wishlist" yaml:"wishlist"`
}

// CategoryStatus holds the counts for one category.
type CategoryStatus struct {
	Category catalog.Category `json:"category" yaml:"category"`
	Total    int              `json:"total" yaml:"total"`
	Loved    int              `json:"loved" yaml:"loved"`
	Disliked int              `json:"disliked" yaml:"disliked"`
	Wishlist int              `json:"wishlist" yaml:"wishlist"`
}

// Sample is a title shown as an example of a category.
type Sample struct {
	Title   string `json:"title" yaml:"title"`
	Creator string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Notes   string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Status is a point-in-time overview of the library.
type Status struct {
	Totals         Totals                        `json:"totals" yaml:"totals"`
	Categories     []CategoryStatus              `json:"categories" yaml:"categories"`
	Sources        map[catalog.Source]int        `json:"sources" yaml:"sources"`
	LastSync       []catalog.SyncState           `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
	SampleLoved    map[catalog.Category][]Sample `json:"sample_loved" yaml:"sample_loved"`
	SampleWishlist map[catalog.Category][]Sample `json:"sample_wishlist" yaml:"sample_wishlist"`
}

// Status collects totals for every category, link counts per source, and up
// to ten random loved items and ten wishlist entries per category.
func (r *Reporter) Status(ctx context.Context) (*Status, error) {
	stats, err := r.store.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[catalog.Category]store.CategoryStats, len(stats))
	for _, stat := range stats {
		byCategory[stat.Category] = stat
	}

	sources, err := r.store.SourceStats(ctx)
	if err != nil {
		return nil, err
	}
	syncs, err := r.store.SyncStates(ctx)
	if err != nil {
		return nil, err
	}
	wishlist, err := r.store.Wishlist(ctx, "")
	if err != nil {
		return nil, err
	}
	wishlistByCategory := make(map[catalog.Category][]catalog.WishlistEntry)
	for _, entry := range wishlist {
		wishlistByCategory[entry.Category] = append(wishlistByCategory[entry.Category], entry)
	}

	status := &Status{
		Sources:        sources,
		LastSync:       syncs,
		SampleLoved:    make(map[catalog.Category][]Sample),
		SampleWishlist: make(map[catalog.Category][]Sample),
	}
	for _, category := range catalog.Categories {
		stat := byCategory[category]
		entries := wishlistByCategory[category]
		status.Categories = append(status.Categories, CategoryStatus{
			Category: category,
			Total:    stat.Total,
			Loved:    stat.Loved,
			Disliked: stat.Disliked,
			Wishlist: len(entries),
		})
		status.Totals.Items += stat.Total
		status.Totals.Loved += stat.Loved
		status.Totals.Disliked += stat.Disliked
		status.Totals.Wishlist += len(entries)

		if stat.Loved > 0 {
			loved, err := r.store.QueryItems(ctx, store.Filter{Category: category, Loved: true, Limit: statusSampleSize, Random: true})
			if err != nil {
				return nil, err
			}
			for _, item := range loved {
				status.SampleLoved[category] = append(status.SampleLoved[category], Sample{Title: item.Title, Creator: item.Creator})
			}
		}
		for i, entry := range entries {
			if i == statusSampleSize {
				break
			}
			status.SampleWishlist[category] = append(status.SampleWishlist[category], Sample{Title: entry.Title, Creator: entry.Creator, Notes: entry.Notes})
		}
	}
	return status, nil
}

// WriteText renders status as the Markdown-flavored text shown by the status command.
func WriteText(w io.Writer, status *Status) error {
	heading := cases.Upper(language.English)
	var b strings.Builder

	b.WriteString("# Discovery Library Status\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Total items: %d\n", status.Totals.Items)
	fmt.Fprintf(&b, "- Loved: %d\n", status.Totals.Loved)
	fmt.Fprintf(&b, "- Disliked: %d\n", status.Totals.Disliked)
	fmt.Fprintf(&b, "- Wishlist: %d\n\n", status.Totals.Wishlist)

	if status.Totals.Items > 0 {
		b.WriteString("## By Category\n\n")
		for _, cat := range status.Categories {
			if cat.Total == 0 {
				continue
			}
			fmt.Fprintf(&b, "- %s: %d items (%d loved, %d disliked, %d wishlist)\n", cat.Category, cat.Total, cat.Loved, cat.Disliked, cat.Wishlist)
		}
		b.WriteString("\n")
	}

	if len(status.Sources) > 0 {
		b.WriteString("## By Source\n\n")
		names := make([]string, 0, len(status.Sources))
		for source := range status.Sources {
			names = append(names, string(source))
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d items\n", name, status.Sources[catalog.Source(name)])
		}
		b.WriteString("\n")
	}

	writeSamples(&b, heading, "Sample Loved Items", status.Categories, status.SampleLoved,
		func(c CategoryStatus) int { return c.Loved },
		"discovery query -c %s -l")
	writeSamples(&b, heading, "Sample Wishlist Items", status.Categories, status.SampleWishlist,
		func(c CategoryStatus) int { return c.Wishlist },
		"discovery wishlist view -c %s")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSamples(b *strings.Builder, heading cases.Caser, title string, categories []CategoryStatus, samples map[catalog.Category][]Sample, total func(CategoryStatus) int, hint string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, cat := range categories {
		sample := samples[cat.Category]
		if len(sample) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", heading.String(string(cat.Category)))
		for i, s := range sample {
			if i == statusShown {
				break
			}
			line := "- " + s.Title
			if s.Creator != "" {
				line += " - " + s.Creator
			}
			if s.Notes != "" {
				line += " (" + s.Notes + ")"
			}
			b.WriteString(line + "\n")
		}
		if n := total(cat); n > statusShown {
			fmt.Fprintf(b, "- ... and %d more (use '%s' to see all)\n", n-statusShown, fmt.Sprintf(hint, cat.Category))
		}
		b.WriteString("\n")
	}
}
