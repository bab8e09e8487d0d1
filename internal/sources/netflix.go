package sources

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"discovery/internal/catalog"
	"discovery/internal/importer"
)

const (
	netflixHistoryFormat = "netflix_viewing_history"
	netflixRatingsFormat = "netflix_ratings_html"
	netflixRatedPrefix   = "Already rated:"
	netflixRatedSuffix   = "(click to remove rating)"
)

var netflixThumbs = map[string]int{
	"thumbs down":      1,
	"thumb down":       1,
	"down":             1,
	"thumbs up":        4,
	"thumb up":         4,
	"up":               4,
	"two thumbs up":    5,
	"2 thumbs up":      5,
	"double thumbs up": 5,
}

// netflixRow is one viewing or rating entry before title collapsing.
type netflixRow struct {
	title    string
	date     string
	rating   string
	duration string
}

// netflixTitleRows gathers every row for one collapsed title.
type netflixTitleRows struct {
	title    string
	category catalog.Category
	first    netflixRow
	last     netflixRow
	rated    *netflixRow
	stars    *int
	views    int
}

// add folds a row in. Viewing activity is exported newest first, so dates are
// compared rather than trusting row order, and the first rated row wins.
func (g *netflixTitleRows) add(row netflixRow) {
	if g.views == 0 {
		g.first, g.last = row, row
	} else {
		if when := parseLooseDate(row.date); !when.IsZero() {
			if first := parseLooseDate(g.first.date); first.IsZero() || when.Before(first) {
				g.first = row
			}
			if last := parseLooseDate(g.last.date); last.IsZero() || when.After(last) {
				g.last = row
			}
		} else if parseLooseDate(g.first.date).IsZero() {
			g.first = row
		}
	}
	g.views++
	if g.stars == nil {
		if stars := netflixRating(row.rating); stars != nil {
			r := row
			g.rated, g.stars = &r, stars
		}
	}
}

// parseNetflix reads ViewingActivity.csv or a saved ratings page. Episodes
// collapse to one tv item per show; everything else is a movie.
func parseNetflix(_ context.Context, path string) ([]importer.Candidate, error) {
	rows, format, err := loadNetflixRows(path)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*netflixTitleRows)
	var titles []*netflixTitleRows
	for _, row := range rows {
		if row.title == "" {
			continue
		}
		title, category := netflixTitle(row.title)
		group, ok := index[title]
		if !ok {
			group = &netflixTitleRows{title: title, category: category}
			index[title] = group
			titles = append(titles, group)
		}
		group.add(row)
	}

	out := make([]importer.Candidate, 0, len(titles))
	for _, g := range titles {
		candidate := importer.Candidate{
			Title:    g.title,
			Category: g.category,
			SourceID: g.title,
			Metadata: catalog.Metadata{"source_format": format},
			SourceData: catalog.Metadata{
				"first_watched": g.first.date,
				"last_watched":  g.last.date,
				"views":         g.views,
				"duration":      g.first.duration,
			},
		}
		if g.stars != nil {
			candidate.Loved = catalog.Bool(*g.stars >= 4)
			candidate.Rating = g.stars
			candidate.RatedAt = parseLooseDate(g.rated.date)
			candidate.SourceData["source_rating"] = *g.stars
			candidate.SourceData["source_rating_raw"] = g.rated.rating
		}
		out = append(out, candidate)
	}
	return out, nil
}

func loadNetflixRows(path string) ([]netflixRow, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if isNetflixHTML(path, data) {
		rows, err := parseNetflixRatingsHTML(data)
		return rows, netflixRatingsFormat, err
	}

	t, err := readTable(path)
	if err != nil {
		return nil, "", err
	}
	if !t.has("Title") {
		return nil, "", fmt.Errorf("%w: missing Title column", ErrUnsupportedFormat)
	}
	rows := make([]netflixRow, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, netflixRow{
			title:    t.get(r, "Title"),
			date:     t.get(r, "Date", "Rated At", "Start Time"),
			rating:   t.get(r, "Rating", "Thumbs", "Thumb Rating"),
			duration: t.get(r, "Duration"),
		})
	}
	return rows, netflixHistoryFormat, nil
}

func isNetflixHTML(path string, data []byte) bool {
	switch extension(path) {
	case ".html", ".htm":
		return true
	}
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	return bytes.Contains(head, []byte(`class="retableRow"`))
}

// parseNetflixRatingsHTML extracts title, date, and thumbs from the
// "Movies You've Seen" ratings page.
func parseNetflixRatingsHTML(data []byte) ([]netflixRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ratings html: %w", err)
	}
	var rows []netflixRow
	doc.Find("li.retableRow").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".col.title a").First().Text())
		if title == "" {
			return
		}
		date := strings.TrimSpace(s.Find(".col.date").First().Text())
		if parsed := parseLooseDate(date); !parsed.IsZero() {
			date = parsed.Format(time.DateOnly)
		}
		var rating string
		s.Find("[aria-label]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			label, _ := el.Attr("aria-label")
			if !strings.HasPrefix(label, netflixRatedPrefix) {
				return true
			}
			label = strings.TrimPrefix(label, netflixRatedPrefix)
			rating = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), netflixRatedSuffix))
			return false
		})
		rows = append(rows, netflixRow{title: title, date: date, rating: rating})
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rated titles found in html", ErrUnsupportedFormat)
	}
	return rows, nil
}

// netflixTitle collapses "Show: Season 1: Episode" and "Show: Episode 3"
// forms to the show title.
func netflixTitle(raw string) (string, catalog.Category) {
	parts := strings.Split(raw, ": ")
	switch {
	case len(parts) >= 3 && strings.Contains(parts[1], "Season"):
		return strings.TrimSpace(parts[0]), catalog.CategoryTV
	case len(parts) >= 2 && (strings.Contains(parts[1], "Episode") || strings.Contains(parts[1], "Chapter")):
		return strings.TrimSpace(parts[0]), catalog.CategoryTV
	default:
		return strings.TrimSpace(raw), catalog.CategoryMovie
	}
}

// netflixRating maps thumbs labels or numeric values to stars. The numeric
// thumbs scale 1, 2, 3 maps to 1, 4, 5 stars.
func netflixRating(raw string) *int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}
	if stars, ok := netflixThumbs[raw]; ok {
		return catalog.Int(stars)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	switch n {
	case 1:
		return catalog.Int(1)
	case 2:
		return catalog.Int(4)
	case 3:
		return catalog.Int(5)
	}
	if catalog.ValidRating(n) {
		return catalog.Int(n)
	}
	return nil
}
