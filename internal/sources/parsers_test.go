package sources_test

import (
	"errors"
	"testing"

	"discovery/internal/catalog"
	"discovery/internal/sources"
	"discovery/internal/testsupport"
)

func TestSpotifyLibrary(t *testing.T) {
	path := testsupport.WriteTempFile(t, "YourLibrary.json", `{
  "tracks": [
    {"artist": "Radiohead", "album": "OK Computer", "track": "Airbag", "uri": "spotify:track:1"},
    {"artist": "Nobody", "album": "", "track": ""}
  ],
  "albums": [{"artist": "Miles Davis", "album": "Kind of Blue", "uri": "spotify:album:2"}]
}`)
	got := parse(t, catalog.SourceSpotify, path)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].SourceID != "Radiohead:Airbag" || got[0].Metadata.String("album") != "OK Computer" || lovedLabel(got[0]) != "loved" {
		t.Fatalf("unexpected track candidate: %+v", got[0])
	}
	if got[1].Title != "Kind of Blue" || got[1].Creator != "Miles Davis" || lovedLabel(got[1]) != "loved" {
		t.Fatalf("unexpected album candidate: %+v", got[1])
	}
}

func TestSpotifyStreamingHistory(t *testing.T) {
	path := testsupport.WriteTempFile(t, "Streaming_History_Audio_2024.json", `[
  {"ts": "2024-01-01T10:00:00Z", "master_metadata_album_artist_name": "Bonobo", "master_metadata_track_name": "Kerala", "ms_played": 60000},
  {"ts": "2024-01-02T10:00:00Z", "master_metadata_album_artist_name": "Bonobo", "master_metadata_track_name": "Kerala", "ms_played": 60000},
  {"ts": "2024-01-03T10:00:00Z", "master_metadata_album_artist_name": "Bonobo", "master_metadata_track_name": "Kerala", "ms_played": 60000},
  {"ts": "2024-01-04T10:00:00Z", "master_metadata_album_artist_name": "Bonobo", "master_metadata_track_name": "Kerala", "ms_played": 60000},
  {"ts": "2024-01-05T10:00:00Z", "master_metadata_album_artist_name": "Bonobo", "master_metadata_track_name": "Kerala", "ms_played": 60000},
  {"ts": "2024-01-06T10:00:00Z", "master_metadata_album_artist_name": "Tycho", "master_metadata_track_name": "Awake", "ms_played": 660000},
  {"ts": "2024-01-07T10:00:00Z", "master_metadata_album_artist_name": "Tycho", "master_metadata_track_name": "Dive", "ms_played": 30000},
  {"ts": "2024-01-08T10:00:00Z", "master_metadata_album_artist_name": null, "master_metadata_track_name": null, "ms_played": 30000}
]`)
	got := parse(t, catalog.SourceSpotify, path)
	want := map[string]string{"Kerala": "loved", "Awake": "loved", "Dive": "disliked"}
	if len(got) != len(want) {
		t.Fatalf("expected %d aggregated tracks, got %d", len(want), len(got))
	}
	for _, c := range got {
		if lovedLabel(c) != want[c.Title] {
			t.Fatalf("%s: expected %q, got %q", c.Title, want[c.Title], lovedLabel(c))
		}
	}
	if got[0].Metadata["play_count"] != 5 {
		t.Fatalf("expected 5 plays for Kerala, got %v", got[0].Metadata["play_count"])
	}
}

func TestSpotifyUnknownShape(t *testing.T) {
	path := testsupport.WriteTempFile(t, "Playlist1.json", `{"playlists": []}`)
	if err := parseErr(t, catalog.SourceSpotify, path); !errors.Is(err, sources.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestGoodreadsCSV(t *testing.T) {
	path := testsupport.WriteTempFile(t, "goodreads_library_export.csv",
		"Book Id,Title,Author,ISBN,ISBN13,My Rating,Year Published,Number of Pages,Date Read,Bookshelves,Exclusive Shelf\n"+
			`234225,Dune,Frank Herbert,"=""0441172717""","=""9780441172719""",5,1965,604,2023/05/01,"favorites, scifi",read`+"\n"+
			`1,Twilight,Stephenie Meyer,,,2,2005,498,,,read`+"\n"+
			`2,The Hobbit,J.R.R. Tolkien,,,0,1937,,,,to-read`+"\n")
	got := parse(t, catalog.SourceGoodreads, path)
	if len(got) != 3 {
		t.Fatalf("expected 3 books, got %d", len(got))
	}

	dune := got[0]
	if dune.SourceID != "234225" || dune.Metadata.String("isbn") != "0441172717" || dune.Metadata.String("isbn13") != "9780441172719" {
		t.Fatalf("unexpected dune identifiers: %+v", dune)
	}
	if lovedLabel(dune) != "loved" || dune.Rating == nil || *dune.Rating != 5 || dune.RatedAt.IsZero() {
		t.Fatalf("unexpected dune opinion: %+v", dune)
	}
	if dune.Metadata["pages"] != 604 || dune.Metadata.String("year") != "1965" {
		t.Fatalf("unexpected dune metadata: %+v", dune.Metadata)
	}

	if lovedLabel(got[1]) != "disliked" || got[1].Rating == nil || *got[1].Rating != 2 {
		t.Fatalf("low rating should carry loved=false and stars: %+v", got[1])
	}
	if got[2].Loved != nil || got[2].Rating != nil {
		t.Fatalf("unrated book should carry no opinion: %+v", got[2])
	}
}

func TestAppleMusicPlist(t *testing.T) {
	path := testsupport.WriteTempFile(t, "Library.xml", `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Major Version</key><integer>1</integer>
  <key>Tracks</key>
  <dict>
    <key>101</key>
    <dict>
      <key>Track ID</key><integer>101</integer>
      <key>Name</key><string>Teardrop</string>
      <key>Artist</key><string>Massive Attack</string>
      <key>Album</key><string>Mezzanine</string>
      <key>Year</key><integer>1998</integer>
      <key>Kind</key><string>AAC audio file</string>
      <key>Play Count</key><integer>42</integer>
      <key>Loved</key><true/>
    </dict>
    <key>102</key>
    <dict>
      <key>Track ID</key><integer>102</integer>
      <key>Name</key><string>Episode 12</string>
      <key>Kind</key><string>Podcast audio file</string>
    </dict>
    <key>103</key>
    <dict>
      <key>Track ID</key><integer>103</integer>
      <key>Name</key><string>Angel</string>
      <key>Artist</key><string>Massive Attack</string>
      <key>Disliked</key><true/>
    </dict>
    <key>104</key>
    <dict>
      <key>Track ID</key><integer>104</integer>
      <key>Name</key><string>Live Concert</string>
      <key>Kind</key><string>Protected MPEG-4 video file</string>
    </dict>
    <key>105</key>
    <dict>
      <key>Track ID</key><integer>105</integer>
      <key>Name</key><string>Inertia Creeps</string>
      <key>Artist</key><string>Massive Attack</string>
      <key>Favorited</key><true/>
    </dict>
  </dict>
  <key>Playlists</key><array><dict><key>Name</key><string>Library</string></dict></array>
</dict>
</plist>`)
	got := parse(t, catalog.SourceAppleMusic, path)
	if len(got) != 3 {
		t.Fatalf("expected 3 music tracks, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Teardrop" || got[0].SourceID != "101" || got[0].Metadata.String("album") != "Mezzanine" || got[0].Metadata.String("year") != "1998" {
		t.Fatalf("unexpected first track: %+v", got[0])
	}
	wantLoved := []string{"loved", "disliked", "loved"}
	for i, want := range wantLoved {
		if lovedLabel(got[i]) != want {
			t.Fatalf("track %s: expected %q, got %q", got[i].Title, want, lovedLabel(got[i]))
		}
	}
}

func TestAppleMusicRejectsNonPlist(t *testing.T) {
	path := testsupport.WriteTempFile(t, "Library.xml", `<html><body>nope</body></html>`)
	if err := parseErr(t, catalog.SourceAppleMusic, path); !errors.Is(err, sources.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNetflixViewingHistory(t *testing.T) {
	path := testsupport.WriteTempFile(t, "ViewingActivity.csv", "Title,Date\n"+
		`"Stranger Things: Season 4: Chapter One: The Hellfire Club",2024-02-01`+"\n"+
		`"Stranger Things: Season 4: Chapter Two: Vecna's Curse",2024-02-02`+"\n"+
		`"Bird Box",2024-01-15`+"\n"+
		`"Bird Box",2024-01-16`+"\n"+
		`"Baby Reindeer: Episode 1",2024-04-20`+"\n")
	got := parse(t, catalog.SourceNetflix, path)
	if len(got) != 3 {
		t.Fatalf("expected 3 deduplicated titles, got %d: %+v", len(got), got)
	}
	want := []struct {
		title    string
		category catalog.Category
	}{
		{"Stranger Things", catalog.CategoryTV},
		{"Bird Box", catalog.CategoryMovie},
		{"Baby Reindeer", catalog.CategoryTV},
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].Category != w.category || got[i].SourceID != w.title {
			t.Fatalf("candidate %d: got %+v, want %+v", i, got[i], w)
		}
		if got[i].Rating != nil || got[i].Loved != nil {
			t.Fatalf("viewing history carries no opinion: %+v", got[i])
		}
	}
}

func TestNetflixCollapsesRowsAcrossDates(t *testing.T) {
	path := testsupport.WriteTempFile(t, "ViewingActivity.csv", "Title,Date,Rating\n"+
		"Bird Box,2024-03-01,\n"+
		"Bird Box,2024-02-10,Two Thumbs Up\n"+
		"Bird Box,2024-01-15,thumbs down\n")
	got := parse(t, catalog.SourceNetflix, path)
	if len(got) != 1 {
		t.Fatalf("expected one title, got %d: %+v", len(got), got)
	}
	c := got[0]
	if c.SourceData.String("first_watched") != "2024-01-15" || c.SourceData.String("last_watched") != "2024-03-01" {
		t.Fatalf("unexpected watch dates: %+v", c.SourceData)
	}
	if c.Rating == nil || *c.Rating != 5 || lovedLabel(c) != "loved" {
		t.Fatalf("expected most recent rating to win: %+v", c)
	}
	if c.RatedAt.Format("2006-01-02") != "2024-02-10" {
		t.Fatalf("unexpected rated at %v", c.RatedAt)
	}
}

func TestNetflixRatingColumn(t *testing.T) {
	path := testsupport.WriteTempFile(t, "ratings.csv", "Title,Date,Rating\n"+
		"Okja,2024-01-02,thumbs down\n"+
		"Roma,2024-01-03,Two Thumbs Up\n"+
		"Mank,2024-01-04,2\n"+
		"Dark,2024-01-05,meh\n")
	got := parse(t, catalog.SourceNetflix, path)
	cases := []struct {
		stars *int
		loved string
	}{
		{catalog.Int(1), "disliked"},
		{catalog.Int(5), "loved"},
		{catalog.Int(4), "loved"},
		{nil, ""},
	}
	for i, c := range cases {
		if (c.stars == nil) != (got[i].Rating == nil) || (c.stars != nil && *c.stars != *got[i].Rating) {
			t.Fatalf("%s: unexpected stars %v", got[i].Title, got[i].Rating)
		}
		if lovedLabel(got[i]) != c.loved {
			t.Fatalf("%s: expected %q, got %q", got[i].Title, c.loved, lovedLabel(got[i]))
		}
	}
	if got[0].RatedAt.IsZero() {
		t.Fatal("expected rated_at parsed from the date column")
	}
}

func TestNetflixRatingsHTML(t *testing.T) {
	path := testsupport.WriteTempFile(t, "ratings.html", `<html><body><ul>
<li class="retableRow"><div class="col date nowrap">1/15/24</div><div class="col title"><a href="/title/1">Tom &amp; Jerry</a></div>
<div class="col rating"><button aria-label="Already rated: thumbs up (click to remove rating)"></button></div></li>
<li class="retableRow"><div class="col date nowrap">2/3/24</div><div class="col title"><a href="/title/2">The Crown: Season 1: Wolferton Splash</a></div>
<div class="col rating"><button aria-label="Already rated: two thumbs up (click to remove rating)"></button></div></li>
<li class="retableRow"><div class="col date nowrap">2/4/24</div><div class="col title"><a href="/title/3">Cats</a></div>
<div class="col rating"><button aria-label="Already rated: thumbs down (click to remove rating)"></button></div></li>
</ul></body></html>`)
	got := parse(t, catalog.SourceNetflix, path)
	if len(got) != 3 {
		t.Fatalf("expected 3 rated titles, got %d", len(got))
	}
	if got[0].Title != "Tom & Jerry" || *got[0].Rating != 4 || lovedLabel(got[0]) != "loved" {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[0].Metadata.String("source_format") != "netflix_ratings_html" {
		t.Fatalf("unexpected format: %v", got[0].Metadata)
	}
	if got[0].SourceData.String("first_watched") != "2024-01-15" {
		t.Fatalf("expected ISO date, got %q", got[0].SourceData.String("first_watched"))
	}
	if got[1].Title != "The Crown" || got[1].Category != catalog.CategoryTV || *got[1].Rating != 5 {
		t.Fatalf("unexpected tv row: %+v", got[1])
	}
	if *got[2].Rating != 1 || lovedLabel(got[2]) != "disliked" {
		t.Fatalf("unexpected thumbs down row: %+v", got[2])
	}
}

func TestStreamingServices(t *testing.T) {
	tests := []struct {
		name   string
		source catalog.Source
		file   string
		body   string
		want   map[string]catalog.Category
	}{
		{
			name:   "amazon tab separated",
			source: catalog.SourceAmazonPrime,
			file:   "ViewingHistory.csv",
			body: "Video Title\tType\n" +
				"The Expanse - S1E1\t\n" +
				"The Expanse - S1E2\t\n" +
				"The Tomorrow War\t\n" +
				"Reacher: Season 2\t\n",
			want: map[string]catalog.Category{"The Expanse": catalog.CategoryTV, "The Tomorrow War": catalog.CategoryMovie, "Reacher": catalog.CategoryTV},
		},
		{
			name:   "disney type column",
			source: catalog.SourceDisneyPlus,
			file:   "viewing-history.csv",
			body:   "title,type\nThe Mandalorian,tv\nEncanto,movie\nLoki S01E02,\n",
			want:   map[string]catalog.Category{"The Mandalorian": catalog.CategoryTV, "Encanto": catalog.CategoryMovie, "Loki": catalog.CategoryTV},
		},
		{
			name:   "apple tv json",
			source: catalog.SourceAppleTV,
			file:   "activity.json",
			body:   `{"items": [{"title": "Ted Lasso: Season 3", "type": ""}, {"title": "CODA", "type": "movie"}]}`,
			want:   map[string]catalog.Category{"Ted Lasso": catalog.CategoryTV, "CODA": catalog.CategoryMovie},
		},
		{
			name:   "bbc semicolon defaults to tv",
			source: catalog.SourceBBCIPlayer,
			file:   "iplayer.csv",
			body:   "programme;type\nDoctor Who: Series 3: Blink;\nSherlock - Series 2;\nBlue Planet II;\nParadise;film\n",
			want:   map[string]catalog.Category{"Doctor Who": catalog.CategoryTV, "Sherlock": catalog.CategoryTV, "Blue Planet II": catalog.CategoryTV, "Paradise": catalog.CategoryMovie},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := testsupport.WriteTempFile(t, tc.file, tc.body)
			got := parse(t, tc.source, path)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d titles, got %d: %+v", len(tc.want), len(got), got)
			}
			for _, c := range got {
				category, ok := tc.want[c.Title]
				if !ok {
					t.Fatalf("unexpected title %q", c.Title)
				}
				if c.Category != category {
					t.Fatalf("%s: expected %s, got %s", c.Title, category, c.Category)
				}
				if c.SourceID != c.Title {
					t.Fatalf("%s: source id should be the collapsed title, got %q", c.Title, c.SourceID)
				}
			}
		})
	}
}

func TestQobuz(t *testing.T) {
	csvPath := testsupport.WriteTempFile(t, "favorites.csv", "title,artist,album\nTime,Pink Floyd,The Dark Side of the Moon\n,Nobody,\n")
	got := parse(t, catalog.SourceQobuz, csvPath)
	if len(got) != 1 || got[0].SourceID != "Pink Floyd:Time" || lovedLabel(got[0]) != "loved" {
		t.Fatalf("unexpected csv candidates: %+v", got)
	}

	jsonPath := testsupport.WriteTempFile(t, "favorites.json", `{"favorites": [
  {"title": "So What", "performer": {"name": "Miles Davis"}, "album": {"title": "Kind of Blue"}}
]}`)
	got = parse(t, catalog.SourceQobuz, jsonPath)
	if len(got) != 1 || got[0].Creator != "Miles Davis" || got[0].Metadata.String("album") != "Kind of Blue" {
		t.Fatalf("unexpected json candidates: %+v", got)
	}

	txt := testsupport.WriteTempFile(t, "favorites.pdf", "binary")
	if err := parseErr(t, catalog.SourceQobuz, txt); !errors.Is(err, sources.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestKindleAndArxiv(t *testing.T) {
	kindle := testsupport.WriteTempFile(t, "kindle.csv", "Title,Author,ASIN\nProject Hail Mary,Andy Weir,B08FHBV4ZX\n")
	books := parse(t, catalog.SourceKindle, kindle)
	if len(books) != 1 || books[0].SourceID != "B08FHBV4ZX" || books[0].Category != catalog.CategoryBook {
		t.Fatalf("unexpected kindle candidates: %+v", books)
	}

	arxiv := testsupport.WriteTempFile(t, "papers.json", `[
  {"id": "arXiv:1706.03762", "title": "Attention Is\n  All You Need", "authors": ["Ashish Vaswani", "Noam Shazeer"]}
]`)
	papers := parse(t, catalog.SourceArxiv, arxiv)
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
	p := papers[0]
	if p.Title != "Attention Is All You Need" || p.SourceID != "1706.03762" || p.Creator != "Ashish Vaswani, Noam Shazeer" || p.Category != catalog.CategoryPaper {
		t.Fatalf("unexpected paper: %+v", p)
	}
}

func TestEmptyCSVFails(t *testing.T) {
	path := testsupport.WriteTempFile(t, "empty.csv", "  \n")
	if err := parseErr(t, catalog.SourceKindle, path); err == nil {
		t.Fatal("expected empty file to fail")
	}
}
