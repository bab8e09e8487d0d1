package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"discovery/internal/catalog"
	"discovery/internal/report"
	"discovery/internal/store"
	"discovery/internal/testsupport"
)

func seedLibrary(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	blue := &catalog.Item{
		Category: catalog.CategoryMusic,
		Title:    "Kind of Blue",
		Creator:  "Miles Davis",
		Metadata: catalog.Metadata{"genre": "jazz", "year": 1959},
	}
	if err := st.UpsertItem(ctx, blue); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	if err := st.UpsertSourceLink(ctx, &catalog.SourceLink{ItemID: blue.ID, Source: catalog.SourceSpotify, SourceID: "Miles Davis:Kind of Blue"}); err != nil {
		t.Fatalf("UpsertSourceLink: %v", err)
	}
	rate(t, st, blue.ID, true)

	loved := testsupport.AddItem(t, st, catalog.CategoryMusic, "Teardrop", "Massive Attack", catalog.SourceSpotify, "")
	rate(t, st, loved.ID, true)
	disliked := testsupport.AddItem(t, st, catalog.CategoryMusic, "Barbie Girl", "Aqua", catalog.SourceSpotify, "")
	rate(t, st, disliked.ID, false)
	testsupport.AddItem(t, st, catalog.CategoryMusic, "Neutral Song", "Somebody", catalog.SourceSpotify, "")
	testsupport.AddItem(t, st, catalog.CategoryGame, "Portal 2", "", catalog.SourceSteam, "620")

	if err := st.AddWishlistEntry(ctx, &catalog.WishlistEntry{Category: catalog.CategoryBook, Title: "Dune", Creator: "Frank Herbert", Notes: "gift idea"}); err != nil {
		t.Fatalf("AddWishlistEntry: %v", err)
	}
	return st
}

func rate(t *testing.T, st *store.Store, itemID string, loved bool) {
	t.Helper()
	if err := st.UpsertRating(context.Background(), &catalog.Rating{ItemID: itemID, Loved: catalog.Bool(loved)}); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}
}

func TestStatus(t *testing.T) {
	st := seedLibrary(t)
	status, err := report.New(st).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	want := report.Totals{Items: 5, Loved: 2, Disliked: 1, Wishlist: 1}
	if status.Totals != want {
		t.Fatalf("totals = %+v, want %+v", status.Totals, want)
	}
	if len(status.Categories) != len(catalog.Categories) {
		t.Fatalf("expected every category listed, got %d", len(status.Categories))
	}
	music := status.Categories[0]
	if music.Category != catalog.CategoryMusic || music.Total != 4 || music.Loved != 2 || music.Disliked != 1 {
		t.Fatalf("unexpected music status: %+v", music)
	}
	if status.Sources[catalog.SourceSpotify] != 4 || status.Sources[catalog.SourceSteam] != 1 {
		t.Fatalf("unexpected sources: %+v", status.Sources)
	}
	if len(status.SampleLoved[catalog.CategoryMusic]) != 2 {
		t.Fatalf("expected both loved tracks sampled, got %+v", status.SampleLoved)
	}
	if got := status.SampleWishlist[catalog.CategoryBook]; len(got) != 1 || got[0].Notes != "gift idea" {
		t.Fatalf("unexpected wishlist sample: %+v", got)
	}
}

func TestWriteText(t *testing.T) {
	st := seedLibrary(t)
	status, err := report.New(st).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	var buf bytes.Buffer
	if err := report.WriteText(&buf, status); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"- Total items: 5",
		"- music: 4 items (2 loved, 1 disliked, 0 wishlist)",
		"- spotify: 4 items",
		"### MUSIC",
		"- Dune - Frank Herbert (gift idea)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("status text missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "- book: 0 items") {
		t.Fatalf("empty categories should be skipped:\n%s", out)
	}
}

func TestExportMarkdown(t *testing.T) {
	st := seedLibrary(t)
	var buf bytes.Buffer
	if err := report.New(st).ExportMarkdown(context.Background(), &buf, ""); err != nil {
		t.Fatalf("ExportMarkdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Discovery Library Export (All Categories)",
		"- Total loved: 2",
		"- Total disliked: 1",
		"- Kind of Blue by Miles Davis (jazz, 1959)",
		"## Disliked Items\n\n### MUSIC\n\n- Barbie Girl by Aqua\n",
		"### MUSIC (4 total)\n\n- Neutral Song by Somebody\n\n",
		"### GAME (1 total)\n\n- Portal 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
}

func TestExportMarkdownCategoryAndCaps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.AddItem(t, st, catalog.CategoryMusic, "Elsewhere", "Someone", catalog.SourceManual, "")
	for i := 0; i < 35; i++ {
		testsupport.AddItem(t, st, catalog.CategoryGame, fmt.Sprintf("Game %02d", i), "", catalog.SourceSteam, "")
	}

	var buf bytes.Buffer
	if err := report.New(st).ExportMarkdown(context.Background(), &buf, catalog.CategoryGame); err != nil {
		t.Fatalf("ExportMarkdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "# Discovery Library Export (GAME)") {
		t.Fatalf("missing category label:\n%s", out)
	}
	if strings.Contains(out, "Elsewhere") {
		t.Fatalf("category filter leaked other items:\n%s", out)
	}
	if !strings.Contains(out, "- Game 29\n- ... and 5 more\n") || strings.Contains(out, "Game 30") {
		t.Fatalf("expected neutral sample capped at 30:\n%s", out)
	}
	if strings.Contains(out, "## Disliked Items") {
		t.Fatalf("disliked section should be omitted when empty:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	st := seedLibrary(t)
	var buf bytes.Buffer
	if err := report.New(st).ExportJSON(context.Background(), &buf, ""); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var lib report.Library
	if err := json.Unmarshal(buf.Bytes(), &lib); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lib.Loved[catalog.CategoryMusic]) != 2 || len(lib.All[catalog.CategoryMusic]) != 4 {
		t.Fatalf("unexpected music export: %+v", lib)
	}
	if lib.Loved[catalog.CategoryMusic][0].Metadata.String("genre") != "jazz" {
		t.Fatalf("expected metadata carried: %+v", lib.Loved[catalog.CategoryMusic][0])
	}
	if lib.Stats[catalog.CategoryMusic].Disliked != 1 {
		t.Fatalf("unexpected stats: %+v", lib.Stats)
	}
	if _, ok := lib.Stats[catalog.CategoryPaper]; ok {
		t.Fatal("empty categories should have no stats entry")
	}
	if lib.SourceStats[catalog.SourceSteam] != 1 {
		t.Fatalf("unexpected source stats: %+v", lib.SourceStats)
	}
}

func TestExportYAML(t *testing.T) {
	st := seedLibrary(t)
	var buf bytes.Buffer
	if err := report.New(st).ExportYAML(context.Background(), &buf, catalog.CategoryGame); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	all, ok := doc["all"].(map[string]any)
	if !ok {
		t.Fatalf("missing all section:\n%s", buf.String())
	}
	games, ok := all["game"].([]any)
	if !ok || len(games) != 1 {
		t.Fatalf("expected one game, got %v", all["game"])
	}
	if _, ok := all["music"]; ok {
		t.Fatalf("category filter leaked music:\n%s", buf.String())
	}
}
