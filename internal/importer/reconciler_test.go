package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"discovery/internal/catalog"
	"discovery/internal/importer"
	"discovery/internal/logging"
	"discovery/internal/matching"
	"discovery/internal/store"
	"discovery/internal/testsupport"
)

func newReconciler(t *testing.T) (*importer.Reconciler, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return importer.NewReconciler(st, cfg.MatchingPolicy(), logging.NewNop()), st
}

func countCategory(t *testing.T, st *store.Store, category catalog.Category) int {
	t.Helper()
	n, err := st.CountByCategory(context.Background(), category)
	if err != nil {
		t.Fatalf("CountByCategory failed: %v", err)
	}
	return n
}

func TestImportBatchIsIdempotent(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	candidates := []importer.Candidate{
		{Title: "Money", Creator: "Pink Floyd", Category: catalog.CategoryMusic, SourceID: "pf:money"},
		{Title: "Time", Creator: "Pink Floyd", Category: catalog.CategoryMusic, SourceID: "pf:time"},
		{Title: "Dancing Queen", Creator: "ABBA", Category: catalog.CategoryMusic},
	}

	first := r.ImportBatch(ctx, catalog.SourceSpotify, candidates)
	if first.ItemsAdded != 3 || first.ItemsUpdated != 0 || len(first.Errors) != 0 {
		t.Fatalf("unexpected first result %#v", first)
	}
	second := r.ImportBatch(ctx, catalog.SourceSpotify, candidates)
	if second.ItemsAdded != 0 || second.ItemsUpdated != 3 || len(second.Errors) != 0 {
		t.Fatalf("unexpected second result %#v", second)
	}
	if got := countCategory(t, st, catalog.CategoryMusic); got != 3 {
		t.Fatalf("expected 3 items after re-import, got %d", got)
	}
	if len(second.Categories) != 1 || second.Categories[0] != catalog.CategoryMusic {
		t.Fatalf("unexpected categories %v", second.Categories)
	}

	derived, err := st.FindBySourceLink(ctx, catalog.SourceSpotify, "abba:dancing queen")
	if err != nil || derived == nil {
		t.Fatalf("expected derived source id link, got %#v %v", derived, err)
	}
}

func TestCrossSourceImportLinksExistingItem(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()

	a := r.ImportBatch(ctx, catalog.SourceSpotify, []importer.Candidate{
		{Title: "Money", Creator: "Pink Floyd", Category: catalog.CategoryMusic, SourceID: "sp-1"},
	})
	if a.ItemsAdded != 1 {
		t.Fatalf("expected 1 added, got %#v", a)
	}
	b := r.ImportBatch(ctx, catalog.SourceQobuz, []importer.Candidate{
		{Title: "Money", Creator: "Pink Floyd", Category: catalog.CategoryMusic, SourceID: "qb-1"},
	})
	if b.ItemsAdded != 0 || b.ItemsUpdated != 1 {
		t.Fatalf("expected 1 updated, got %#v", b)
	}

	item, err := st.FindBySourceLink(ctx, catalog.SourceQobuz, "qb-1")
	if err != nil || item == nil {
		t.Fatalf("expected qobuz link, got %#v %v", item, err)
	}
	links, err := st.SourceLinks(ctx, item.ID)
	if err != nil || len(links) != 2 {
		t.Fatalf("expected 2 links, got %d (%v)", len(links), err)
	}
	if got := countCategory(t, st, catalog.CategoryMusic); got != 1 {
		t.Fatalf("expected single item, got %d", got)
	}
}

func TestImportLinksManualItem(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	manual := testsupport.AddItem(t, st, catalog.CategoryBook, "Dune", "Frank Herbert", catalog.SourceManual, "")

	res := r.ImportBatch(ctx, catalog.SourceGoodreads, []importer.Candidate{
		{Title: "Dune (Deluxe Edition)", Creator: "F. Herbert", Category: catalog.CategoryBook, SourceID: "234225"},
	})
	if res.ItemsUpdated != 1 || res.ItemsAdded != 0 {
		t.Fatalf("unexpected result %#v", res)
	}
	links, _ := st.SourceLinks(ctx, manual.ID)
	if len(links) != 2 {
		t.Fatalf("expected manual item to gain a link, got %d", len(links))
	}
	got, _ := st.GetItem(ctx, manual.ID)
	if got.Title != "Dune" {
		t.Fatalf("duplicate match must not overwrite title, got %q", got.Title)
	}
}

func TestSourceIdentityOverwritesTitle(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()

	r.ImportBatch(ctx, catalog.SourceSteam, []importer.Candidate{
		{Title: "Portal", Creator: "Valve", Category: catalog.CategoryGame, SourceID: "400"},
	})
	before, _ := st.FindBySourceLink(ctx, catalog.SourceSteam, "400")

	res := r.ImportBatch(ctx, catalog.SourceSteam, []importer.Candidate{
		{Title: "Portal: Still Alive", Category: catalog.CategoryGame, SourceID: "400", Metadata: catalog.Metadata{"playtime_hours": 12.5}},
	})
	if res.ItemsUpdated != 1 {
		t.Fatalf("unexpected result %#v", res)
	}
	after, _ := st.GetItem(ctx, before.ID)
	if after.Title != "Portal: Still Alive" || after.Creator != "" {
		t.Fatalf("expected last-write-wins, got %#v", after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	if after.Metadata.String("playtime_hours") != "12.5" {
		t.Fatalf("metadata not replaced: %#v", after.Metadata)
	}
}

func TestPrefixSearchFindsSequelSpelling(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	existing := testsupport.AddItem(t, st, catalog.CategoryGame, "Mass Effect II", "BioWare", catalog.SourceManual, "")

	res := r.ImportBatch(ctx, catalog.SourceSteam, []importer.Candidate{
		{Title: "Mass Effect 2", Creator: "BioWare", Category: catalog.CategoryGame, SourceID: "24980"},
	})
	if res.ItemsUpdated != 1 {
		t.Fatalf("expected prefix search to link, got %#v", res)
	}
	item, _ := st.FindBySourceLink(ctx, catalog.SourceSteam, "24980")
	if item == nil || item.ID != existing.ID {
		t.Fatalf("expected link to %s, got %#v", existing.ID, item)
	}
}

func TestFallbackScanFindsStrictMatch(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	existing := testsupport.AddItem(t, st, catalog.CategoryGame, "Half Life 2: Episode Two", "Valve", catalog.SourceManual, "")

	res := r.ImportBatch(ctx, catalog.SourceSteam, []importer.Candidate{
		{Title: "Half-Life 2: Episode Two", Creator: "Valve", Category: catalog.CategoryGame, SourceID: "420"},
	})
	if res.ItemsUpdated != 1 || res.ItemsAdded != 0 {
		t.Fatalf("expected fallback scan to link, got %#v", res)
	}
	item, _ := st.FindBySourceLink(ctx, catalog.SourceSteam, "420")
	if item == nil || item.ID != existing.ID {
		t.Fatalf("expected link to %s, got %#v", existing.ID, item)
	}
}

func TestFallbackScanSkippedWhenSearchReturnedRows(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	testsupport.AddItem(t, st, catalog.CategoryGame, "Half Life 2: Episode Two", "Valve", catalog.SourceManual, "")
	testsupport.AddItem(t, st, catalog.CategoryGame, "Half-Life: Alyx", "Valve", catalog.SourceManual, "")

	res := r.ImportBatch(ctx, catalog.SourceSteam, []importer.Candidate{
		{Title: "Half-Life 2: Episode Two", Creator: "Valve", Category: catalog.CategoryGame, SourceID: "420"},
	})
	if res.ItemsAdded != 1 {
		t.Fatalf("expected new item when search rows exist but fail matching, got %#v", res)
	}
	if got := countCategory(t, st, catalog.CategoryGame); got != 3 {
		t.Fatalf("expected 3 games, got %d", got)
	}
}

func TestImportBatchIsolatesItemErrors(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()

	res := r.ImportBatch(ctx, catalog.SourceNetflix, []importer.Candidate{
		{Title: "Arrival", Category: catalog.CategoryMovie},
		{Title: "   ", Category: catalog.CategoryMovie},
		{Title: "Mystery", Category: catalog.Category("hologram")},
		{Title: "Heat", Category: catalog.CategoryMovie},
	})
	if res.ItemsAdded != 2 {
		t.Fatalf("expected 2 added, got %#v", res)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[1], "Failed to import 'Mystery': ") {
		t.Fatalf("unexpected error text %q", res.Errors[1])
	}
	if got := countCategory(t, st, catalog.CategoryMovie); got != 2 {
		t.Fatalf("expected 2 movies, got %d", got)
	}
}

func TestImportParseFailure(t *testing.T) {
	r, st := newReconciler(t)
	parser := importer.ParserFunc(func(context.Context, string) ([]importer.Candidate, error) {
		return nil, errors.New("unexpected EOF")
	})

	res := r.Import(context.Background(), catalog.SourceGoodreads, parser, "export.csv")
	if res.ItemsAdded != 0 || res.ItemsUpdated != 0 {
		t.Fatalf("expected no changes, got %#v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Failed to parse file: unexpected EOF" {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	states, _ := st.SyncStates(context.Background())
	if len(states) != 0 {
		t.Fatalf("parse failure must not record sync, got %#v", states)
	}
}

func TestImportRecordsSyncAndRating(t *testing.T) {
	r, st := newReconciler(t)
	ctx := context.Background()
	parser := importer.ParserFunc(func(context.Context, string) ([]importer.Candidate, error) {
		return []importer.Candidate{
			{Title: "Arrival", Category: catalog.CategoryMovie, SourceID: "Arrival", Loved: catalog.Bool(true), Rating: catalog.Int(5)},
		}, nil
	})

	res := r.Import(ctx, catalog.SourceNetflix, parser, "ratings.html")
	if res.ItemsAdded != 1 {
		t.Fatalf("unexpected result %#v", res)
	}
	item, _ := st.FindBySourceLink(ctx, catalog.SourceNetflix, "Arrival")
	rating, err := st.Rating(ctx, item.ID)
	if err != nil || rating == nil || rating.Rating == nil || *rating.Rating != 5 || rating.Loved == nil || !*rating.Loved {
		t.Fatalf("expected rating 5 loved, got %#v %v", rating, err)
	}
	states, _ := st.SyncStates(ctx)
	if len(states) != 1 || states[0].Source != catalog.SourceNetflix {
		t.Fatalf("expected netflix sync, got %#v", states)
	}
}

// countingStore is an in-memory Store that reports a configurable category size.
type countingStore struct {
	categorySize  int
	items         []catalog.Item
	listCalls     int
	upsertedItems int
}

func (s *countingStore) FindBySourceLink(context.Context, catalog.Source, string) (*catalog.Item, error) {
	return nil, nil
}

func (s *countingStore) Search(context.Context, string, catalog.Category) ([]catalog.Item, error) {
	return nil, nil
}

func (s *countingStore) CountByCategory(context.Context, catalog.Category) (int, error) {
	return s.categorySize, nil
}

func (s *countingStore) ItemsByCategory(context.Context, catalog.Category) ([]catalog.Item, error) {
	s.listCalls++
	return s.items, nil
}

func (s *countingStore) UpsertItem(_ context.Context, item *catalog.Item) error {
	s.upsertedItems++
	if item.ID == "" {
		item.ID = "new"
	}
	return nil
}

func (s *countingStore) UpsertSourceLink(context.Context, *catalog.SourceLink) error { return nil }

func (s *countingStore) UpsertRating(context.Context, *catalog.Rating) error { return nil }

func (s *countingStore) RecordSync(context.Context, catalog.Source, time.Time) error { return nil }

func TestFallbackScanRespectsCeiling(t *testing.T) {
	twin := catalog.Item{ID: "twin", Category: catalog.CategoryGame, Title: "Half Life 2: Episode Two", Creator: "Valve"}
	candidate := importer.Candidate{Title: "Half-Life 2: Episode Two", Creator: "Valve", Category: catalog.CategoryGame, SourceID: "420"}

	tests := []struct {
		name      string
		size      int
		wantCalls int
		wantAdded int
	}{
		{"above ceiling skips scan", matching.DefaultFallbackScanCeiling + 1, 0, 1},
		{"at ceiling scans", matching.DefaultFallbackScanCeiling, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &countingStore{categorySize: tt.size, items: []catalog.Item{twin}}
			r := importer.NewReconciler(fake, matching.DefaultPolicy(), logging.NewNop())
			res := r.ImportBatch(context.Background(), catalog.SourceSteam, []importer.Candidate{candidate})
			if fake.listCalls != tt.wantCalls {
				t.Fatalf("ItemsByCategory called %d times, want %d", fake.listCalls, tt.wantCalls)
			}
			if res.ItemsAdded != tt.wantAdded {
				t.Fatalf("added = %d, want %d", res.ItemsAdded, tt.wantAdded)
			}
		})
	}
}
