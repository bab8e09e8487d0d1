package library_test

import (
	"context"
	"errors"
	"testing"

	"discovery/internal/catalog"
	"discovery/internal/config"
	"discovery/internal/importer"
	"discovery/internal/library"
	"discovery/internal/logging"
	"discovery/internal/store"
	"discovery/internal/testsupport"
)

func newLibrary(t *testing.T, opts ...testsupport.ConfigOption) (*library.Library, *store.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	return library.New(cfg, st, logging.NewNop()), st, cfg
}

func TestAddManualCreatesItemLinkAndRating(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()

	res, err := lib.AddManual(ctx, library.AddRequest{
		Category: catalog.CategoryMovie,
		Title:    "  Arrival ",
		Creator:  "Denis Villeneuve",
		Loved:    catalog.Bool(true),
		Rating:   catalog.Int(5),
		Notes:    "rewatch",
	}, false)
	if err != nil {
		t.Fatalf("AddManual: %v", err)
	}
	if res.Item == nil || res.Item.Title != "Arrival" {
		t.Fatalf("expected created item, got %+v", res)
	}

	links, err := st.SourceLinks(ctx, res.Item.ID)
	if err != nil {
		t.Fatalf("SourceLinks: %v", err)
	}
	if len(links) != 1 || links[0].Source != catalog.SourceManual || links[0].SourceID != res.Item.ID {
		t.Fatalf("expected manual link keyed by item id, got %+v", links)
	}
	rating, err := st.Rating(ctx, res.Item.ID)
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if rating == nil || rating.Loved == nil || !*rating.Loved || rating.Rating == nil || *rating.Rating != 5 || rating.Notes != "rewatch" {
		t.Fatalf("unexpected rating: %+v", rating)
	}
}

func TestAddManualWithoutOpinionSkipsRating(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()

	res, err := lib.AddManual(ctx, library.AddRequest{Category: catalog.CategoryBook, Title: "Piranesi", Creator: "Susanna Clarke"}, false)
	if err != nil {
		t.Fatalf("AddManual: %v", err)
	}
	rating, err := st.Rating(ctx, res.Item.ID)
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if rating != nil {
		t.Fatalf("expected no rating row, got %+v", rating)
	}
}

func TestAddManualRejectsExactDuplicate(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	testsupport.AddItem(t, st, catalog.CategoryBook, "Dune", "Frank Herbert", catalog.SourceGoodreads, "234225")

	tests := []struct {
		name    string
		creator string
		force   bool
	}{
		{name: "same creator", creator: "frank herbert"},
		{name: "no creator", creator: ""},
		{name: "forced", creator: "Frank Herbert", force: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lib.AddManual(ctx, library.AddRequest{Category: catalog.CategoryBook, Title: "DUNE", Creator: tc.creator}, tc.force)
			if !errors.Is(err, library.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
			if err.Error() != "item already exists: Dune" {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}

	count, err := st.CountByCategory(ctx, catalog.CategoryBook)
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no new rows, got %d books", count)
	}
}

func TestAddManualSuggestsNearMatches(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	existing := testsupport.AddItem(t, st, catalog.CategoryGame, "The Witcher 3: Wild Hunt", "CD Projekt Red", catalog.SourceSteam, "292030")
	testsupport.AddItem(t, st, catalog.CategoryGame, "Stardew Valley", "ConcernedApe", catalog.SourceSteam, "413150")

	res, err := lib.AddManual(ctx, library.AddRequest{Category: catalog.CategoryGame, Title: "Witcher 3 - Wild Hunt"}, false)
	if err != nil {
		t.Fatalf("AddManual: %v", err)
	}
	if res.Item != nil {
		t.Fatalf("expected suggestions instead of a new item, got %+v", res.Item)
	}
	if len(res.Suggestions) != 1 || res.Suggestions[0].Item.ID != existing.ID {
		t.Fatalf("unexpected suggestions: %+v", res.Suggestions)
	}

	forced, err := lib.AddManual(ctx, library.AddRequest{Category: catalog.CategoryGame, Title: "Witcher 3 - Wild Hunt"}, true)
	if err != nil {
		t.Fatalf("AddManual force: %v", err)
	}
	if forced.Item == nil || len(forced.Suggestions) != 0 {
		t.Fatalf("expected forced add, got %+v", forced)
	}
	count, err := st.CountByCategory(ctx, catalog.CategoryGame)
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 games after forced add, got %d", count)
	}
}

func TestSuggestRanksAndLimits(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	testsupport.AddItem(t, st, catalog.CategoryMusic, "Blue Train (Remastered)", "John Coltrane", catalog.SourceSpotify, "")
	exact := testsupport.AddItem(t, st, catalog.CategoryMusic, "Blue Train", "John Coltrane", catalog.SourceQobuz, "")
	testsupport.AddItem(t, st, catalog.CategoryMusic, "Giant Steps", "John Coltrane", catalog.SourceQobuz, "")

	suggestions, err := lib.Suggest(ctx, "Blue Train", "", catalog.CategoryMusic)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("expected both Blue Train entries, got %+v", suggestions)
	}
	if suggestions[0].Score < suggestions[1].Score {
		t.Fatalf("suggestions not ranked by score: %+v", suggestions)
	}
	if suggestions[0].Item.ID != exact.ID && suggestions[0].Score != suggestions[1].Score {
		t.Fatalf("expected exact title first, got %+v", suggestions[0])
	}

	none, err := lib.Suggest(ctx, "!!", "", catalog.CategoryMusic)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no suggestions for a short title, got %+v", none)
	}
}

func TestSuggestHonorsLimit(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	for _, title := range []string{"Halo", "Halo 2", "Halo 3", "Halo 4", "Halo 5", "Halo Infinite", "Halo Wars"} {
		testsupport.AddItem(t, st, catalog.CategoryGame, title, "343 Industries", catalog.SourceSteam, "")
	}
	suggestions, err := lib.Suggest(ctx, "Halo", "343 Industries", catalog.CategoryGame)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("expected suggestion limit of 5, got %d", len(suggestions))
	}
	if suggestions[0].Item.Title != "Halo" {
		t.Fatalf("expected exact title first, got %q", suggestions[0].Item.Title)
	}
}

func TestAddManualPrunesWishlist(t *testing.T) {
	lib, _, _ := newLibrary(t)
	ctx := context.Background()
	if err := lib.Wishlist().Add(ctx, &catalog.WishlistEntry{Category: catalog.CategoryGame, Title: "Hades"}); err != nil {
		t.Fatalf("wishlist Add: %v", err)
	}

	res, err := lib.AddManual(ctx, library.AddRequest{Category: catalog.CategoryGame, Title: "Hades", Creator: "Supergiant Games"}, false)
	if err != nil {
		t.Fatalf("AddManual: %v", err)
	}
	if len(res.Pruned) != 1 || res.Pruned[0].Title != "Hades" {
		t.Fatalf("expected wishlist entry pruned, got %+v", res.Pruned)
	}
}

func TestUpdateEditsItemAndRating(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	item := testsupport.AddItem(t, st, catalog.CategoryTV, "Severence", "", catalog.SourceAppleTV, "")

	title := "Severance"
	creator := "Dan Erickson"
	notes := "season two soon"
	updated, changed, err := lib.Update(ctx, item.ID, library.UpdateRequest{
		Title:    &title,
		Creator:  &creator,
		Metadata: catalog.Metadata{"network": "Apple TV+"},
		Loved:    catalog.Bool(true),
		Rating:   catalog.Int(4),
		Notes:    &notes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed || updated.Title != "Severance" || updated.Creator != "Dan Erickson" {
		t.Fatalf("unexpected update result: changed=%v item=%+v", changed, updated)
	}

	stored, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.Title != "Severance" || stored.Metadata.String("network") != "Apple TV+" {
		t.Fatalf("item not persisted: %+v", stored)
	}
	rating, err := st.Rating(ctx, item.ID)
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if rating == nil || rating.Loved == nil || !*rating.Loved || *rating.Rating != 4 || rating.Notes != notes {
		t.Fatalf("unexpected rating: %+v", rating)
	}

	_, changed, err = lib.Update(ctx, item.ID, library.UpdateRequest{ClearLoved: true})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if !changed {
		t.Fatal("expected clear to count as a change")
	}
	rating, err = st.Rating(ctx, item.ID)
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if rating.Loved != nil || rating.Rating == nil || *rating.Rating != 4 {
		t.Fatalf("expected loved cleared and stars kept, got %+v", rating)
	}
}

func TestUpdateNoChangesAndMissingItem(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	item := testsupport.AddItem(t, st, catalog.CategoryBook, "Dune", "Frank Herbert", catalog.SourceKindle, "")

	_, changed, err := lib.Update(ctx, item.ID, library.UpdateRequest{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed {
		t.Fatal("expected empty request to report no change")
	}

	if _, _, err := lib.Update(ctx, "missing", library.UpdateRequest{Rating: catalog.Int(3)}); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := lib.Update(ctx, item.ID, library.UpdateRequest{Rating: catalog.Int(6)}); err == nil {
		t.Fatal("expected out-of-range rating to fail")
	}
}

func TestSetLoved(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	item := testsupport.AddItem(t, st, catalog.CategoryPodcast, "Hardcore History", "Dan Carlin", catalog.SourceApplePodcasts, "")

	steps := []struct {
		loved *bool
		want  string
	}{
		{loved: catalog.Bool(true), want: "loved"},
		{loved: catalog.Bool(false), want: "disliked"},
		{loved: nil, want: ""},
	}
	for _, step := range steps {
		if err := lib.SetLoved(ctx, item.ID, step.loved); err != nil {
			t.Fatalf("SetLoved(%v): %v", step.loved, err)
		}
		rating, err := st.Rating(ctx, item.ID)
		if err != nil {
			t.Fatalf("Rating: %v", err)
		}
		if got := catalog.LovedLabel(rating.Loved); got != step.want {
			t.Fatalf("expected %q, got %q", step.want, got)
		}
	}

	if err := lib.SetLoved(ctx, "missing", catalog.Bool(true)); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	lib, st, _ := newLibrary(t)
	ctx := context.Background()
	alien := testsupport.AddItem(t, st, catalog.CategoryMovie, "Alien", "Ridley Scott", catalog.SourceNetflix, "")
	testsupport.AddItem(t, st, catalog.CategoryMovie, "Aliens", "James Cameron", catalog.SourceNetflix, "")
	testsupport.AddItem(t, st, catalog.CategoryMovie, "Alien 3", "David Fincher", catalog.SourceNetflix, "")
	blade := testsupport.AddItem(t, st, catalog.CategoryMovie, "Blade Runner", "Ridley Scott", catalog.SourceNetflix, "")

	got, _, err := lib.Resolve(ctx, blade.ID)
	if err != nil || got.ID != blade.ID {
		t.Fatalf("resolve by id: item=%+v err=%v", got, err)
	}
	got, _, err = lib.Resolve(ctx, "blade")
	if err != nil || got.ID != blade.ID {
		t.Fatalf("resolve unique search: item=%+v err=%v", got, err)
	}
	got, _, err = lib.Resolve(ctx, "alien")
	if err != nil || got.ID != alien.ID {
		t.Fatalf("resolve exact title: item=%+v err=%v", got, err)
	}
	_, matches, err := lib.Resolve(ctx, "ridley")
	if !errors.Is(err, library.ErrAmbiguous) || len(matches) != 2 {
		t.Fatalf("expected ambiguity with 2 matches, got %d, %v", len(matches), err)
	}
	if _, _, err := lib.Resolve(ctx, "zardoz"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImportBacksUpAndPrunes(t *testing.T) {
	lib, _, _ := newLibrary(t, testsupport.WithAutoBackup(true))
	ctx := context.Background()
	if err := lib.Wishlist().Add(ctx, &catalog.WishlistEntry{Category: catalog.CategoryGame, Title: "Celeste"}); err != nil {
		t.Fatalf("wishlist Add: %v", err)
	}
	if err := lib.Wishlist().Add(ctx, &catalog.WishlistEntry{Category: catalog.CategoryBook, Title: "Celeste"}); err != nil {
		t.Fatalf("wishlist Add: %v", err)
	}

	parser := importer.ParserFunc(func(context.Context, string) ([]importer.Candidate, error) {
		return []importer.Candidate{
			{Title: "Celeste", Creator: "Maddy Makes Games", Category: catalog.CategoryGame, SourceID: "504230"},
			{Title: "Hollow Knight", Creator: "Team Cherry", Category: catalog.CategoryGame, SourceID: "367520"},
		}, nil
	})
	report, err := lib.Import(ctx, catalog.SourceSteam, parser, "ignored.json")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.ItemsAdded != 2 || len(report.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", report.Result)
	}
	if report.Backup == nil || report.Backup.Reason != "pre_import_steam" {
		t.Fatalf("expected pre-import backup, got %+v", report.Backup)
	}
	if len(report.Pruned) != 1 || report.Pruned[0].Category != catalog.CategoryGame {
		t.Fatalf("expected only the game wishlist entry pruned, got %+v", report.Pruned)
	}

	backups, err := lib.Backups().List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup on disk, got %d", len(backups))
	}
}

func TestImportWithoutAutoBackup(t *testing.T) {
	lib, _, _ := newLibrary(t)
	parser := importer.ParserFunc(func(context.Context, string) ([]importer.Candidate, error) {
		return nil, errors.New("bad header")
	})
	report, err := lib.Import(context.Background(), catalog.SourceGoodreads, parser, "books.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Backup != nil {
		t.Fatalf("expected no backup, got %+v", report.Backup)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Failed to parse file: bad header" {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
}
