package testsupport

import (
	"context"
	"testing"

	"discovery/internal/catalog"
	"discovery/internal/config"
	"discovery/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// AddItem inserts an item linked to source for tests and returns it.
func AddItem(t testing.TB, st *store.Store, category catalog.Category, title, creator string, source catalog.Source, sourceID string) *catalog.Item {
	t.Helper()

	ctx := context.Background()
	item := &catalog.Item{Category: category, Title: title, Creator: creator}
	if err := st.UpsertItem(ctx, item); err != nil {
		t.Fatalf("store.UpsertItem: %v", err)
	}
	if sourceID == "" {
		sourceID = item.ID
	}
	if err := st.UpsertSourceLink(ctx, &catalog.SourceLink{ItemID: item.ID, Source: source, SourceID: sourceID}); err != nil {
		t.Fatalf("store.UpsertSourceLink: %v", err)
	}
	return item
}
