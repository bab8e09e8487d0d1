package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"discovery/internal/backup"
	"discovery/internal/catalog"
	"discovery/internal/config"
	"discovery/internal/importer"
	"discovery/internal/logging"
	"discovery/internal/matching"
	"discovery/internal/store"
	"discovery/internal/wishlist"
)

var (
	// ErrDuplicate is returned when a manual addition names an item that is
	// already cataloged.
	ErrDuplicate = errors.New("item already exists")
	// ErrNotFound is returned when no item matches a lookup.
	ErrNotFound = errors.New("item not found")
	// ErrAmbiguous is returned when a lookup matches more than one item.
	ErrAmbiguous = errors.New("multiple items match")
)

// Library runs catalog operations against one open store.
type Library struct {
	store           *store.Store
	policy          matching.Policy
	reconciler      *importer.Reconciler
	pruner          *wishlist.Pruner
	backups         *backup.Manager
	autoBackup      bool
	suggestionLimit int
	logger          *slog.Logger
}

// New wires a library from configuration.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	policy := cfg.MatchingPolicy()
	limit := cfg.Matching.SuggestionLimit
	if limit <= 0 {
		limit = 5
	}
	return &Library{
		store:           st,
		policy:          policy,
		reconciler:      importer.NewReconciler(st, policy, logger),
		pruner:          wishlist.NewPruner(st, policy, logger),
		backups:         backup.NewManager(cfg, logger),
		autoBackup:      cfg.Backups.AutoBackup,
		suggestionLimit: limit,
		logger:          logging.NewComponentLogger(logger, "library"),
	}
}

// Store exposes the underlying catalog store for read-only views.
func (l *Library) Store() *store.Store { return l.store }

// Wishlist returns the wishlist pruner bound to this library's store.
func (l *Library) Wishlist() *wishlist.Pruner { return l.pruner }

// Backups returns the backup manager for this library's database.
func (l *Library) Backups() *backup.Manager { return l.backups }

// Resolve finds the single item identified by query: an item id, or text that
// matches exactly one item's title or creator. When several items match and
// exactly one has the query as its full title, that item wins. ErrAmbiguous is
// returned with the matches otherwise.
func (l *Library) Resolve(ctx context.Context, query string) (*catalog.Item, []catalog.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	item, err := l.store.GetItem(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if item != nil {
		return item, nil, nil
	}

	matches, err := l.store.Search(ctx, query, "")
	if err != nil {
		return nil, nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil, fmt.Errorf("%w: no items found matching '%s'", ErrNotFound, query)
	case 1:
		return &matches[0], nil, nil
	}

	var exact []int
	for i := range matches {
		if strings.EqualFold(strings.TrimSpace(matches[i].Title), query) {
			exact = append(exact, i)
		}
	}
	if len(exact) == 1 {
		return &matches[exact[0]], nil, nil
	}
	return nil, matches, fmt.Errorf("%w '%s'", ErrAmbiguous, query)
}
