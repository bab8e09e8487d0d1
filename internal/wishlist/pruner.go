package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"discovery/internal/catalog"
	"discovery/internal/logging"
	"discovery/internal/matching"
)

// ErrExists is returned when adding an entry that is already on the wishlist.
var ErrExists = errors.New("wishlist item already exists")

// Store is the catalog surface the wishlist needs.
type Store interface {
	Wishlist(ctx context.Context, category catalog.Category) ([]catalog.WishlistEntry, error)
	SearchWishlist(ctx context.Context, text string, category catalog.Category) ([]catalog.WishlistEntry, error)
	AddWishlistEntry(ctx context.Context, entry *catalog.WishlistEntry) error
	DeleteWishlistEntry(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, text string, category catalog.Category) ([]catalog.Item, error)
}

// Pruner adds wishlist entries and prunes the ones the catalog already holds.
type Pruner struct {
	store  Store
	policy matching.Policy
	logger *slog.Logger
}

// NewPruner creates a pruner using the lenient matching thresholds of policy.
func NewPruner(store Store, policy matching.Policy, logger *slog.Logger) *Pruner {
	return &Pruner{
		store:  store,
		policy: policy.Normalized(),
		logger: logging.NewComponentLogger(logger, "wishlist"),
	}
}

// Add stores entry unless an entry with the same title (case-insensitive) is
// already listed in its category. When both carry a creator they must also be
// equal for the existing entry to count.
func (p *Pruner) Add(ctx context.Context, entry *catalog.WishlistEntry) error {
	if entry == nil {
		return errors.New("wishlist entry is nil")
	}
	entry.Title = strings.TrimSpace(entry.Title)
	entry.Creator = strings.TrimSpace(entry.Creator)
	if entry.Title == "" {
		return errors.New("wishlist title is empty")
	}

	existing, err := p.store.SearchWishlist(ctx, entry.Title, entry.Category)
	if err != nil {
		return err
	}
	for _, candidate := range existing {
		if !strings.EqualFold(candidate.Title, entry.Title) {
			continue
		}
		if entry.Creator == "" || strings.EqualFold(entry.Creator, strings.TrimSpace(candidate.Creator)) {
			return fmt.Errorf("%w: %s", ErrExists, candidate.Title)
		}
	}
	return p.store.AddWishlistEntry(ctx, entry)
}

// Match returns the first catalog item in the entry's category whose title
// contains the entry title and passes the lenient title and creator matchers.
func (p *Pruner) Match(ctx context.Context, entry catalog.WishlistEntry) (*catalog.Item, error) {
	candidates, err := p.store.Search(ctx, entry.Title, entry.Category)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	for i := range candidates {
		if p.policy.SameItem(candidates[i].Title, candidates[i].Creator, entry.Title, entry.Creator) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// Prune removes every wishlist entry in category (all categories when empty)
// that the catalog now holds, returning the removed entries.
func (p *Pruner) Prune(ctx context.Context, category catalog.Category) ([]catalog.WishlistEntry, error) {
	entries, err := p.store.Wishlist(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}

	var removed []catalog.WishlistEntry
	for _, entry := range entries {
		match, err := p.Match(ctx, entry)
		if err != nil {
			return removed, err
		}
		if match == nil {
			continue
		}
		deleted, err := p.store.DeleteWishlistEntry(ctx, entry.ID)
		if err != nil {
			return removed, fmt.Errorf("delete wishlist entry: %w", err)
		}
		if !deleted {
			continue
		}
		p.logger.Info("wishlist entry pruned",
			logging.String(logging.FieldTitle, entry.Title),
			logging.String(logging.FieldCategory, string(entry.Category)),
			logging.String(logging.FieldItemID, match.ID),
		)
		removed = append(removed, entry)
	}
	return removed, nil
}

// PruneCategories runs Prune for each category in turn.
func (p *Pruner) PruneCategories(ctx context.Context, categories []catalog.Category) ([]catalog.WishlistEntry, error) {
	var removed []catalog.WishlistEntry
	for _, category := range categories {
		pruned, err := p.Prune(ctx, category)
		removed = append(removed, pruned...)
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}
