package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"discovery/internal/catalog"
	"discovery/internal/importer"
	"discovery/internal/logging"
	"discovery/internal/matching"
	"discovery/internal/textutil"
)

// suggestionScanBelow is the search hit count under which the whole category
// is also considered for suggestions.
const suggestionScanBelow = 10

// AddRequest describes a manual catalog addition.
type AddRequest struct {
	Category catalog.Category
	Title    string
	Creator  string
	Metadata catalog.Metadata
	Loved    *bool
	Rating   *int
	Notes    string
}

// Suggestion is an existing item that resembles a requested addition.
type Suggestion struct {
	Item  catalog.Item
	Score float64
}

// AddResult reports what AddManual did. Item is nil when suggestions were
// returned instead of creating anything.
type AddResult struct {
	Item        *catalog.Item
	Suggestions []Suggestion
	Pruned      []catalog.WishlistEntry
}

// AddManual records an item the user reports directly. An exact title and
// creator match fails with ErrDuplicate. Unless force is set, near matches are
// returned as suggestions without writing anything.
func (l *Library) AddManual(ctx context.Context, req AddRequest, force bool) (AddResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Creator = strings.TrimSpace(req.Creator)
	if req.Title == "" {
		return AddResult{}, errors.New("title is required")
	}
	if _, err := catalog.ParseCategory(string(req.Category)); err != nil {
		return AddResult{}, err
	}
	if req.Rating != nil && !catalog.ValidRating(*req.Rating) {
		return AddResult{}, fmt.Errorf("rating %d out of range 1-5", *req.Rating)
	}

	existing, err := l.store.FindExact(ctx, req.Title, req.Creator, req.Category)
	if err != nil {
		return AddResult{}, err
	}
	if existing != nil {
		return AddResult{}, fmt.Errorf("%w: %s", ErrDuplicate, existing.Title)
	}
	if !force {
		suggestions, err := l.Suggest(ctx, req.Title, req.Creator, req.Category)
		if err != nil {
			return AddResult{}, err
		}
		if len(suggestions) > 0 {
			return AddResult{Suggestions: suggestions}, nil
		}
	}

	item := &catalog.Item{
		Category: req.Category,
		Title:    req.Title,
		Creator:  req.Creator,
		Metadata: req.Metadata,
	}
	if err := l.store.UpsertItem(ctx, item); err != nil {
		return AddResult{}, err
	}
	if err := l.store.UpsertSourceLink(ctx, &catalog.SourceLink{
		ItemID:   item.ID,
		Source:   catalog.SourceManual,
		SourceID: item.ID,
	}); err != nil {
		return AddResult{}, err
	}
	if req.Loved != nil || req.Rating != nil || req.Notes != "" {
		if err := l.store.UpsertRating(ctx, &catalog.Rating{
			ItemID: item.ID,
			Loved:  req.Loved,
			Rating: req.Rating,
			Notes:  req.Notes,
		}); err != nil {
			return AddResult{}, err
		}
	}
	l.logger.Info("item added",
		logging.String(logging.FieldItemID, item.ID),
		logging.String(logging.FieldCategory, string(item.Category)),
		logging.String(logging.FieldTitle, item.Title),
	)

	pruned, err := l.pruner.Prune(ctx, item.Category)
	if err != nil {
		logging.WarnWithContext(l.logger, "wishlist prune failed after add", "wishlist_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "wishlist may list items already owned"),
		)
	}
	return AddResult{Item: item, Pruned: pruned}, nil
}

// Suggest returns existing items in category that resemble title, best first.
// Titles that normalize to fewer than three characters get no suggestions.
func (l *Library) Suggest(ctx context.Context, title, creator string, category catalog.Category) ([]Suggestion, error) {
	normalized := textutil.NormalizeTitle(title)
	if utf8.RuneCountInString(normalized) < 3 {
		return nil, nil
	}

	candidates, err := l.store.Search(ctx, importer.SearchPrefix(title), category)
	if err != nil {
		return nil, fmt.Errorf("search suggestions: %w", err)
	}
	if len(candidates) < suggestionScanBelow {
		all, err := l.store.ItemsByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("scan suggestions: %w", err)
		}
		seen := make(map[string]struct{}, len(candidates))
		for _, item := range candidates {
			seen[item.ID] = struct{}{}
		}
		for _, item := range all {
			if _, ok := seen[item.ID]; !ok {
				candidates = append(candidates, item)
			}
		}
	}

	target := textutil.NewFingerprint(normalized)
	type ranked struct {
		Suggestion
		cosine float64
	}
	var similar []ranked
	for _, item := range candidates {
		if !l.suggestable(item, title, creator) {
			continue
		}
		similar = append(similar, ranked{
			Suggestion: Suggestion{Item: item, Score: matching.TitleScore(item.Title, title)},
			cosine:     textutil.CosineSimilarity(target, textutil.NewFingerprint(textutil.NormalizeTitle(item.Title))),
		})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].cosine > similar[j].cosine
	})
	if len(similar) > l.suggestionLimit {
		similar = similar[:l.suggestionLimit]
	}

	out := make([]Suggestion, 0, len(similar))
	for _, s := range similar {
		out = append(out, s.Suggestion)
	}
	return out, nil
}

func (l *Library) suggestable(item catalog.Item, title, creator string) bool {
	if matching.TitlesMatch(item.Title, title, l.policy.SuggestTitleThreshold) {
		return true
	}
	if creator == "" || item.Creator == "" {
		return false
	}
	return matching.CreatorsMatch(creator, item.Creator, l.policy.StrictCreatorThreshold) &&
		matching.TitlesMatch(item.Title, title, l.policy.SuggestLooseThreshold)
}
