package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"discovery/internal/catalog"
	"discovery/internal/logging"
	"discovery/internal/matching"
)

// Store is the catalog surface the reconciler reads and writes.
type Store interface {
	FindBySourceLink(ctx context.Context, source catalog.Source, sourceID string) (*catalog.Item, error)
	Search(ctx context.Context, text string, category catalog.Category) ([]catalog.Item, error)
	CountByCategory(ctx context.Context, category catalog.Category) (int, error)
	ItemsByCategory(ctx context.Context, category catalog.Category) ([]catalog.Item, error)
	UpsertItem(ctx context.Context, item *catalog.Item) error
	UpsertSourceLink(ctx context.Context, link *catalog.SourceLink) error
	UpsertRating(ctx context.Context, rating *catalog.Rating) error
	RecordSync(ctx context.Context, source catalog.Source, at time.Time) error
}

// Outcome is the result of reconciling one candidate.
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeUpdated Outcome = "updated"
)

// Decision results logged with decision_type=reconcile.
const (
	decisionSourceIdentity  = "source_identity"
	decisionDuplicateSearch = "duplicate_search"
	decisionPrefixSearch    = "prefix_search"
	decisionFallbackScan    = "fallback_scan"
	decisionNewItem         = "new_item"
)

// prefixLength bounds the search prefix for single-word titles.
const prefixLength = 5

// Reconciler links candidates to catalog items.
type Reconciler struct {
	store  Store
	policy matching.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler using policy thresholds.
func NewReconciler(store Store, policy matching.Policy, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		policy: policy.Normalized(),
		logger: logging.NewComponentLogger(logger, "reconciler"),
		now:    time.Now,
	}
}

// Import parses path and reconciles every candidate. A parse failure yields a
// result with zero changes and a single error.
func (r *Reconciler) Import(ctx context.Context, source catalog.Source, parser Parser, path string) Result {
	ctx = logging.WithSource(ctx, string(source))
	logger := logging.WithContext(ctx, r.logger)

	candidates, err := parser.Parse(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "import parse failed", "import_parse_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the export format with 'discovery sources'"),
			logging.String(logging.FieldImpact, "no items were imported"),
		)
		return Result{Source: source, Errors: []string{fmt.Sprintf("Failed to parse file: %v", err)}}
	}
	logger.Info("parsed export", logging.String("path", path), logging.Int("candidates", len(candidates)))
	return r.ImportBatch(ctx, source, candidates)
}

// ImportBatch reconciles candidates in order and records the sync time.
func (r *Reconciler) ImportBatch(ctx context.Context, source catalog.Source, candidates []Candidate) Result {
	ctx = logging.WithSource(ctx, string(source))
	logger := logging.WithContext(ctx, r.logger)
	result := Result{Source: source}
	started := time.Now()

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Import cancelled: %v", err))
			break
		}
		outcome, err := r.reconcile(ctx, source, candidate)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to import '%s': %v", candidate.Title, err))
			logging.WarnWithContext(logger, "candidate import failed", "candidate_failed",
				logging.String(logging.FieldTitle, candidate.Title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "item skipped; remaining items continue"),
			)
			continue
		}
		result.touch(candidate.Category)
		switch outcome {
		case OutcomeAdded:
			result.ItemsAdded++
		case OutcomeUpdated:
			result.ItemsUpdated++
		}
	}

	if err := r.store.RecordSync(ctx, source, r.now()); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to record sync: %v", err))
	}

	logger.Info("import finished",
		logging.Int("added", result.ItemsAdded),
		logging.Int("updated", result.ItemsUpdated),
		logging.Int("errors", len(result.Errors)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result
}

func (r *Reconciler) reconcile(ctx context.Context, source catalog.Source, c Candidate) (Outcome, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return "", errors.New("title is empty")
	}
	if _, err := catalog.ParseCategory(string(c.Category)); err != nil {
		return "", err
	}
	c.Title = title
	c.Creator = strings.TrimSpace(c.Creator)
	if strings.TrimSpace(c.SourceID) == "" {
		c.SourceID = SourceKey(c.Creator, c.Title)
	}

	logger := r.logger.With(
		logging.String(logging.FieldCategory, string(c.Category)),
		logging.String(logging.FieldTitle, c.Title),
	)

	existing, err := r.store.FindBySourceLink(ctx, source, c.SourceID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		item := &catalog.Item{
			ID:        existing.ID,
			Category:  existing.Category,
			Title:     c.Title,
			Creator:   c.Creator,
			Metadata:  c.Metadata,
			CreatedAt: existing.CreatedAt,
		}
		if err := r.store.UpsertItem(ctx, item); err != nil {
			return "", err
		}
		if err := r.link(ctx, source, item.ID, c); err != nil {
			return "", err
		}
		r.logDecision(logger, decisionSourceIdentity, item.ID)
		return OutcomeUpdated, nil
	}

	match, decision, err := r.findDuplicate(ctx, c)
	if err != nil {
		return "", err
	}
	if match != nil {
		if err := r.link(ctx, source, match.ID, c); err != nil {
			return "", err
		}
		r.logDecision(logger, decision, match.ID)
		return OutcomeUpdated, nil
	}

	item := &catalog.Item{
		Category: c.Category,
		Title:    c.Title,
		Creator:  c.Creator,
		Metadata: c.Metadata,
	}
	if err := r.store.UpsertItem(ctx, item); err != nil {
		return "", err
	}
	if err := r.link(ctx, source, item.ID, c); err != nil {
		return "", err
	}
	r.logDecision(logger, decisionNewItem, item.ID)
	return OutcomeAdded, nil
}

// findDuplicate searches for an existing item from another source. The
// category scan only runs when neither search returned any rows at all; rows
// that were returned but rejected by the matchers do not trigger it.
func (r *Reconciler) findDuplicate(ctx context.Context, c Candidate) (*catalog.Item, string, error) {
	matches, err := r.store.Search(ctx, c.Title, c.Category)
	if err != nil {
		return nil, "", fmt.Errorf("search title: %w", err)
	}
	if match := r.firstSameItem(matches, c); match != nil {
		return match, decisionDuplicateSearch, nil
	}

	var prefixMatches []catalog.Item
	if prefix := SearchPrefix(c.Title); prefix != "" && prefix != c.Title {
		prefixMatches, err = r.store.Search(ctx, prefix, c.Category)
		if err != nil {
			return nil, "", fmt.Errorf("search prefix: %w", err)
		}
		if match := r.firstSameItem(prefixMatches, c); match != nil {
			return match, decisionPrefixSearch, nil
		}
	}

	if len(matches) > 0 || len(prefixMatches) > 0 {
		return nil, "", nil
	}

	match, err := r.fallbackScan(ctx, c)
	if err != nil {
		return nil, "", err
	}
	if match != nil {
		return match, decisionFallbackScan, nil
	}
	return nil, "", nil
}

func (r *Reconciler) firstSameItem(items []catalog.Item, c Candidate) *catalog.Item {
	for i := range items {
		if r.policy.SameItem(items[i].Title, items[i].Creator, c.Title, c.Creator) {
			return &items[i]
		}
	}
	return nil
}

func (r *Reconciler) fallbackScan(ctx context.Context, c Candidate) (*catalog.Item, error) {
	count, err := r.store.CountByCategory(ctx, c.Category)
	if err != nil {
		return nil, fmt.Errorf("count category: %w", err)
	}
	if count > r.policy.FallbackScanCeiling {
		r.logger.Debug("category scan skipped",
			logging.String(logging.FieldCategory, string(c.Category)),
			logging.Int("items", count),
			logging.Int("ceiling", r.policy.FallbackScanCeiling),
		)
		return nil, nil
	}
	if count == 0 {
		return nil, nil
	}

	items, err := r.store.ItemsByCategory(ctx, c.Category)
	if err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}
	for i := range items {
		if r.policy.StrictDuplicate(items[i].Title, items[i].Creator, c.Title, c.Creator) {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (r *Reconciler) link(ctx context.Context, source catalog.Source, itemID string, c Candidate) error {
	if err := r.store.UpsertSourceLink(ctx, &catalog.SourceLink{
		ItemID:     itemID,
		Source:     source,
		SourceID:   c.SourceID,
		Loved:      c.Loved,
		Data:       c.SourceData,
		LastSynced: r.now(),
	}); err != nil {
		return err
	}
	if c.Rating == nil {
		return nil
	}
	return r.store.UpsertRating(ctx, &catalog.Rating{
		ItemID:  itemID,
		Loved:   c.Loved,
		Rating:  c.Rating,
		RatedAt: c.RatedAt,
	})
}

func (r *Reconciler) logDecision(logger *slog.Logger, result, itemID string) {
	attrs := logging.DecisionAttrs("reconcile", result, decisionReason(result))
	attrs = append(attrs, logging.String(logging.FieldItemID, itemID))
	logger.Debug("candidate reconciled", logging.Args(attrs...)...)
}

func decisionReason(result string) string {
	switch result {
	case decisionSourceIdentity:
		return "source already reported this id"
	case decisionDuplicateSearch:
		return "title search found a matching item"
	case decisionPrefixSearch:
		return "title prefix search found a matching item"
	case decisionFallbackScan:
		return "strict category scan found a matching item"
	default:
		return "no existing item matched"
	}
}

// SearchPrefix returns the first word of title, or its first five characters
// when it has no spaces.
func SearchPrefix(title string) string {
	title = strings.TrimSpace(title)
	if fields := strings.Fields(title); len(fields) > 1 {
		return fields[0]
	}
	if utf8.RuneCountInString(title) <= prefixLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:prefixLength])
}
