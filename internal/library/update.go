package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"discovery/internal/catalog"
	"discovery/internal/logging"
)

// UpdateRequest lists the edits to apply to an item. Nil fields are left
// unchanged. An empty Creator clears the creator.
type UpdateRequest struct {
	Title    *string
	Creator  *string
	Metadata catalog.Metadata
	Loved    *bool
	// ClearLoved removes the loved/disliked flag. It wins over Loved.
	ClearLoved bool
	Rating     *int
	Notes      *string
}

func (r UpdateRequest) touchesItem() bool {
	return r.Title != nil || r.Creator != nil || r.Metadata != nil
}

func (r UpdateRequest) touchesRating() bool {
	return r.Loved != nil || r.ClearLoved || r.Rating != nil || r.Notes != nil
}

// Update applies req to the item with id and returns the updated item. The
// returned bool is false when req carried no edits.
func (l *Library) Update(ctx context.Context, id string, req UpdateRequest) (*catalog.Item, bool, error) {
	item, err := l.store.GetItem(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !req.touchesItem() && !req.touchesRating() {
		return item, false, nil
	}
	if req.Rating != nil && !catalog.ValidRating(*req.Rating) {
		return nil, false, fmt.Errorf("rating %d out of range 1-5", *req.Rating)
	}

	if req.touchesItem() {
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return nil, false, errors.New("title cannot be empty")
			}
			item.Title = title
		}
		if req.Creator != nil {
			item.Creator = strings.TrimSpace(*req.Creator)
		}
		if req.Metadata != nil {
			if item.Metadata == nil {
				item.Metadata = catalog.Metadata{}
			}
			for key, value := range req.Metadata {
				item.Metadata[key] = value
			}
		}
		if err := l.store.UpsertItem(ctx, item); err != nil {
			return nil, false, err
		}
	}

	if req.touchesRating() {
		rating := &catalog.Rating{ItemID: item.ID, Rating: req.Rating}
		if !req.ClearLoved {
			rating.Loved = req.Loved
		}
		if req.Notes != nil {
			rating.Notes = strings.TrimSpace(*req.Notes)
		}
		if err := l.store.UpsertRating(ctx, rating); err != nil {
			return nil, false, err
		}
		if req.ClearLoved {
			if err := l.SetLoved(ctx, item.ID, nil); err != nil {
				return nil, false, err
			}
		}
	}

	l.logger.Info("item updated",
		logging.String(logging.FieldItemID, item.ID),
		logging.String(logging.FieldTitle, item.Title),
	)
	return item, true, nil
}

// SetLoved marks an item loved (true), disliked (false), or neither (nil).
// Stars and notes are kept.
func (l *Library) SetLoved(ctx context.Context, id string, loved *bool) error {
	item, err := l.store.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if loved == nil {
		return l.store.ClearLoved(ctx, id)
	}
	return l.store.UpsertRating(ctx, &catalog.Rating{ItemID: id, Loved: loved})
}
