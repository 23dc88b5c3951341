// Package store persists enriched items. Items are keyed by their input
// hash, which makes re-submission of the same raw title idempotent.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// ErrNotFound is returned when a lookup matches no item.
var ErrNotFound = eris.New("item not found")

// ItemFilter specifies criteria for listing items.
type ItemFilter struct {
	Status model.ItemStatus `json:"status,omitempty"`
	Brand  string           `json:"brand,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// PutItem inserts the item, or replaces the stored record when one
	// with the same input hash already exists.
	PutItem(ctx context.Context, item *model.EnrichedItem) error
	// PutItems persists many items at once; feed imports use it to avoid
	// a round trip per row.
	PutItems(ctx context.Context, items []*model.EnrichedItem) error
	GetItem(ctx context.Context, id string) (*model.EnrichedItem, error)
	GetByInputHash(ctx context.Context, hash string) (*model.EnrichedItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*model.EnrichedItem, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
