package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// ErrNotTerminal rejects approval of an item still in flight.
var ErrNotTerminal = eris.New("pipeline: item has not reached a terminal status")

// Approve marks a finished item as reviewed and approved. Approval is
// idempotent and freezes the record: no status transition or re-run will
// mutate it afterwards.
func (p *Pipeline) Approve(ctx context.Context, id string) (*model.EnrichedItem, error) {
	item, err := p.store.GetItem(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: load item %s for approval", id)
	}
	if item.Frozen() {
		return item, nil
	}
	if !item.Status.Terminal() {
		return nil, eris.Wrapf(ErrNotTerminal, "item %s is %s", id, item.Status)
	}

	now := time.Now().UTC()
	item.ApprovedAt = &now
	item.Audit("approved", "", string(item.Status), string(model.StatusOK), "reviewer")
	item.Status = model.StatusOK

	if err := p.store.PutItem(ctx, item); err != nil {
		return nil, eris.Wrapf(err, "pipeline: save approved item %s", id)
	}
	zap.L().Info("pipeline: item approved", zap.String("item_id", id))
	return item, nil
}
