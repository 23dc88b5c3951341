package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// BatchResult summarizes one RunBatch invocation.
type BatchResult struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Review  int `json:"needs_review"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`

	Items []*model.EnrichedItem `json:"-"`
}

// RunBatch enriches items concurrently, bounded by the configured
// concurrency. A single item erroring (storage failure, cancellation)
// does not stop the rest; per-item timeouts keep one stuck collaborator
// from holding the whole batch.
func (p *Pipeline) RunBatch(ctx context.Context, items []Item) (*BatchResult, error) {
	concurrency := p.cfg.Enrich.MaxConcurrentItems
	if concurrency <= 0 {
		concurrency = 5
	}
	itemTimeout := time.Duration(p.cfg.Enrich.ItemTimeoutSecs) * time.Second
	if itemTimeout <= 0 {
		itemTimeout = 2 * time.Minute
	}

	result := &BatchResult{
		Total: len(items),
		Items: make([]*model.EnrichedItem, len(items)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	errored := make([]bool, len(items))

	for i, in := range items {
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(gctx, itemTimeout)
			defer cancel()

			item, err := p.Run(itemCtx, in)
			if err != nil {
				zap.L().Error("batch: item errored",
					zap.Int("index", i),
					zap.String("raw_title", in.RawTitle),
					zap.Error(err),
				)
				errored[i] = true
				return nil
			}
			result.Items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, item := range result.Items {
		if errored[i] {
			result.Errored++
			continue
		}
		if item == nil {
			continue
		}
		switch item.Status {
		case model.StatusOK:
			result.OK++
		case model.StatusNeedsReview:
			result.Review++
		case model.StatusFailed:
			result.Failed++
		}
	}

	zap.L().Info("batch: complete",
		zap.Int("total", result.Total),
		zap.Int("ok", result.OK),
		zap.Int("needs_review", result.Review),
		zap.Int("failed", result.Failed),
		zap.Int("errored", result.Errored),
	)
	return result, nil
}
