package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

var webhookClient = &http.Client{Timeout: 15 * time.Second}

// reviewPayload is the webhook body the review queue consumes.
type reviewPayload struct {
	ItemID         string            `json:"item_id"`
	InputRaw       string            `json:"input_raw"`
	Status         string            `json:"status"`
	ReadinessScore float64           `json:"readiness_score"`
	BlockingIssues []string          `json:"blocking_issues,omitempty"`
	ConflictFields []string          `json:"conflict_fields,omitempty"`
	ResolvedFields map[string]string `json:"resolved_fields,omitempty"`
}

// notifyReview posts a needs_review item to the configured review queue
// webhook. Delivery is best-effort: a failed post is logged, never fatal,
// since the item is already persisted with its status.
func (p *Pipeline) notifyReview(ctx context.Context, item *model.EnrichedItem) {
	if p.cfg.Review.WebhookURL == "" {
		return
	}

	payload := reviewPayload{
		ItemID:         item.ID,
		InputRaw:       item.InputRaw,
		Status:         string(item.Status),
		ResolvedFields: item.ResolvedFields,
	}
	if item.Readiness != nil {
		payload.ReadinessScore = item.Readiness.OverallScore
		payload.BlockingIssues = item.Readiness.BlockingIssues
	}
	for field, ev := range item.EvidenceLedger {
		if ev.IsConflict {
			payload.ConflictFields = append(payload.ConflictFields, field)
		}
	}

	if err := postReview(ctx, p.cfg.Review.WebhookURL, payload); err != nil {
		zap.L().Warn("pipeline: review webhook delivery failed",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		item.Audit("review_notify_failed", "", "", err.Error(), "review_webhook")
		return
	}
	item.Audit("review_notified", "", "", p.cfg.Review.WebhookURL, "review_webhook")
}

func postReview(ctx context.Context, url string, payload reviewPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "marshal review payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "create review request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := webhookClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "send review request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("review webhook returned status %d", resp.StatusCode)
	}
	return nil
}
