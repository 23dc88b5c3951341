package gate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// Criteria filters a bulk evaluation run. Zero values disable a criterion.
type Criteria struct {
	MinScore                  float64               `json:"min_score"`
	RequiredConfidenceLevel   model.ConfidenceLevel `json:"required_confidence_level,omitempty"`
	RequireMarketVerification bool                  `json:"require_market_verification"`
	RequireMediaValidation    bool                  `json:"require_media_validation"`
	BrandFilters              []string              `json:"brand_filters,omitempty"`
}

// Rejection pairs a rejected item with its human-readable reasons.
type Rejection struct {
	ItemID  string   `json:"item_id"`
	Reasons []string `json:"reasons"`
}

// BulkSummary aggregates a bulk evaluation.
type BulkSummary struct {
	Total     int     `json:"total"`
	Approved  int     `json:"approved"`
	Rejected  int     `json:"rejected"`
	MeanScore float64 `json:"mean_score"`
}

// BulkDecision is the outcome of evaluating many items against one set of
// criteria.
type BulkDecision struct {
	Approved []string    `json:"approved"`
	Rejected []Rejection `json:"rejected"`
	Summary  BulkSummary `json:"summary"`
}

// levelRank orders confidence levels for threshold comparison.
func levelRank(l model.ConfidenceLevel) int {
	switch l {
	case model.ConfidenceHigh:
		return 3
	case model.ConfidenceMedium:
		return 2
	case model.ConfidenceLow:
		return 1
	}
	return 0
}

// EvaluateBulk applies criteria to already-gated items. Items without a
// readiness result are rejected outright. Like Evaluate, this is pure.
func EvaluateBulk(items []*model.EnrichedItem, criteria Criteria) BulkDecision {
	decision := BulkDecision{Summary: BulkSummary{Total: len(items)}}
	scoreSum := 0.0

	for _, it := range items {
		var reasons []string

		if it.Readiness == nil {
			reasons = append(reasons, "item has no readiness evaluation")
		} else {
			r := it.Readiness
			scoreSum += r.OverallScore

			if !r.IsReady {
				reasons = append(reasons, "readiness gate did not pass")
			}
			if r.OverallScore < criteria.MinScore {
				reasons = append(reasons, fmt.Sprintf("overall score %.2f below minimum %.2f", r.OverallScore, criteria.MinScore))
			}
			if criteria.RequiredConfidenceLevel != "" &&
				levelRank(r.ConfidenceLevel) < levelRank(criteria.RequiredConfidenceLevel) {
				reasons = append(reasons, fmt.Sprintf("confidence level %s below required %s", r.ConfidenceLevel, criteria.RequiredConfidenceLevel))
			}
			if criteria.RequireMarketVerification && !hasVerifiedEntity(it) {
				reasons = append(reasons, "no market-verified entity")
			}
			if criteria.RequireMediaValidation && r.ComponentScores["media"] <= 0 {
				reasons = append(reasons, "media validation did not pass")
			}
		}

		if len(criteria.BrandFilters) > 0 && !brandAllowed(it, criteria.BrandFilters) {
			reasons = append(reasons, "brand not in filter list")
		}

		if len(reasons) == 0 {
			decision.Approved = append(decision.Approved, it.ID)
		} else {
			decision.Rejected = append(decision.Rejected, Rejection{ItemID: it.ID, Reasons: reasons})
		}
	}

	decision.Summary.Approved = len(decision.Approved)
	decision.Summary.Rejected = len(decision.Rejected)
	if len(items) > 0 {
		decision.Summary.MeanScore = scoreSum / float64(len(items))
	}

	zap.L().Info("gate: bulk evaluation complete",
		zap.Int("total", decision.Summary.Total),
		zap.Int("approved", decision.Summary.Approved),
		zap.Int("rejected", decision.Summary.Rejected),
	)
	return decision
}

func hasVerifiedEntity(it *model.EnrichedItem) bool {
	for _, r := range it.EligibilityResults {
		if r.Bucket == model.BucketVerified {
			return true
		}
	}
	return false
}

func brandAllowed(it *model.EnrichedItem, filters []string) bool {
	brand := it.ResolvedFields["brand"]
	for _, f := range filters {
		if strings.EqualFold(f, brand) {
			return true
		}
	}
	return false
}
