package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-enrich/internal/model"
)

func bulkItem(id, brand string, score float64, ready bool, level model.ConfidenceLevel) *model.EnrichedItem {
	it := model.NewEnrichedItem(id, "raw "+id)
	it.ResolvedFields["brand"] = brand
	it.EligibilityResults = []model.EligibilityResult{
		{Entity: "device", Bucket: model.BucketVerified},
	}
	it.Readiness = &model.ReadinessResult{
		OverallScore:    score,
		IsReady:         ready,
		ConfidenceLevel: level,
		ComponentScores: map[string]float64{"media": 1.0},
	}
	return it
}

func TestEvaluateBulk_ApprovesAndRejects(t *testing.T) {
	items := []*model.EnrichedItem{
		bulkItem("a", "HP", 0.9, true, model.ConfidenceHigh),
		bulkItem("b", "Canon", 0.5, false, model.ConfidenceLow),
	}

	d := EvaluateBulk(items, Criteria{MinScore: 0.7})

	assert.Equal(t, []string{"a"}, d.Approved)
	require.Len(t, d.Rejected, 1)
	assert.Equal(t, "b", d.Rejected[0].ItemID)
	assert.NotEmpty(t, d.Rejected[0].Reasons)
	assert.Equal(t, 2, d.Summary.Total)
	assert.InDelta(t, 0.7, d.Summary.MeanScore, 0.001)
}

func TestEvaluateBulk_ConfidenceLevelCriterion(t *testing.T) {
	items := []*model.EnrichedItem{
		bulkItem("a", "HP", 0.9, true, model.ConfidenceMedium),
	}

	d := EvaluateBulk(items, Criteria{RequiredConfidenceLevel: model.ConfidenceHigh})
	assert.Empty(t, d.Approved)
	require.Len(t, d.Rejected, 1)
}

func TestEvaluateBulk_BrandFilter(t *testing.T) {
	items := []*model.EnrichedItem{
		bulkItem("a", "HP", 0.9, true, model.ConfidenceHigh),
		bulkItem("b", "Canon", 0.9, true, model.ConfidenceHigh),
	}

	d := EvaluateBulk(items, Criteria{BrandFilters: []string{"hp"}})
	assert.Equal(t, []string{"a"}, d.Approved)
}

func TestEvaluateBulk_MarketVerificationCriterion(t *testing.T) {
	it := bulkItem("a", "HP", 0.9, true, model.ConfidenceHigh)
	it.EligibilityResults = []model.EligibilityResult{
		{Entity: "device", Bucket: model.BucketUnknown},
	}

	d := EvaluateBulk([]*model.EnrichedItem{it}, Criteria{RequireMarketVerification: true})
	assert.Empty(t, d.Approved)
}

func TestEvaluateBulk_NoReadinessRejected(t *testing.T) {
	it := model.NewEnrichedItem("a", "raw")

	d := EvaluateBulk([]*model.EnrichedItem{it}, Criteria{})
	require.Len(t, d.Rejected, 1)
	assert.Contains(t, d.Rejected[0].Reasons[0], "no readiness evaluation")
}

func TestEvaluateBulk_EmptyInput(t *testing.T) {
	d := EvaluateBulk(nil, Criteria{})
	assert.Zero(t, d.Summary.Total)
	assert.Zero(t, d.Summary.MeanScore)
}
