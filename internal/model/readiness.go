package model

// ConfidenceLevel buckets an overall readiness score for human consumption.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// MediaCheck is one pass/fail validation result from the external media
// validation collaborator.
type MediaCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// ReadinessResult is the publish/no-publish decision for one item.
// Identical inputs always produce an identical result.
type ReadinessResult struct {
	OverallScore    float64            `json:"overall_score"`
	IsReady         bool               `json:"is_ready"`
	ComponentScores map[string]float64 `json:"component_scores"`
	BlockingIssues  []string           `json:"blocking_issues"`
	Recommendations []string           `json:"recommendations"`
	ConfidenceLevel ConfidenceLevel    `json:"confidence_level"`
}
