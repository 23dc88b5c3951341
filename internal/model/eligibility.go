package model

// EligibilityBucket classifies a referenced entity by corroboration level.
// The three buckets partition the entity set exactly.
type EligibilityBucket string

const (
	BucketVerified EligibilityBucket = "verified"
	BucketUnknown  EligibilityBucket = "unknown"
	BucketRejected EligibilityBucket = "rejected"
)

// EligibilityResult is the market-eligibility outcome for one referenced
// entity (e.g. a compatible printer model).
type EligibilityResult struct {
	Entity                 string            `json:"entity"`
	Bucket                 EligibilityBucket `json:"bucket"`
	DistinctTrustedSources int               `json:"distinct_trusted_sources"`
	Score                  float64           `json:"score"`
}
