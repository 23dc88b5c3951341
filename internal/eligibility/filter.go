package eligibility

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// Score weighting: normalized distinct-source count carries most of the
// signal, mean claim confidence the rest; an official-manufacturer domain
// among the sources adds the policy's flat bonus. Clamped to [0,1].
const (
	countWeight      = 0.6
	confidenceWeight = 0.4
)

// Classify buckets every referenced entity found in the compatibility
// claims. Distinct trusted domains count once however many claims they
// produced; claims under the policy confidence threshold are ignored.
// The returned buckets partition the entity set exactly, sorted by entity.
func Classify(policy Policy, claims []model.Claim) []model.EligibilityResult {
	type entityAgg struct {
		domains   map[string]bool
		official  bool
		confSum   float64
		confCount int
	}

	agg := make(map[string]*entityAgg)
	for _, c := range claims {
		entity := strings.TrimSpace(c.Value)
		if entity == "" {
			continue
		}
		a, ok := agg[entity]
		if !ok {
			a = &entityAgg{domains: make(map[string]bool)}
			agg[entity] = a
		}

		if c.Confidence < policy.ConfidenceThreshold {
			continue
		}
		entry, trusted := policy.trusted(c.SourceDomain)
		if !trusted {
			continue
		}
		a.domains[strings.ToLower(c.SourceDomain)] = true
		if entry.Official {
			a.official = true
		}
		a.confSum += c.Confidence
		a.confCount++
	}

	entities := make([]string, 0, len(agg))
	for e := range agg {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	results := make([]model.EligibilityResult, 0, len(entities))
	for _, entity := range entities {
		a := agg[entity]
		distinct := len(a.domains)

		var bucket model.EligibilityBucket
		switch {
		case distinct >= policy.MinTrustedSources:
			bucket = model.BucketVerified
		case distinct > 0:
			bucket = model.BucketUnknown
		default:
			bucket = model.BucketRejected
		}

		results = append(results, model.EligibilityResult{
			Entity:                 entity,
			Bucket:                 bucket,
			DistinctTrustedSources: distinct,
			Score:                  score(policy, a.domains, a.official, a.confSum, a.confCount),
		})
	}

	zap.L().Debug("eligibility: classified entities",
		zap.String("policy", policy.Name),
		zap.Int("entities", len(results)),
	)
	return results
}

func score(policy Policy, domains map[string]bool, official bool, confSum float64, confCount int) float64 {
	normCount := float64(len(domains)) / float64(policy.MinTrustedSources)
	if normCount > 1 {
		normCount = 1
	}

	meanConf := 0.0
	if confCount > 0 {
		meanConf = confSum / float64(confCount)
	}

	s := countWeight*normCount + confidenceWeight*meanConf
	if official {
		s += policy.OfficialDomainBonus
	}
	if s > 1 {
		s = 1
	}
	if s < 0 {
		s = 0
	}
	return s
}
