// Package gate makes the publish/no-publish decision for an enriched item
// by combining independent component scores with unconditional blockers.
// Evaluation is pure: identical inputs always yield identical results.
package gate

import (
	"fmt"
	"sort"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// Weights is the configurable component weight vector. The overall score
// is the weighted sum normalized by the total weight, so the vector does
// not need to sum to one.
type Weights struct {
	Completeness float64 `yaml:"completeness" mapstructure:"completeness"`
	Quality      float64 `yaml:"quality" mapstructure:"quality"`
	Market       float64 `yaml:"market" mapstructure:"market"`
	Media        float64 `yaml:"media" mapstructure:"media"`
	Reliability  float64 `yaml:"reliability" mapstructure:"reliability"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Completeness: 0.30,
		Quality:      0.25,
		Market:       0.20,
		Media:        0.15,
		Reliability:  0.10,
	}
}

// Config holds the gate parameters, loaded once and passed explicitly.
type Config struct {
	Weights         Weights  `yaml:"weights" mapstructure:"weights"`
	ReadyThreshold  float64  `yaml:"ready_threshold" mapstructure:"ready_threshold"`
	MandatoryFields []string `yaml:"mandatory_fields" mapstructure:"mandatory_fields"`
}

// DefaultConfig returns the gate defaults: brand, model and type are
// mandatory; publish at 0.70.
func DefaultConfig() Config {
	return Config{
		Weights:         DefaultWeights(),
		ReadyThreshold:  0.70,
		MandatoryFields: []string{"brand", "model", "type"},
	}
}

// Input gathers everything the gate consumes for one item.
type Input struct {
	ResolvedFields map[string]model.FieldEvidence
	Eligibility    []model.EligibilityResult
	MediaChecks    []model.MediaCheck
	MediaRequired  bool
}

// Evaluate computes the readiness decision. Blocking issues veto publication
// regardless of score; is_ready requires the threshold met AND no blockers.
func Evaluate(cfg Config, in Input) model.ReadinessResult {
	completeness := scoreCompleteness(cfg.MandatoryFields, in.ResolvedFields)
	quality := scoreQuality(in.ResolvedFields)
	market := scoreMarket(in.Eligibility)
	media := scoreMedia(in.MediaChecks, in.MediaRequired)
	reliability := scoreReliability(in.ResolvedFields)

	w := cfg.Weights
	total := w.Completeness + w.Quality + w.Market + w.Media + w.Reliability
	overall := quality
	if total > 0 {
		overall = (w.Completeness*completeness +
			w.Quality*quality +
			w.Market*market +
			w.Media*media +
			w.Reliability*reliability) / total
	}

	var blocking []string
	for _, f := range missingMandatory(cfg.MandatoryFields, in.ResolvedFields) {
		blocking = append(blocking, fmt.Sprintf("missing_mandatory_field: %s is unresolved", f))
	}
	if countBucket(in.Eligibility, model.BucketVerified) == 0 {
		blocking = append(blocking, "market_unverified: no referenced entity reached the verified bucket")
	}
	if in.MediaRequired && passedChecks(in.MediaChecks) == 0 {
		blocking = append(blocking, "media_validation_failed: no media validation check passed")
	}

	var recs []string
	for _, field := range sortedFields(in.ResolvedFields) {
		if in.ResolvedFields[field].IsConflict {
			recs = append(recs, fmt.Sprintf("resolve the source conflict on %q before publishing", field))
		}
	}
	if n := countBucket(in.Eligibility, model.BucketUnknown); n > 0 {
		recs = append(recs, fmt.Sprintf("add corroborating sources for %d under-verified entities", n))
	}
	if quality < 0.6 && len(in.ResolvedFields) > 0 {
		recs = append(recs, "resolved-field confidence is low; consider additional research passes")
	}

	return model.ReadinessResult{
		OverallScore: overall,
		IsReady:      overall >= cfg.ReadyThreshold && len(blocking) == 0,
		ComponentScores: map[string]float64{
			"completeness": completeness,
			"quality":      quality,
			"market":       market,
			"media":        media,
			"reliability":  reliability,
		},
		BlockingIssues:  blocking,
		Recommendations: recs,
		ConfidenceLevel: confidenceLevel(overall),
	}
}

func scoreCompleteness(mandatory []string, fields map[string]model.FieldEvidence) float64 {
	if len(mandatory) == 0 {
		return 1.0
	}
	present := 0
	for _, f := range mandatory {
		if ev, ok := fields[f]; ok && ev.Value != "" {
			present++
		}
	}
	return float64(present) / float64(len(mandatory))
}

func missingMandatory(mandatory []string, fields map[string]model.FieldEvidence) []string {
	var missing []string
	for _, f := range mandatory {
		if ev, ok := fields[f]; !ok || ev.Value == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func scoreQuality(fields map[string]model.FieldEvidence) float64 {
	if len(fields) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, ev := range fields {
		sum += ev.Confidence
	}
	return sum / float64(len(fields))
}

func scoreMarket(results []model.EligibilityResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	return float64(countBucket(results, model.BucketVerified)) / float64(len(results))
}

func scoreMedia(checks []model.MediaCheck, required bool) float64 {
	if len(checks) == 0 {
		if required {
			return 0.0
		}
		return 1.0
	}
	return float64(passedChecks(checks)) / float64(len(checks))
}

// scoreReliability averages the trust tier across every contributing claim,
// normalized by the top of the tier scale.
func scoreReliability(fields map[string]model.FieldEvidence) float64 {
	sum := 0.0
	n := 0
	for _, ev := range fields {
		for _, c := range ev.ContributingClaims {
			sum += float64(c.Tier())
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n) / float64(model.TierManual)
}

func countBucket(results []model.EligibilityResult, bucket model.EligibilityBucket) int {
	n := 0
	for _, r := range results {
		if r.Bucket == bucket {
			n++
		}
	}
	return n
}

func passedChecks(checks []model.MediaCheck) int {
	n := 0
	for _, c := range checks {
		if c.Passed {
			n++
		}
	}
	return n
}

func sortedFields(fields map[string]model.FieldEvidence) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func confidenceLevel(score float64) model.ConfidenceLevel {
	switch {
	case score >= 0.75:
		return model.ConfidenceHigh
	case score >= 0.50:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
