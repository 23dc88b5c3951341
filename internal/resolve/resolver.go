// Package resolve picks one winning value per field from competing claims.
// Trust tier strictly dominates confidence: a lower-tier claim never
// overrides a present higher-tier claim, whatever its confidence.
package resolve

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

const (
	// consensusBonus is added per extra agreeing claim within the winning
	// tier, capped at consensusCap.
	consensusBonus = 0.05
	consensusCap   = 0.99

	// conflictDiscount shrinks the provisional winner's confidence when
	// top-tier claims disagree; the conflict is surfaced for review, not
	// silently resolved.
	conflictDiscount = 0.80
)

// Resolve computes the FieldEvidence for one field from its ledger claims.
// Empty-value and unknown-tier claims count as absent. ok=false means no
// usable claim exists, which downstream treats as a missing field.
func Resolve(field string, claims []model.Claim) (model.FieldEvidence, bool) {
	usable := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.Value == "" || c.Tier() == model.TierUnknown {
			continue
		}
		usable = append(usable, c)
	}
	if len(usable) == 0 {
		return model.FieldEvidence{Field: field}, false
	}

	// Winning tier is the maximum tier present.
	top := model.TierUnknown
	for _, c := range usable {
		if c.Tier() > top {
			top = c.Tier()
		}
	}
	var winners []model.Claim
	for _, c := range usable {
		if c.Tier() == top {
			winners = append(winners, c)
		}
	}

	ev := model.FieldEvidence{
		Field:              field,
		Tier:               top,
		ContributingClaims: usable,
	}

	if len(winners) == 1 {
		ev.Value = winners[0].Value
		ev.Method = model.MethodOneSource
		ev.Confidence = winners[0].Confidence
		ev.IsAmbiguous = ambiguousExtraction(winners[0])
		return ev, true
	}

	// Multiple claims in the winning tier: consensus or conflict, decided
	// after value normalization.
	agreed := true
	first := normalizedValue(winners[0])
	for _, c := range winners[1:] {
		if normalizedValue(c) != first {
			agreed = false
			break
		}
	}

	if agreed {
		best := winners[0]
		for _, c := range winners[1:] {
			if c.Confidence > best.Confidence {
				best = c
			}
		}
		conf := best.Confidence + consensusBonus*float64(len(winners)-1)
		if conf > consensusCap {
			conf = consensusCap
		}
		ev.Value = best.Value
		ev.Method = model.MethodConsensus
		ev.Confidence = conf
		ev.IsAmbiguous = ambiguousExtraction(best)
		return ev, true
	}

	// Disagreement inside the top tier. Pick the highest-confidence claim
	// as the provisional value, deterministic on ties, and flag the
	// conflict for human review.
	sorted := make([]model.Claim, len(winners))
	copy(sorted, winners)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		if !sorted[i].ExtractedAt.Equal(sorted[j].ExtractedAt) {
			return sorted[i].ExtractedAt.Before(sorted[j].ExtractedAt)
		}
		return sorted[i].Value < sorted[j].Value
	})
	winner := sorted[0]

	zap.L().Warn("resolve: top-tier conflict",
		zap.String("field", field),
		zap.String("tier", top.String()),
		zap.String("winner_value", winner.Value),
		zap.String("winner_domain", winner.SourceDomain),
		zap.Int("competing_claims", len(winners)),
	)

	ev.Value = winner.Value
	ev.Method = model.MethodConflictOverride
	ev.Confidence = winner.Confidence * conflictDiscount
	ev.IsConflict = true
	ev.IsAmbiguous = ambiguousExtraction(winner)
	return ev, true
}

// ambiguousExtraction reports whether a claim's value came from an
// extraction that matched more than one competing candidate. Such a value
// may stand, but never publishes without review.
func ambiguousExtraction(c model.Claim) bool {
	return strings.HasSuffix(c.ExtractionMethod, ":ambiguous")
}

// ResolveAll resolves every field present in the ledger. Fields with no
// usable claims are omitted from the result.
func ResolveAll(ledger *model.Ledger) map[string]model.FieldEvidence {
	out := make(map[string]model.FieldEvidence)
	for _, field := range ledger.Fields() {
		if ev, ok := Resolve(field, ledger.ForField(field)); ok {
			out[field] = ev
		}
	}
	return out
}

// normalizedValue canonicalizes a claim value for agreement checks. The
// switch is exhaustive over the declared source types: trusted sources are
// compared near-verbatim, machine-extracted text is compared loosely.
func normalizedValue(c model.Claim) string {
	v := strings.ToLower(strings.TrimSpace(c.Value))
	v = strings.Join(strings.Fields(v), " ")

	switch c.SourceType {
	case model.SourceManualOverride,
		model.SourceOfficialManufacturer,
		model.SourceCuratedRetailer,
		model.SourceLogisticsFallback:
		return v
	case model.SourceGenericWeb, model.SourceAgentExtracted:
		return stripPunctuation(v)
	}
	return v
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '.', ',', '-', '_', '/', '(', ')', '"', '\'':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
