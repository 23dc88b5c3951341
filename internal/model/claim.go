package model

import "time"

// SourceType tags where a claim came from. The resolver matches on it
// exhaustively, so adding a new source type requires handling it there.
type SourceType string

const (
	SourceManualOverride       SourceType = "manual_override"
	SourceOfficialManufacturer SourceType = "official_manufacturer"
	SourceCuratedRetailer      SourceType = "curated_retailer"
	SourceLogisticsFallback    SourceType = "logistics_fallback"
	SourceGenericWeb           SourceType = "generic_web"
	SourceAgentExtracted       SourceType = "agent_extracted"
)

// TrustTier ranks the inherent reliability of a source. Higher wins;
// tier strictly dominates confidence during resolution.
type TrustTier int

const (
	TierUnknown  TrustTier = 0
	TierGeneric  TrustTier = 1
	TierFallback TrustTier = 2
	TierCurated  TrustTier = 3
	TierOfficial TrustTier = 4
	TierManual   TrustTier = 5
)

// Tier maps a source type to its trust tier. The switch is exhaustive over
// the declared source types; anything unrecognized lands at TierUnknown and
// is treated by the resolver as an absent claim.
func (s SourceType) Tier() TrustTier {
	switch s {
	case SourceManualOverride:
		return TierManual
	case SourceOfficialManufacturer:
		return TierOfficial
	case SourceCuratedRetailer:
		return TierCurated
	case SourceLogisticsFallback:
		return TierFallback
	case SourceGenericWeb, SourceAgentExtracted:
		return TierGeneric
	}
	return TierUnknown
}

// String returns the tier name for logs and reports.
func (t TrustTier) String() string {
	switch t {
	case TierManual:
		return "manual"
	case TierOfficial:
		return "official"
	case TierCurated:
		return "curated"
	case TierFallback:
		return "fallback"
	case TierGeneric:
		return "generic"
	}
	return "unknown"
}

// Claim is a single immutable assertion about one field's value from one
// source. Many claims may exist per field; they are never edited in place.
type Claim struct {
	Field            string     `json:"field"`
	Value            string     `json:"value"`
	SourceDomain     string     `json:"source_domain"`
	SourceType       SourceType `json:"source_type"`
	Confidence       float64    `json:"confidence"`
	ExtractedAt      time.Time  `json:"extracted_at"`
	ExtractionMethod string     `json:"extraction_method"`
}

// Tier returns the trust tier of the claim's source.
func (c Claim) Tier() TrustTier {
	return c.SourceType.Tier()
}

// DataSource describes a claim origin: its domain, trust classification,
// and whether the domain has independently produced this value before.
type DataSource struct {
	Domain       string     `json:"domain"`
	Type         SourceType `json:"type"`
	Corroborated bool       `json:"corroborated"`
}
