package model

import "encoding/json"

// ResolutionMethod describes how a field's winning value was chosen.
type ResolutionMethod string

const (
	MethodOneSource        ResolutionMethod = "one_source"
	MethodConsensus        ResolutionMethod = "consensus"
	MethodConflictOverride ResolutionMethod = "conflict_override"
)

// FieldEvidence is the resolved view of one field: the winning value, how it
// won, and every claim that contributed. One per field per item; only the
// trust resolver writes it.
type FieldEvidence struct {
	Field              string           `json:"field"`
	Value              string           `json:"value"`
	Method             ResolutionMethod `json:"method"`
	Confidence         float64          `json:"confidence"`
	Tier               TrustTier        `json:"tier"`
	IsConflict         bool             `json:"is_conflict"`
	IsAmbiguous        bool             `json:"is_ambiguous,omitempty"`
	ContributingClaims []Claim          `json:"contributing_claims"`
}

// Ledger is the per-item append-only collection of claims. It is owned
// exclusively by one pipeline run, so it carries no lock.
type Ledger struct {
	claims []Claim
}

// Append records a claim. Claims are never removed or edited afterwards.
func (l *Ledger) Append(c Claim) {
	l.claims = append(l.claims, c)
}

// Len reports the number of recorded claims.
func (l *Ledger) Len() int {
	return len(l.claims)
}

// All returns a copy of every recorded claim in append order.
func (l *Ledger) All() []Claim {
	out := make([]Claim, len(l.claims))
	copy(out, l.claims)
	return out
}

// ForField returns the claims recorded for one field, in append order.
func (l *Ledger) ForField(field string) []Claim {
	var out []Claim
	for _, c := range l.claims {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// Fields returns the distinct field names present in the ledger, in first-
// appearance order.
func (l *Ledger) Fields() []string {
	seen := make(map[string]bool, len(l.claims))
	var out []string
	for _, c := range l.claims {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}

// MarshalJSON serializes the ledger as a plain claim array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.claims)
}

// UnmarshalJSON restores a ledger from a claim array.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &l.claims)
}
