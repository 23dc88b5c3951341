package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ItemStatus tracks an item through the pipeline state machine.
type ItemStatus string

const (
	StatusReceived    ItemStatus = "received"
	StatusNormalizing ItemStatus = "normalizing"
	StatusResearching ItemStatus = "researching"
	StatusResolving   ItemStatus = "resolving"
	StatusClassifying ItemStatus = "classifying"
	StatusGating      ItemStatus = "gating"
	StatusOK          ItemStatus = "ok"
	StatusNeedsReview ItemStatus = "needs_review"
	StatusFailed      ItemStatus = "failed"
)

// Terminal reports whether the status ends the pipeline run.
func (s ItemStatus) Terminal() bool {
	return s == StatusOK || s == StatusNeedsReview || s == StatusFailed
}

// AuditTrailEntry records one mutation of an item. Entries are only ever
// appended, never edited or deleted.
type AuditTrailEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	Before    string    `json:"before,omitempty"`
	After     string    `json:"after,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// EnrichedItem is the aggregate record for one enriched input. Its JSON
// shape is consumed by the review surface and must stay stable.
type EnrichedItem struct {
	ID                 string                   `json:"id"`
	InputRaw           string                   `json:"input_raw"`
	InputHash          string                   `json:"input_hash"`
	Status             ItemStatus               `json:"status"`
	ResolvedFields     map[string]string        `json:"resolved_fields"`
	EvidenceLedger     map[string]FieldEvidence `json:"evidence_ledger"`
	Claims             Ledger                   `json:"claims"`
	EligibilityResults []EligibilityResult      `json:"eligibility_results"`
	Readiness          *ReadinessResult         `json:"readiness,omitempty"`
	AuditTrail         []AuditTrailEntry        `json:"audit_trail"`
	ApprovedAt         *time.Time               `json:"approved_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewEnrichedItem builds a fresh item for a raw input.
func NewEnrichedItem(id, raw string) *EnrichedItem {
	now := time.Now().UTC()
	return &EnrichedItem{
		ID:             id,
		InputRaw:       raw,
		InputHash:      HashInput(raw),
		Status:         StatusReceived,
		ResolvedFields: make(map[string]string),
		EvidenceLedger: make(map[string]FieldEvidence),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Audit appends one audit trail entry and bumps UpdatedAt.
func (it *EnrichedItem) Audit(action, field, before, after, source string) {
	now := time.Now().UTC()
	it.AuditTrail = append(it.AuditTrail, AuditTrailEntry{
		Timestamp: now,
		Action:    action,
		Field:     field,
		Before:    before,
		After:     after,
		Source:    source,
	})
	it.UpdatedAt = now
}

// SetStatus transitions the item and records the transition in the audit
// trail. Transitions after approval are rejected silently: an approved
// record is frozen.
func (it *EnrichedItem) SetStatus(status ItemStatus) {
	if it.ApprovedAt != nil {
		return
	}
	before := string(it.Status)
	it.Status = status
	it.Audit("status_transition", "", before, string(status), "coordinator")
}

// Frozen reports whether the item was approved and may no longer mutate.
func (it *EnrichedItem) Frozen() bool {
	return it.ApprovedAt != nil
}

// HashInput computes the deterministic content hash used for idempotent
// re-processing and duplicate detection. Unicode is NFC-normalized and
// whitespace collapsed first so that trivially re-encoded inputs coalesce.
func HashInput(raw string) string {
	canonical := norm.NFC.String(strings.TrimSpace(raw))
	canonical = strings.Join(strings.Fields(canonical), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
