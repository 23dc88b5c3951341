// Package pipeline orchestrates the enrichment of one supplier title:
// normalize, research, resolve, classify, gate. Collaborator failures
// degrade the item instead of failing the run; the only hard failure is
// an item with no usable evidence at all.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/catalog-enrich/internal/config"
	"github.com/sells-group/catalog-enrich/internal/eligibility"
	"github.com/sells-group/catalog-enrich/internal/extract"
	"github.com/sells-group/catalog-enrich/internal/gate"
	"github.com/sells-group/catalog-enrich/internal/model"
	"github.com/sells-group/catalog-enrich/internal/resilience"
	"github.com/sells-group/catalog-enrich/internal/resolve"
	"github.com/sells-group/catalog-enrich/internal/store"
	"github.com/sells-group/catalog-enrich/pkg/logistics"
	"github.com/sells-group/catalog-enrich/pkg/mediacheck"
	"github.com/sells-group/catalog-enrich/pkg/research"
)

// Item is one unit of pipeline input.
type Item struct {
	SKU       string            `json:"sku,omitempty"`
	RawTitle  string            `json:"raw_title"`
	ImageURLs []string          `json:"image_urls,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// Pipeline coordinates the enrichment stages for items.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	research   research.Client
	logistics  logistics.Client
	media      mediacheck.Client
	normalizer *extract.Normalizer
	policy     eligibility.Policy
	gateCfg    gate.Config
	retry      resilience.RetryConfig
	breakers   *resilience.CollaboratorBreakers

	// flights coalesces concurrent submissions of the same input hash
	// into a single run.
	flights singleflight.Group
}

// New creates a Pipeline with all dependencies. The media client may be
// nil when media validation is not configured.
func New(
	cfg *config.Config,
	st store.Store,
	researchClient research.Client,
	logisticsClient logistics.Client,
	mediaClient mediacheck.Client,
	policy eligibility.Policy,
) *Pipeline {
	retry := resilience.DefaultRetryConfig()
	if cfg.Enrich.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.Enrich.RetryMaxAttempts
	}
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		research:   researchClient,
		logistics:  logisticsClient,
		media:      mediaClient,
		normalizer: extract.NewNormalizer(extract.DefaultBrandBook()),
		policy:     policy,
		gateCfg:    gateConfig(cfg),
		retry:      retry,
		breakers:   resilience.NewCollaboratorBreakers(resilience.DefaultCircuitBreakerConfig()),
	}
}

// gateConfig builds the gate configuration from the app config, falling
// back to gate defaults for anything unset.
func gateConfig(cfg *config.Config) gate.Config {
	gc := gate.DefaultConfig()
	if cfg.Gate.ReadyThreshold > 0 {
		gc.ReadyThreshold = cfg.Gate.ReadyThreshold
	}
	if len(cfg.Gate.MandatoryFields) > 0 {
		gc.MandatoryFields = cfg.Gate.MandatoryFields
	}
	if len(cfg.Gate.Weights) > 0 {
		gc.Weights = gate.Weights{
			Completeness: cfg.Gate.Weights["completeness"],
			Quality:      cfg.Gate.Weights["quality"],
			Market:       cfg.Gate.Weights["market"],
			Media:        cfg.Gate.Weights["media"],
			Reliability:  cfg.Gate.Weights["reliability"],
		}
	}
	return gc
}

// Run enriches one item. Submissions that hash to an already-stored
// terminal record return that record unchanged; concurrent duplicates
// coalesce into one execution.
func (p *Pipeline) Run(ctx context.Context, in Item) (*model.EnrichedItem, error) {
	hash := model.HashInput(in.RawTitle)

	v, err, _ := p.flights.Do(hash, func() (any, error) {
		if existing, getErr := p.store.GetByInputHash(ctx, hash); getErr == nil && existing.Status.Terminal() {
			zap.L().Info("pipeline: duplicate input, returning stored item",
				zap.String("item_id", existing.ID),
				zap.String("input_hash", hash),
			)
			return existing, nil
		}
		return p.run(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.EnrichedItem), nil
}

func (p *Pipeline) run(ctx context.Context, in Item) (*model.EnrichedItem, error) {
	item := model.NewEnrichedItem(uuid.New().String(), in.RawTitle)
	log := zap.L().With(zap.String("item_id", item.ID), zap.String("input_hash", item.InputHash))
	log.Info("pipeline: starting enrichment")

	// ===== Normalize =====
	item.SetStatus(model.StatusNormalizing)
	for _, c := range p.normalizer.Extract(in.RawTitle, "supplier.feed") {
		item.Claims.Append(c)
	}
	for field, value := range in.Overrides {
		item.Claims.Append(model.Claim{
			Field:            field,
			Value:            value,
			SourceDomain:     "ops.manual",
			SourceType:       model.SourceManualOverride,
			Confidence:       1.0,
			ExtractedAt:      time.Now().UTC(),
			ExtractionMethod: "manual",
		})
	}
	item.Audit("claims_extracted", "", "", fmt.Sprintf("%d", item.Claims.Len()), "normalizer")

	// ===== Research, with logistics fallback =====
	item.SetStatus(model.StatusResearching)
	query := extract.Canonicalize(in.RawTitle)
	researched := p.researchClaims(ctx, item, query)
	if !researched {
		p.logisticsClaims(ctx, item, query, in.SKU)
	}

	// ===== Resolve =====
	item.SetStatus(model.StatusResolving)
	item.EvidenceLedger = p.resolveFields(item)
	if len(item.EvidenceLedger) == 0 {
		item.SetStatus(model.StatusFailed)
		item.Audit("enrichment_failed", "", "", "no usable evidence from any source", "coordinator")
		if err := p.store.PutItem(ctx, item); err != nil {
			return nil, eris.Wrap(err, "pipeline: save failed item")
		}
		return item, nil
	}

	// ===== Classify market eligibility =====
	item.SetStatus(model.StatusClassifying)
	item.EligibilityResults = eligibility.Classify(p.policy, item.Claims.ForField("compatible_device"))

	// ===== Media validation =====
	checks := p.mediaChecks(ctx, item, in)

	// ===== Gate =====
	item.SetStatus(model.StatusGating)
	readiness := gate.Evaluate(p.gateCfg, gate.Input{
		ResolvedFields: item.EvidenceLedger,
		Eligibility:    item.EligibilityResults,
		MediaChecks:    checks,
		MediaRequired:  p.cfg.Media.Required,
	})
	item.Readiness = &readiness

	// ===== Terminal status =====
	if readiness.IsReady && !hasConflict(item) && !hasAmbiguity(item) {
		item.SetStatus(model.StatusOK)
	} else {
		item.SetStatus(model.StatusNeedsReview)
		p.notifyReview(ctx, item)
	}

	if err := p.store.PutItem(ctx, item); err != nil {
		return nil, eris.Wrap(err, "pipeline: save item")
	}

	log.Info("pipeline: enrichment complete",
		zap.String("status", string(item.Status)),
		zap.Float64("readiness", readiness.OverallScore),
		zap.Int("claims", item.Claims.Len()),
		zap.Int("resolved_fields", len(item.EvidenceLedger)),
	)
	return item, nil
}

// researchClaims queries the research service and appends its claims to
// the ledger. Returns false when nothing usable came back, which triggers
// the logistics fallback.
func (p *Pipeline) researchClaims(ctx context.Context, item *model.EnrichedItem, query string) bool {
	cb := p.breakers.Get("research")
	retry := p.retry
	retry.ShouldRetry = retryableClientError
	retry.OnRetry = resilience.RetryLogger("research", "research")

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*research.Response, error) {
		return resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (*research.Response, error) {
			return p.research.Research(ctx, research.Request{Query: query})
		})
	})
	if err != nil {
		kind := resilience.IssueCollaboratorUnavailable
		if eris.Is(err, research.ErrSchema) {
			kind = resilience.IssueMalformedResponse
		}
		item.Audit("research_degraded", "", "", string(kind), "research")
		zap.L().Warn("pipeline: research unavailable, falling back",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return false
	}

	zap.L().Debug("pipeline: research summary",
		zap.String("item_id", item.ID),
		zap.String("summary", resp.Summary),
		zap.Strings("source_domains", resp.SourceDomains),
	)

	appended := 0
	for _, sc := range resp.Claims {
		st, ok := sourceTypeFor(sc.SourceKind)
		if !ok {
			zap.L().Warn("pipeline: dropping claim with unknown source kind",
				zap.String("source_kind", sc.SourceKind),
				zap.String("field", sc.Field),
			)
			continue
		}
		item.Claims.Append(model.Claim{
			Field:            sc.Field,
			Value:            sc.Value,
			SourceDomain:     sc.SourceDomain,
			SourceType:       st,
			Confidence:       sc.Confidence,
			ExtractedAt:      time.Now().UTC(),
			ExtractionMethod: "research",
		})
		appended++
	}
	item.Audit("research_complete", "", "", fmt.Sprintf("%d claims", appended), "research")
	return appended > 0
}

// logisticsClaims pulls the warehouse catalog entry as fallback evidence.
func (p *Pipeline) logisticsClaims(ctx context.Context, item *model.EnrichedItem, query, sku string) {
	if p.logistics == nil {
		item.Audit("logistics_skipped", "", "", "no fallback provider configured", "logistics")
		return
	}
	if sku != "" {
		query = sku
	}

	cb := p.breakers.Get("logistics")
	retry := p.retry
	retry.ShouldRetry = retryableClientError
	retry.OnRetry = resilience.RetryLogger("logistics", "lookup")

	entry, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*logistics.Entry, error) {
		return resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (*logistics.Entry, error) {
			return p.logistics.Lookup(ctx, query)
		})
	})
	if err != nil {
		if !eris.Is(err, logistics.ErrNotFound) {
			zap.L().Warn("pipeline: logistics fallback unavailable",
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
		}
		item.Audit("logistics_skipped", "", "", "no fallback evidence", "logistics")
		return
	}

	now := time.Now().UTC()
	for field, value := range entry.Fields {
		item.Claims.Append(model.Claim{
			Field:            field,
			Value:            value,
			SourceDomain:     entry.SourceDomain,
			SourceType:       model.SourceLogisticsFallback,
			Confidence:       0.60,
			ExtractedAt:      now,
			ExtractionMethod: "logistics_catalog",
		})
	}
	item.Audit("logistics_fallback", "", "", fmt.Sprintf("%d claims", len(entry.Fields)), "logistics")
}

// resolveFields runs the trust resolver and mirrors winning values into
// the flat resolved-field map, auditing each one.
func (p *Pipeline) resolveFields(item *model.EnrichedItem) map[string]model.FieldEvidence {
	evidence := resolve.ResolveAll(&item.Claims)
	fields := make([]string, 0, len(evidence))
	for f := range evidence {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, field := range fields {
		ev := evidence[field]
		item.ResolvedFields[field] = ev.Value
		item.Audit("field_resolved", field, "", ev.Value, string(ev.Method))
		if ev.IsConflict {
			item.Audit("conflict_flagged", field, "", ev.Value, string(ev.Method))
		}
		if ev.IsAmbiguous {
			item.Audit(string(resilience.IssueExtractionAmbiguous), field, "", ev.Value, "resolver")
		}
	}
	return evidence
}

// mediaChecks validates item imagery when a media client is configured.
// Failures degrade to an empty check list; the gate decides what that
// means based on whether media is required.
func (p *Pipeline) mediaChecks(ctx context.Context, item *model.EnrichedItem, in Item) []model.MediaCheck {
	if p.media == nil || len(in.ImageURLs) == 0 {
		return nil
	}

	cb := p.breakers.Get("media")
	checks, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) ([]mediacheck.Check, error) {
		return p.media.Validate(ctx, mediacheck.Request{
			ImageURLs:     in.ImageURLs,
			ExpectedBrand: item.ResolvedFields["brand"],
			ExpectedModel: item.ResolvedFields["model"],
		})
	})
	if err != nil {
		kind := resilience.IssueCollaboratorUnavailable
		if eris.Is(err, mediacheck.ErrSchema) {
			kind = resilience.IssueMalformedResponse
		}
		item.Audit("media_degraded", "", "", string(kind), "mediacheck")
		return nil
	}

	out := make([]model.MediaCheck, len(checks))
	for i, c := range checks {
		out[i] = model.MediaCheck{Name: c.Name, Passed: c.Passed, Reason: c.Reason}
	}
	item.Audit("media_validated", "", "", fmt.Sprintf("%d checks", len(out)), "mediacheck")
	return out
}

// retryableClientError retries transport failures and transient HTTP
// statuses from collaborator clients. Schema violations never retry.
func retryableClientError(err error) bool {
	var researchErr *research.APIError
	if errors.As(err, &researchErr) {
		return resilience.IsTransientHTTPStatus(researchErr.StatusCode)
	}
	var logisticsErr *logistics.APIError
	if errors.As(err, &logisticsErr) {
		return resilience.IsTransientHTTPStatus(logisticsErr.StatusCode)
	}
	if eris.Is(err, research.ErrSchema) || eris.Is(err, logistics.ErrSchema) {
		return false
	}
	if eris.Is(err, logistics.ErrNotFound) || eris.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	return resilience.IsTransient(err)
}

func hasConflict(item *model.EnrichedItem) bool {
	for _, ev := range item.EvidenceLedger {
		if ev.IsConflict {
			return true
		}
	}
	return false
}

// hasAmbiguity reports whether any resolved field's winning value came from
// an ambiguous extraction. Ambiguity reduces confidence upstream and forces
// review here, same as a conflict.
func hasAmbiguity(item *model.EnrichedItem) bool {
	for _, ev := range item.EvidenceLedger {
		if ev.IsAmbiguous {
			return true
		}
	}
	return false
}
