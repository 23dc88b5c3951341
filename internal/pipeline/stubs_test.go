package pipeline

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-enrich/internal/config"
	"github.com/sells-group/catalog-enrich/internal/eligibility"
	"github.com/sells-group/catalog-enrich/internal/store"
	"github.com/sells-group/catalog-enrich/pkg/logistics"
	"github.com/sells-group/catalog-enrich/pkg/mediacheck"
	"github.com/sells-group/catalog-enrich/pkg/research"
)

type stubResearch struct {
	resp  *research.Response
	errs  []error // consumed one per call before resp is returned
	calls int
}

func (s *stubResearch) Research(_ context.Context, _ research.Request) (*research.Response, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	if s.resp == nil {
		return &research.Response{}, nil
	}
	return s.resp, nil
}

// stubResearchFunc routes responses per request, for tests that feed
// several distinct titles through one pipeline.
type stubResearchFunc struct {
	fn func(req research.Request) (*research.Response, error)
}

func (s *stubResearchFunc) Research(_ context.Context, req research.Request) (*research.Response, error) {
	return s.fn(req)
}

// blockingResearch holds its first call open until released, so tests can
// observe submissions that arrive while a run is still in flight.
type blockingResearch struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingResearch() *blockingResearch {
	return &blockingResearch{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingResearch) Research(_ context.Context, _ research.Request) (*research.Response, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return hpResearchResponse(), nil
}

type stubLogistics struct {
	entry *logistics.Entry
	err   error
	calls int
}

func (s *stubLogistics) Lookup(_ context.Context, _ string) (*logistics.Entry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

type stubMedia struct {
	checks  []mediacheck.Check
	err     error
	lastReq mediacheck.Request
}

func (s *stubMedia) Validate(_ context.Context, req mediacheck.Request) ([]mediacheck.Check, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.checks, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Enrich.MaxConcurrentItems = 4
	cfg.Enrich.ItemTimeoutSecs = 30
	cfg.Enrich.RetryMaxAttempts = 3
	cfg.Gate.ReadyThreshold = 0.70
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config, rc research.Client, lc logistics.Client, mc mediacheck.Client) *Pipeline {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	p := New(cfg, st, rc, lc, mc, eligibility.DefaultProfiles()["standard"])
	p.retry.InitialBackoff = time.Millisecond
	p.retry.MaxBackoff = 5 * time.Millisecond
	return p
}

// hpResearchResponse mirrors what the research service returns for the
// canonical toner-cartridge scenario: official and curated sources agree
// on the yield and the compatible device.
func hpResearchResponse() *research.Response {
	return &research.Response{
		Claims: []research.SourceClaim{
			{Field: "brand", Value: "HP", SourceDomain: "hp.com", SourceKind: "official", Confidence: 0.96},
			{Field: "model", Value: "CF234A", SourceDomain: "hp.com", SourceKind: "official", Confidence: 0.97},
			{Field: "yield", Value: "9200 pages", SourceDomain: "hp.com", SourceKind: "official", Confidence: 0.95},
			{Field: "yield", Value: "9200 pages", SourceDomain: "trusted-retailer.example", SourceKind: "curated", Confidence: 0.88},
			{Field: "compatible_device", Value: "LaserJet Pro M106w", SourceDomain: "hp.com", SourceKind: "official", Confidence: 0.92},
			{Field: "compatible_device", Value: "LaserJet Pro M106w", SourceDomain: "trusted-retailer.example", SourceKind: "curated", Confidence: 0.85},
		},
	}
}
