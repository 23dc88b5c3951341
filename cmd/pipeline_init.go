package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/eligibility"
	"github.com/sells-group/catalog-enrich/internal/pipeline"
	"github.com/sells-group/catalog-enrich/internal/store"
	"github.com/sells-group/catalog-enrich/pkg/logistics"
	"github.com/sells-group/catalog-enrich/pkg/mediacheck"
	"github.com/sells-group/catalog-enrich/pkg/research"
)

// pipelineEnv holds the initialized store, clients and pipeline needed by
// the run/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Policy   eligibility.Policy
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return store.NewSQLite(cfg.Store.Path)
	}
}

// loadPolicy resolves the eligibility policy profile, preferring a profile
// file over the built-ins when one is configured.
func loadPolicy() (eligibility.Policy, error) {
	profiles := eligibility.DefaultProfiles()
	if cfg.Eligibility.PolicyFile != "" {
		loaded, err := eligibility.LoadProfiles(cfg.Eligibility.PolicyFile)
		if err != nil {
			return eligibility.Policy{}, err
		}
		profiles = loaded
	}

	name := cfg.Eligibility.Profile
	if name == "" {
		name = "standard"
	}
	p, ok := profiles[name]
	if !ok {
		return eligibility.Policy{}, eris.Errorf("unknown eligibility profile %q", name)
	}
	if err := p.Validate(); err != nil {
		return eligibility.Policy{}, err
	}
	return p, nil
}

// initPipeline sets up the store, collaborator clients and the pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("enrich"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	policy, err := loadPolicy()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	researchOpts := []research.Option{research.WithBaseURL(cfg.Research.BaseURL)}
	if cfg.Research.RatePerSec > 0 {
		researchOpts = append(researchOpts, research.WithRateLimit(cfg.Research.RatePerSec))
	}
	researchClient := research.NewClient(cfg.Research.Key, researchOpts...)

	var logisticsClient logistics.Client
	if cfg.Logistics.BaseURL != "" {
		logisticsClient = logistics.NewClient(cfg.Logistics.Key, logistics.WithBaseURL(cfg.Logistics.BaseURL))
	} else {
		zap.L().Debug("CATALOG_LOGISTICS_BASE_URL not set, logistics fallback disabled")
	}

	var mediaClient mediacheck.Client
	if cfg.Media.BaseURL != "" {
		mediaClient = mediacheck.NewClient(cfg.Media.Key, mediacheck.WithBaseURL(cfg.Media.BaseURL))
		zap.L().Info("media validation enabled", zap.Bool("required", cfg.Media.Required))
	}

	p := pipeline.New(cfg, st, researchClient, logisticsClient, mediaClient, policy)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
		Policy:   policy,
	}, nil
}
