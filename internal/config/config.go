package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Research    ResearchConfig    `yaml:"research" mapstructure:"research"`
	Logistics   LogisticsConfig   `yaml:"logistics" mapstructure:"logistics"`
	Media       MediaConfig       `yaml:"media" mapstructure:"media"`
	Review      ReviewConfig      `yaml:"review" mapstructure:"review"`
	Eligibility EligibilityConfig `yaml:"eligibility" mapstructure:"eligibility"`
	Gate        GateConfig        `yaml:"gate" mapstructure:"gate"`
	Enrich      EnrichConfig      `yaml:"enrich" mapstructure:"enrich"`
	Feed        FeedConfig        `yaml:"feed" mapstructure:"feed"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the item store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ResearchConfig holds the product-research service settings.
type ResearchConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogisticsConfig holds the logistics-data fallback service settings.
type LogisticsConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// MediaConfig holds the media validation service settings.
type MediaConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Required    bool   `yaml:"required" mapstructure:"required"`
}

// ReviewConfig holds the human-review webhook settings.
type ReviewConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// EligibilityConfig selects the market eligibility policy profile.
type EligibilityConfig struct {
	Profile    string `yaml:"profile" mapstructure:"profile"`
	PolicyFile string `yaml:"policy_file" mapstructure:"policy_file"`
}

// GateConfig configures the publication readiness gate.
type GateConfig struct {
	ReadyThreshold  float64            `yaml:"ready_threshold" mapstructure:"ready_threshold"`
	MandatoryFields []string           `yaml:"mandatory_fields" mapstructure:"mandatory_fields"`
	Weights         map[string]float64 `yaml:"weights" mapstructure:"weights"`
}

// EnrichConfig configures the enrichment coordinator.
type EnrichConfig struct {
	MaxConcurrentItems int `yaml:"max_concurrent_items" mapstructure:"max_concurrent_items"`
	ItemTimeoutSecs    int `yaml:"item_timeout_secs" mapstructure:"item_timeout_secs"`
	RetryMaxAttempts   int `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
}

// FeedConfig configures supplier feed ingestion.
type FeedConfig struct {
	FTPHost     string  `yaml:"ftp_host" mapstructure:"ftp_host"`
	FTPUser     string  `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPassword string  `yaml:"ftp_password" mapstructure:"ftp_password"`
	FTPPath     string  `yaml:"ftp_path" mapstructure:"ftp_path"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration is usable for the given mode
// ("enrich", "serve", or "import"). Shared bounds are checked for every
// mode; mode-specific requirements stack on top.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Enrich.MaxConcurrentItems < 1 || c.Enrich.MaxConcurrentItems > 50 {
		problems = append(problems, "enrich.max_concurrent_items must be between 1 and 50")
	}
	if c.Gate.ReadyThreshold < 0 || c.Gate.ReadyThreshold > 1 {
		problems = append(problems, "gate.ready_threshold must be between 0 and 1")
	}
	for name, w := range c.Gate.Weights {
		if w < 0 {
			problems = append(problems, "gate.weights."+name+" must be >= 0")
		}
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}

	switch mode {
	case "enrich":
		if c.Research.BaseURL == "" {
			problems = append(problems, "research.base_url is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "import":
		// Feed sources are chosen per invocation; nothing extra to check.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "catalog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("research.base_url", "https://research.internal.example")
	v.SetDefault("research.timeout_secs", 30)
	v.SetDefault("research.rate_per_sec", 5)
	v.SetDefault("logistics.base_url", "https://logistics.internal.example")
	v.SetDefault("logistics.timeout_secs", 20)
	v.SetDefault("logistics.rate_per_sec", 10)
	v.SetDefault("media.base_url", "https://media.internal.example")
	v.SetDefault("media.timeout_secs", 20)
	v.SetDefault("media.required", false)
	v.SetDefault("eligibility.profile", "standard")
	v.SetDefault("gate.ready_threshold", 0.70)
	v.SetDefault("gate.mandatory_fields", []string{"brand", "model", "type"})
	v.SetDefault("enrich.max_concurrent_items", 5)
	v.SetDefault("enrich.item_timeout_secs", 120)
	v.SetDefault("enrich.retry_max_attempts", 3)
	v.SetDefault("feed.rate_per_sec", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
