// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	SEC       SECConfig       `yaml:"sec" mapstructure:"sec"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SECConfig governs how EDGAR and the SEC structured APIs are accessed.
// The SEC requires a User-Agent identifying the operator.
type SECConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateSecs    float64 `yaml:"rate_secs" mapstructure:"rate_secs"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// Rate returns the inter-request pause as a duration.
func (c SECConfig) Rate() time.Duration {
	return time.Duration(c.RateSecs * float64(time.Second))
}

// Timeout returns the per-request timeout as a duration.
func (c SECConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ExtractorConfig holds sec-api.io Extractor API settings. An empty key
// disables the API and the enrichment falls back to direct scraping.
type ExtractorConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig configures the fiscal-year-end cache database.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EnrichConfig configures the Item 1A enrichment defaults.
type EnrichConfig struct {
	Workers        int  `yaml:"workers" mapstructure:"workers"`
	RowTimeoutSecs int  `yaml:"row_timeout_secs" mapstructure:"row_timeout_secs"`
	DropUnkeyed    bool `yaml:"drop_unkeyed" mapstructure:"drop_unkeyed"`
}

// RowTimeout returns the per-row fetch bound as a duration.
func (c EnrichConfig) RowTimeout() time.Duration {
	return time.Duration(c.RowTimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BUSFACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sec.user_agent", "")
	v.SetDefault("sec.rate_secs", 0.2)
	v.SetDefault("sec.timeout_secs", 30)
	v.SetDefault("sec.max_retries", 5)
	v.SetDefault("extractor.key", "")
	v.SetDefault("extractor.base_url", "https://api.sec-api.io/extractor")
	v.SetDefault("cache.path", "busfactor-fye.db")
	v.SetDefault("enrich.workers", 0)
	v.SetDefault("enrich.row_timeout_secs", 120)
	v.SetDefault("enrich.drop_unkeyed", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// ValidateLive checks the settings needed for runs that hit SEC servers.
func (c *Config) ValidateLive() error {
	if strings.TrimSpace(c.SEC.UserAgent) == "" {
		return eris.New("config: sec.user_agent is required; the SEC asks for a contact identity on every request")
	}
	return nil
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
