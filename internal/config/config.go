// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Entity   EntityConfig   `yaml:"entity" mapstructure:"entity"`
	Oracle   OracleConfig   `yaml:"oracle" mapstructure:"oracle"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Sourcing SourcingConfig `yaml:"sourcing" mapstructure:"sourcing"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local run-history database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EntityConfig holds the remote entity store settings.
type EntityConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OracleConfig holds discovery oracle (Anthropic) settings.
type OracleConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ScoringConfig holds the scoring service settings.
type ScoringConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SourcingConfig configures the batch sourcing pipeline.
type SourcingConfig struct {
	DefaultLimit       int  `yaml:"default_limit" mapstructure:"default_limit"`
	MaxProfiles        int  `yaml:"max_profiles" mapstructure:"max_profiles"`
	ProfileConcurrency int  `yaml:"profile_concurrency" mapstructure:"profile_concurrency"`
	ScoreAttempts      int  `yaml:"score_attempts" mapstructure:"score_attempts"`
	ScoreBackoffMs     int  `yaml:"score_backoff_ms" mapstructure:"score_backoff_ms"`
	RunTimeoutSecs     int  `yaml:"run_timeout_secs" mapstructure:"run_timeout_secs"`
	HistoryEnabled     bool `yaml:"history_enabled" mapstructure:"history_enabled"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("DEALFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("entity.rate_limit", 10)
	v.SetDefault("oracle.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("oracle.max_tokens", 4096)
	v.SetDefault("scoring.rate_limit", 5)
	v.SetDefault("sourcing.default_limit", 10)
	v.SetDefault("sourcing.max_profiles", 100)
	v.SetDefault("sourcing.profile_concurrency", 4)
	v.SetDefault("sourcing.score_attempts", 3)
	v.SetDefault("sourcing.score_backoff_ms", 250)
	v.SetDefault("sourcing.run_timeout_secs", 600)
	v.SetDefault("sourcing.history_enabled", true)

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

// Validate checks that required settings for the sourcing pipeline are set.
func (c *Config) Validate() error {
	var missing []string
	if c.Entity.Key == "" {
		missing = append(missing, "entity.key (DEALFLOW_ENTITY_KEY)")
	}
	if c.Entity.BaseURL == "" {
		missing = append(missing, "entity.base_url (DEALFLOW_ENTITY_BASE_URL)")
	}
	if c.Oracle.Key == "" {
		missing = append(missing, "oracle.key (DEALFLOW_ORACLE_KEY)")
	}
	if c.Scoring.BaseURL == "" {
		missing = append(missing, "scoring.base_url (DEALFLOW_SCORING_BASE_URL)")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
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
