// Package config loads the flowaudit configuration and bootstraps the
// global logger.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/evaluation"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Checklist  ChecklistConfig  `yaml:"checklist" mapstructure:"checklist"`
	Evaluation EvaluationConfig `yaml:"evaluation" mapstructure:"evaluation"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// StoreConfig configures the evaluation archive.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ChecklistConfig configures the checklist engine.
type ChecklistConfig struct {
	CompletionMode string `yaml:"completion_mode" mapstructure:"completion_mode"`
}

// EvaluationConfig configures group query evaluations.
type EvaluationConfig struct {
	TrendBand        float64 `yaml:"trend_band" mapstructure:"trend_band"`
	Metric           string  `yaml:"metric" mapstructure:"metric"`
	FundKey          string  `yaml:"fund_key" mapstructure:"fund_key"`
	ErrorCategoryKey string  `yaml:"error_category_key" mapstructure:"error_category_key"`
	AuditTypeKey     string  `yaml:"audit_type_key" mapstructure:"audit_type_key"`
}

// BatchConfig configures batch validation.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FLOWAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "flowaudit.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("checklist.completion_mode", string(checklist.DefaultCompletionMode))
	v.SetDefault("evaluation.trend_band", evaluation.DefaultTrendBand)
	v.SetDefault("evaluation.metric", string(evaluation.MetricErrorRate))
	v.SetDefault("evaluation.fund_key", "fund")
	v.SetDefault("evaluation.error_category_key", "errorCategory")
	v.SetDefault("evaluation.audit_type_key", "auditType")
	v.SetDefault("batch.max_concurrent", 8)

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

// Validate checks the settings a command mode depends on. Modes: "cli"
// for the pure engine commands, "archive" when the evaluation store is
// used, "serve" for the HTTP API.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "cli":
	case "archive":
		problems = append(problems, c.validateStore()...)
	case "serve":
		problems = append(problems, c.validateStore()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS <= 0 {
			problems = append(problems, "server.rate_limit_rps must be > 0")
		}
		if c.Server.RateLimitBurst < 1 {
			problems = append(problems, "server.rate_limit_burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if _, err := checklist.ParseCompletionMode(c.Checklist.CompletionMode); err != nil {
		problems = append(problems, fmt.Sprintf("checklist.completion_mode %q is not one of %s, %s",
			c.Checklist.CompletionMode, checklist.CompletionCountHidden, checklist.CompletionVisibleOnly))
	}
	if _, err := evaluation.ParseMetric(c.Evaluation.Metric); err != nil {
		problems = append(problems, fmt.Sprintf("evaluation.metric %q is unknown", c.Evaluation.Metric))
	}
	if c.Evaluation.TrendBand < 0 || c.Evaluation.TrendBand > 1 {
		problems = append(problems, "evaluation.trend_band must be between 0 and 1")
	}
	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
		problems = append(problems, "batch.max_concurrent must be between 1 and 64")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var problems []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	return problems
}

// EvaluationOptions maps the evaluation settings onto engine options.
func (c *Config) EvaluationOptions() evaluation.Options {
	opts := evaluation.DefaultOptions()
	if m, err := evaluation.ParseMetric(c.Evaluation.Metric); err == nil {
		opts.Metric = m
	}
	band := c.Evaluation.TrendBand
	opts.TrendBand = &band
	if c.Evaluation.FundKey != "" {
		opts.FundKey = c.Evaluation.FundKey
	}
	if c.Evaluation.ErrorCategoryKey != "" {
		opts.ErrorCategoryKey = c.Evaluation.ErrorCategoryKey
	}
	if c.Evaluation.AuditTypeKey != "" {
		opts.AuditTypeKey = c.Evaluation.AuditTypeKey
	}
	if mode, err := checklist.ParseCompletionMode(c.Checklist.CompletionMode); err == nil {
		opts.CompletionMode = mode
	}
	return opts
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
