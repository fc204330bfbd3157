// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Store struct {
		Driver        string `mapstructure:"driver" yaml:"driver"`
		DSN           string `mapstructure:"dsn" yaml:"-"` // may embed credentials
		HashChunkSize int    `mapstructure:"hash_chunk_size" yaml:"hash_chunk_size"`
	} `mapstructure:"store" yaml:"store"`

	Import struct {
		Delimiter      string   `mapstructure:"delimiter" yaml:"delimiter"`
		InvoicePhrases []string `mapstructure:"invoice_phrases" yaml:"invoice_phrases"`
		AutoCategorize bool     `mapstructure:"auto_categorize" yaml:"auto_categorize"`
	} `mapstructure:"import" yaml:"import"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		FallbackCategory  string `mapstructure:"fallback_category" yaml:"fallback_category"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		RulesFile        string  `mapstructure:"rules_file" yaml:"rules_file"`
		HistoryThreshold float64 `mapstructure:"history_threshold" yaml:"history_threshold"`
		HistoryTolerance float64 `mapstructure:"history_tolerance" yaml:"history_tolerance"`
		HistoryLimit     int     `mapstructure:"history_limit" yaml:"history_limit"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Server struct {
		Addr        string   `mapstructure:"addr" yaml:"addr"`
		CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	} `mapstructure:"server" yaml:"server"`

	Scheduler struct {
		Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
		MaterializeSpec string `mapstructure:"materialize_spec" yaml:"materialize_spec"`
	} `mapstructure:"scheduler" yaml:"scheduler"`
}

// InitializeConfig loads configuration from the default search paths,
// environment variables and built-in defaults.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load is InitializeConfig with an explicit config file. An empty path
// searches $HOME/.cashflow, ./.cashflow and the working directory for
// config.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.cashflow")
		v.AddConfigPath(".cashflow")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CASHFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unprefixed variables commonly provided by hosting environments.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("store.dsn", "CASHFLOW_STORE_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "cashflow.db")
	v.SetDefault("store.hash_chunk_size", 500)

	v.SetDefault("import.delimiter", ";")
	v.SetDefault("import.invoice_phrases", []string{"pagamento de fatura"})
	v.SetDefault("import.auto_categorize", false)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 60)
	v.SetDefault("ai.timeout_seconds", 10)
	v.SetDefault("ai.fallback_category", "Uncategorized")
	v.SetDefault("ai.api_key", "")

	v.SetDefault("categorization.rules_file", "categories.yaml")
	v.SetDefault("categorization.history_threshold", 0.85)
	v.SetDefault("categorization.history_tolerance", 0.15)
	v.SetDefault("categorization.history_limit", 500)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.materialize_spec", "0 6 1 * *")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver must be 'sqlite' or 'postgres', got: %s", config.Store.Driver)
	}
	if config.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required")
	}
	if config.Store.HashChunkSize < 1 {
		return fmt.Errorf("store.hash_chunk_size must be positive, got: %d", config.Store.HashChunkSize)
	}

	if len([]rune(config.Import.Delimiter)) != 1 {
		return fmt.Errorf("import.delimiter must be a single character, got: %q", config.Import.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
	}
	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
	}

	if t := config.Categorization.HistoryThreshold; t < 0 || t > 1 {
		return fmt.Errorf("categorization.history_threshold must be between 0.0 and 1.0, got: %f", t)
	}
	if t := config.Categorization.HistoryTolerance; t < 0 || t > 1 {
		return fmt.Errorf("categorization.history_tolerance must be between 0.0 and 1.0, got: %f", t)
	}

	if config.Scheduler.Enabled {
		if _, err := cron.ParseStandard(config.Scheduler.MaterializeSpec); err != nil {
			return fmt.Errorf("scheduler.materialize_spec is not a valid cron expression: %w", err)
		}
	}

	return nil
}
