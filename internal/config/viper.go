// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/anomaly"
	"fjacquet/stmt-insight/internal/recurring"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STMT_LOG_LEVEL.
const EnvPrefix = "STMT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
		Model             string  `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int     `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Temperature       float64 `mapstructure:"temperature" yaml:"temperature"`
		MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
		APIKey            string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		CategoriesFile  string `mapstructure:"categories_file" yaml:"categories_file"`
		DefaultCategory string `mapstructure:"default_category" yaml:"default_category"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Anomaly struct {
		HistoryDays int `mapstructure:"history_days" yaml:"history_days"`
		MinHistory  int `mapstructure:"min_history" yaml:"min_history"`
		ChunkSize   int `mapstructure:"chunk_size" yaml:"chunk_size"`
		Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	} `mapstructure:"anomaly" yaml:"anomaly"`

	Recurring struct {
		HistoryMonths int `mapstructure:"history_months" yaml:"history_months"`
	} `mapstructure:"recurring" yaml:"recurring"`
}

// InitializeConfig loads configuration from defaults, the first config.yaml
// found in the search paths and STMT_ environment variables.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file.
// An empty path searches $HOME/.stmt-insight, .stmt-insight and the
// working directory.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.stmt-insight")
		v.AddConfigPath(".stmt-insight")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
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

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.max_tokens", 4096)

	v.SetDefault("categorization.categories_file", "")
	v.SetDefault("categorization.default_category", "Other")

	v.SetDefault("anomaly.history_days", anomaly.DefaultHistoryDays)
	v.SetDefault("anomaly.min_history", anomaly.DefaultMinHistory)
	v.SetDefault("anomaly.chunk_size", anomaly.DefaultChunkSize)
	v.SetDefault("anomaly.parallelism", anomaly.DefaultParallelism)

	v.SetDefault("recurring.history_months", recurring.DefaultHistoryMonths)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}
	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got: %f", config.AI.Temperature)
	}

	if config.Categorization.DefaultCategory == "" {
		return fmt.Errorf("categorization.default_category must not be empty")
	}

	if config.Anomaly.MinHistory < 1 || config.Anomaly.HistoryDays < 1 {
		return fmt.Errorf("anomaly.min_history and anomaly.history_days must be positive")
	}
	if config.Anomaly.ChunkSize < 1 || config.Anomaly.Parallelism < 1 {
		return fmt.Errorf("anomaly.chunk_size and anomaly.parallelism must be positive")
	}

	if config.Recurring.HistoryMonths < 1 {
		return fmt.Errorf("recurring.history_months must be positive, got: %d", config.Recurring.HistoryMonths)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSV.Delimiter)[0]
}

// AITimeout returns the AI call timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// AIAvailable reports whether AI extraction is enabled and has a credential.
func (c *Config) AIAvailable() bool {
	return c.AI.Enabled && c.AI.APIKey != ""
}

// AnomalyConfig maps the anomaly section onto the scorer's config.
func (c *Config) AnomalyConfig() anomaly.Config {
	cfg := anomaly.DefaultConfig()
	cfg.HistoryDays = c.Anomaly.HistoryDays
	cfg.MinHistory = c.Anomaly.MinHistory
	cfg.ChunkSize = c.Anomaly.ChunkSize
	cfg.Parallelism = c.Anomaly.Parallelism
	return cfg
}

// RecurringConfig maps the recurring section onto the detector's config.
func (c *Config) RecurringConfig() recurring.Config {
	cfg := recurring.DefaultConfig()
	cfg.HistoryMonths = c.Recurring.HistoryMonths
	return cfg
}
