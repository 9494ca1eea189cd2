// Package config provides configuration management for the DUPR Insight application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("DUPR_INSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, so the CLI tools run against a partial (or absent) config file.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("DUPR_INSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dupr-insight")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("dupr.api_url", "https://api.dupr.gg")
	v.SetDefault("dupr.timeout_seconds", 30)
	v.SetDefault("dupr.max_retries", 3)
	v.SetDefault("dupr.rate_limit", 1.0)

	v.SetDefault("crawl.max_members", 20)
	v.SetDefault("crawl.history_players", 10)
	v.SetDefault("crawl.matches_per_player", 20)

	// Grid-search defaults: K in [1,64] with 64 candidates (unit steps),
	// scale in [100,1000] with 10 candidates (steps of 100).
	v.SetDefault("calibration.k_min", 1.0)
	v.SetDefault("calibration.k_max", 64.0)
	v.SetDefault("calibration.k_steps", 64)
	v.SetDefault("calibration.scale_min", 100.0)
	v.SetDefault("calibration.scale_max", 1000.0)
	v.SetDefault("calibration.scale_steps", 10)
	v.SetDefault("calibration.error_metric", "outcome_mae")
	v.SetDefault("calibration.timeout_ms", 0)
	v.SetDefault("calibration.workers", 0)

	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.filename_prefix", "dupr_club")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)
}
