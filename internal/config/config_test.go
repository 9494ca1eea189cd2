package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dupr-insight", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "https://api.dupr.gg", cfg.DUPR.APIURL)
	assert.Equal(t, 1.0, cfg.DUPR.RateLimit)

	assert.Equal(t, 1.0, cfg.Calibration.KMin)
	assert.Equal(t, 64.0, cfg.Calibration.KMax)
	assert.Equal(t, 64, cfg.Calibration.KSteps)
	assert.Equal(t, 100.0, cfg.Calibration.ScaleMin)
	assert.Equal(t, 1000.0, cfg.Calibration.ScaleMax)
	assert.Equal(t, 10, cfg.Calibration.ScaleSteps)
	assert.Equal(t, "outcome_mae", cfg.Calibration.ErrorMetric)

	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DUPR_PASSWORD", "hunter2")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: dupr-insight
  environment: production
  log_level: info
dupr:
  api_url: https://api.dupr.gg
  email: crawler@example.com
  password: ${TEST_DUPR_PASSWORD}
  timeout_seconds: 30
  rate_limit: 1.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.DUPR.Password)
	assert.True(t, cfg.IsProduction())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad environment", mutate: func(c *Config) { c.App.Environment = "qa" }},
		{name: "bad log level", mutate: func(c *Config) { c.App.LogLevel = "verbose" }},
		{name: "bad metric", mutate: func(c *Config) { c.Calibration.ErrorMetric = "rmse" }},
		{name: "inverted K bounds", mutate: func(c *Config) { c.Calibration.KMin = 64; c.Calibration.KMax = 1 }},
		{name: "inverted scale bounds", mutate: func(c *Config) { c.Calibration.ScaleMin = 1000; c.Calibration.ScaleMax = 100 }},
		{name: "collapsed scale bounds with steps", mutate: func(c *Config) { c.Calibration.ScaleMin = 400; c.Calibration.ScaleMax = 400 }},
		{name: "bad api url", mutate: func(c *Config) { c.DUPR.APIURL = "not a url" }},
		{name: "database enabled without host", mutate: func(c *Config) { c.Database.Enabled = true }},
		{name: "schedule enabled without cron", mutate: func(c *Config) { c.Schedule.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
