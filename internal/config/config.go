// Package config provides configuration management for the DUPR Insight application.
package config

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	DUPR        DUPRConfig        `mapstructure:"dupr" validate:"required"`
	Crawl       CrawlConfig       `mapstructure:"crawl" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Export      ExportConfig      `mapstructure:"export" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	Schedule    ScheduleConfig    `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the optional Postgres connection used to persist
// crawl snapshots and fitted models. Ignored when Enabled is false.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// DUPRConfig represents the DUPR API configuration
type DUPRConfig struct {
	APIURL         string  `mapstructure:"api_url" validate:"required,url"`
	Email          string  `mapstructure:"email"`
	Password       string  `mapstructure:"password"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// CrawlConfig bounds one club crawl run. ClubID is not validated here; only
// the crawler needs it and it checks at startup.
type CrawlConfig struct {
	ClubID           string `mapstructure:"club_id"`
	MaxMembers       int    `mapstructure:"max_members" validate:"required,gt=0"`
	HistoryPlayers   int    `mapstructure:"history_players" validate:"required,gt=0"`
	MatchesPerPlayer int    `mapstructure:"matches_per_player" validate:"required,gt=0"`
}

// CalibrationConfig represents the grid-search bounds and resolution for
// fitting the rating transition model
type CalibrationConfig struct {
	KMin        float64 `mapstructure:"k_min" validate:"required,gt=0"`
	KMax        float64 `mapstructure:"k_max" validate:"required,gt=0"`
	KSteps      int     `mapstructure:"k_steps" validate:"required,gt=0"`
	ScaleMin    float64 `mapstructure:"scale_min" validate:"required,gt=0"`
	ScaleMax    float64 `mapstructure:"scale_max" validate:"required,gt=0"`
	ScaleSteps  int     `mapstructure:"scale_steps" validate:"required,gt=0"`
	ErrorMetric string  `mapstructure:"error_metric" validate:"required,errormetric"`
	TimeoutMs   int     `mapstructure:"timeout_ms" validate:"gte=0"`
	Workers     int     `mapstructure:"workers" validate:"gte=0"`
}

// ExportConfig represents workbook export configuration
type ExportConfig struct {
	OutputDir      string `mapstructure:"output_dir" validate:"required"`
	FilenamePrefix string `mapstructure:"filename_prefix" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// ScheduleConfig represents scheduled crawl configuration
type ScheduleConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClubSyncCron string `mapstructure:"club_sync_cron" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
