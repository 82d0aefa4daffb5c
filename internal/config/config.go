package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverJSON   = "json"
	StorageDriverSQLite = "sqlite"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Report    ReportConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StorageConfig struct {
	Driver string
	Path   string
}

type ReportConfig struct {
	Path           string
	CurrencySymbol string
}

type SchedulerConfig struct {
	AutosaveInterval time.Duration
	ReportSchedule   string
	OverdueSchedule  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and an optional .env
// file. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("STORAGE_DRIVER", StorageDriverJSON)
	v.SetDefault("DATA_PATH", "data/library.json")
	v.SetDefault("REPORT_PATH", "report.txt")
	v.SetDefault("CURRENCY_SYMBOL", "R$")
	v.SetDefault("AUTOSAVE_INTERVAL", "5m")
	v.SetDefault("REPORT_SCHEDULE", "0 0 * * * *")
	v.SetDefault("OVERDUE_SCHEDULE", "0 0 9 * * *")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	// Read from environment variables
	v.AutomaticEnv()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetString("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("STORAGE_DRIVER"),
			Path:   v.GetString("DATA_PATH"),
		},
		Report: ReportConfig{
			Path:           v.GetString("REPORT_PATH"),
			CurrencySymbol: v.GetString("CURRENCY_SYMBOL"),
		},
		Scheduler: SchedulerConfig{
			AutosaveInterval: v.GetDuration("AUTOSAVE_INTERVAL"),
			ReportSchedule:   v.GetString("REPORT_SCHEDULE"),
			OverdueSchedule:  v.GetString("OVERDUE_SCHEDULE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Storage.Driver {
	case StorageDriverJSON, StorageDriverSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverJSON, StorageDriverSQLite, c.Storage.Driver)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("DATA_PATH is required")
	}

	if c.Report.Path == "" {
		return fmt.Errorf("REPORT_PATH is required")
	}

	if c.Scheduler.AutosaveInterval <= 0 {
		return fmt.Errorf("AUTOSAVE_INTERVAL must be a positive duration")
	}

	// Schedules use the six field format with seconds.
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduler.ReportSchedule); err != nil {
		return fmt.Errorf("REPORT_SCHEDULE must be a valid cron expression: %w", err)
	}
	if _, err := parser.Parse(c.Scheduler.OverdueSchedule); err != nil {
		return fmt.Errorf("OVERDUE_SCHEDULE must be a valid cron expression: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
