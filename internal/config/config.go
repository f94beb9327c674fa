package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"leaguesync"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"leaguesync_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional resolution cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Input contract: directory holding the five scraped JSON documents
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// Pre-run binary dump directory (pg_dump -Fc output)
	DumpDir     string `envconfig:"DUMP_DIR" default:"./backups"`
	DumpEnabled bool   `envconfig:"DUMP_ENABLED" default:"true"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	ImportCron      string `envconfig:"IMPORT_CRON" default:"0 3 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Profile carries the tunables that vary by environment. It is constructed
// once at startup and passed down explicitly so phase code never branches
// on the environment string.
type Profile struct {
	// Batch loading
	BatchSize int

	// Connection retry budget
	MaxConnectAttempts int
	RetryBaseDelay     time.Duration
	RetryMultiplier    float64

	// Per-phase error ceilings
	TeamErrorCeiling int
	RowErrorCeiling  int

	// Session rotation: a batch-scoped connection is recycled once either
	// limit is exceeded, only at a batch boundary
	SessionMaxAge time.Duration
	SessionMaxOps int

	// AutoRestore enables the unattended recovery path: on a CRITICAL
	// verdict that survives the repair pass, restore from the pre-run dump
	// instead of raising.
	AutoRestore bool
}

// ProfileFor returns the tunables for the given environment.
func ProfileFor(env string) Profile {
	switch env {
	case "production":
		return Profile{
			BatchSize:          2000,
			MaxConnectAttempts: 10,
			RetryBaseDelay:     time.Second,
			RetryMultiplier:    2.0,
			TeamErrorCeiling:   100,
			RowErrorCeiling:    500,
			SessionMaxAge:      10 * time.Minute,
			SessionMaxOps:      50000,
			AutoRestore:        true,
		}
	case "staging":
		return Profile{
			BatchSize:          1000,
			MaxConnectAttempts: 5,
			RetryBaseDelay:     time.Second,
			RetryMultiplier:    2.0,
			TeamErrorCeiling:   50,
			RowErrorCeiling:    250,
			SessionMaxAge:      10 * time.Minute,
			SessionMaxOps:      25000,
			AutoRestore:        false,
		}
	default: // local
		return Profile{
			BatchSize:          500,
			MaxConnectAttempts: 3,
			RetryBaseDelay:     500 * time.Millisecond,
			RetryMultiplier:    1.5,
			TeamErrorCeiling:   25,
			RowErrorCeiling:    100,
			SessionMaxAge:      5 * time.Minute,
			SessionMaxOps:      10000,
			AutoRestore:        false,
		}
	}
}

// Load loads configuration from environment variables.
// It first attempts to load from a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	switch c.AppEnv {
	case "local", "staging", "production":
	default:
		return fmt.Errorf("APP_ENV must be local, staging or production, got %q", c.AppEnv)
	}

	return nil
}

// Profile returns the environment-derived tunables.
func (c *Config) Profile() Profile {
	return ProfileFor(c.AppEnv)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error.
// Use this in main() where we want to fail fast.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
