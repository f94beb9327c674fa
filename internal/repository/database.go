package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/config"
	"leaguesync/importer/internal/retry"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database holds the connection pool and provides access to repositories
type Database struct {
	Pool    *pgxpool.Pool
	profile config.Profile
	dsn     string

	// Repositories
	Leagues     *LeagueRepository
	Clubs       *ClubRepository
	Series      *SeriesRepository
	Teams       *TeamRepository
	Players     *PlayerRepository
	Matches     *MatchRepository
	Stats       *StatsRepository
	Schedule    *ScheduleRepository
	UserContent *UserContentRepository
	Backup      *BackupRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// NewDatabase creates a connection pool, retrying the initial connect with
// the profile's backoff budget, and initializes repositories.
func NewDatabase(ctx context.Context, cfg Config, profile config.Profile) (*Database, error) {
	dsn := cfg.DSN()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	err = retry.Do(ctx, retry.Policy{
		MaxAttempts: profile.MaxConnectAttempts,
		BaseDelay:   profile.RetryBaseDelay,
		Multiplier:  profile.RetryMultiplier,
	}, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool:    pool,
		profile: profile,
		dsn:     dsn,
	}

	db.Leagues = &LeagueRepository{db: db}
	db.Clubs = &ClubRepository{db: db}
	db.Series = &SeriesRepository{db: db}
	db.Teams = &TeamRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	db.Stats = &StatsRepository{db: db}
	db.Schedule = &ScheduleRepository{db: db}
	db.UserContent = &UserContentRepository{db: db}
	db.Backup = &BackupRepository{db: db}

	return db, nil
}

// Profile returns the environment tunables the database was opened with.
func (db *Database) Profile() config.Profile {
	return db.profile
}

// Bootstrap applies any pending schema migrations from the embedded
// migration set. Safe to call on every run.
func (db *Database) Bootstrap() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, db.dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Debug().Err(srcErr).Msg("Failed to close migration source")
		}
		if dbErr != nil {
			log.Debug().Err(dbErr).Msg("Failed to close migration db handle")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug().Msg("Schema already up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Msg("Schema migrations applied")
	return nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}
