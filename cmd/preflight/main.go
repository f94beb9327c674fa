package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/config"
	"leaguesync/importer/internal/health"
	"leaguesync/importer/internal/identity"
	"leaguesync/importer/internal/repository"
)

// Standalone schema check for high-assurance runs: validates and repairs
// the unique constraints the import depends on, then reports the current
// orphan and invalid-team counts without touching any data rows.
func main() {
	cfg := config.MustLoad()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, cfg.Profile())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	report, err := identity.NewPreflightValidator(db).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Preflight validation failed")
	}

	state, err := health.NewValidator(db).Validate(ctx, 0, 0, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Health check failed")
	}

	log.Info().
		Int("teams_merged", report.TeamsMerged).
		Strs("constraints_created", report.ConstraintsCreated).
		Int("orphans", state.TotalOrphans).
		Int("invalid_teams", state.InvalidTeams).
		Str("verdict", state.Verdict.String()).
		Msg("Preflight complete")

	if state.InvalidTeams > 0 {
		os.Exit(1)
	}
}
