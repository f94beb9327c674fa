package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/cache"
	"leaguesync/importer/internal/config"
	"leaguesync/importer/internal/importer"
	"leaguesync/importer/internal/repository"
	"leaguesync/importer/internal/scheduler"
)

func main() {
	cfg := config.MustLoad()
	setupLogging(cfg)

	log.Info().
		Str("env", cfg.AppEnv).
		Str("data_dir", cfg.DataDir).
		Bool("scheduler", cfg.EnableScheduler).
		Msg("League importer starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	if err := db.Bootstrap(); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap schema")
	}

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// The cache is an optimization; run without it.
			log.Warn().Err(err).Msg("Redis unavailable, continuing without resolution cache")
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	imp := importer.New(cfg, db, redisCache)

	if cfg.EnableScheduler {
		sched := scheduler.New(imp, cfg.ImportCron)
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
		<-ctx.Done()
		sched.Stop()
		return
	}

	report, err := imp.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Import run failed")
		os.Exit(1)
	}

	log.Info().
		Int("teams_inserted", report.Teams.Inserted).
		Int("teams_updated", report.Teams.Updated).
		Int("players", report.PlayersLoaded).
		Int("matches", report.MatchRows).
		Int("history", report.HistoryRows).
		Int("stats", report.StatsRows).
		Int("schedule", report.ScheduleRows).
		Str("verdict", report.Health.Verdict.String()).
		Msg("Import finished")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.AppEnv == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
