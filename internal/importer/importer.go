package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/backup"
	"leaguesync/importer/internal/cache"
	"leaguesync/importer/internal/config"
	"leaguesync/importer/internal/extract"
	"leaguesync/importer/internal/health"
	"leaguesync/importer/internal/identity"
	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/repository"
	"leaguesync/importer/internal/resolver"
)

// Importer drives the full pipeline: load documents, dump, backup, clear,
// rebuild, restore, validate. One run is one linear pass; phases carry
// their own commit boundaries so a failure rolls back only the in-flight
// phase.
type Importer struct {
	cfg   *config.Config
	db    *repository.Database
	cache *cache.RedisCache
}

func New(cfg *config.Config, db *repository.Database, c *cache.RedisCache) *Importer {
	return &Importer{cfg: cfg, db: db, cache: c}
}

// RunReport is the run summary surfaced to the caller and the logs.
type RunReport struct {
	StartedAt time.Time
	Duration  time.Duration
	DumpPath  string

	Teams          identity.TeamImportResult
	PlayersLoaded  int
	PlayersSkipped int
	HistoryRows    int
	MatchRows      int
	StatsRows      int
	ScheduleRows   int

	Resolutions *identity.ResolutionReport
	Restore     *backup.RestoreResult
	Health      *health.Report
}

// repairAdapter exposes the backup manager's repair pass through the
// health validator's interface.
type repairAdapter struct {
	mgr *backup.Manager
}

func (a repairAdapter) RepairOrphans(ctx context.Context) (*health.RepairOutcome, error) {
	result, err := a.mgr.RepairOrphans(ctx)
	if err != nil {
		return nil, err
	}
	return &health.RepairOutcome{
		Repaired:  result.PollsRepaired + result.MessagesRepaired,
		Discarded: result.PollsNulled + result.MessagesDeleted,
	}, nil
}

func runPhase(name string, fn func() error) error {
	start := time.Now()
	log.Info().Str("phase", name).Msg("Phase starting")
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordPhase(name, elapsed.Seconds())
	if err != nil {
		log.Error().Err(err).Str("phase", name).Dur("elapsed", elapsed).Msg("Phase failed")
		return err
	}
	log.Info().Str("phase", name).Dur("elapsed", elapsed).Msg("Phase complete")
	return nil
}

// Run executes one full import. On a CRITICAL verdict that survives the
// repair pass, it either restores the pre-run dump (when the profile allows
// unattended recovery and a dump was taken) or returns the failure to the
// caller.
func (im *Importer) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		StartedAt:   time.Now(),
		Resolutions: identity.NewResolutionReport(),
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	docs, err := extract.LoadDocuments(im.cfg.DataDir)
	if err != nil {
		metrics.RecordRun("failure")
		return report, fmt.Errorf("failed to load input documents: %w", err)
	}

	if im.cfg.DumpEnabled {
		err := runPhase("dump", func() error {
			path, err := backup.Dump(ctx, im.cfg.DatabaseDSN(), im.cfg.DumpDir)
			if err != nil {
				return err
			}
			report.DumpPath = path
			return nil
		})
		if err != nil {
			metrics.RecordRun("failure")
			return report, err
		}
	}

	if err := runPhase("preflight", func() error {
		_, err := identity.NewPreflightValidator(im.db).Run(ctx)
		return err
	}); err != nil {
		metrics.RecordRun("failure")
		return report, err
	}

	mgr := backup.NewManager(im.db)

	if err := runPhase("backup", func() error { return mgr.Backup(ctx) }); err != nil {
		metrics.RecordRun("failure")
		return report, err
	}

	if err := runPhase("clear", func() error { return mgr.Clear(ctx) }); err != nil {
		metrics.RecordRun("failure")
		return report, err
	}

	if err := runPhase("rebuild", func() error { return im.rebuild(ctx, docs, report) }); err != nil {
		return report, im.fail(ctx, report, err)
	}

	if err := runPhase("restore", func() error {
		restored, err := mgr.Restore(ctx)
		if err != nil {
			return err
		}
		report.Restore = restored
		return nil
	}); err != nil {
		return report, im.fail(ctx, report, err)
	}

	if err := runPhase("validate", func() error {
		mapped, discarded := 0, 0
		if report.Restore != nil {
			mapped = report.Restore.MappedTeams
			discarded = report.Restore.Repair.PollsNulled + report.Restore.Repair.MessagesDeleted
		}
		verdict, err := health.NewValidator(im.db).ValidateWithRepair(ctx, mgr.BackedUpTeams(), mapped, discarded, repairAdapter{mgr})
		if err != nil {
			return err
		}
		report.Health = verdict
		return nil
	}); err != nil {
		return report, im.fail(ctx, report, err)
	}

	report.Resolutions.Log()

	if report.Health.Verdict == health.Critical {
		return report, im.fail(ctx, report, fmt.Errorf("run finished with CRITICAL health verdict"))
	}

	if err := mgr.Finalize(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to drop shadow tables, leaving them for inspection")
	}

	metrics.RecordRun("success")
	log.Info().
		Str("verdict", report.Health.Verdict.String()).
		Dur("elapsed", time.Since(report.StartedAt)).
		Msg("Import run complete")

	return report, nil
}

// rebuild runs the reference import, team preservation, player import and
// the bulk loaders, in dependency order.
func (im *Importer) rebuild(ctx context.Context, docs *extract.Documents, report *RunReport) error {
	universe := resolver.Resolve(docs)

	if err := im.importReferences(ctx, universe); err != nil {
		return err
	}

	teamResult, err := identity.NewTeamPreserver(im.db).Import(ctx, universe.Teams)
	if err != nil {
		return err
	}
	report.Teams = *teamResult

	lk, err := im.buildLookups(ctx)
	if err != nil {
		return err
	}

	loaded, skipped, err := im.importPlayers(ctx, docs.Players, lk)
	if err != nil {
		return err
	}
	report.PlayersLoaded = loaded
	report.PlayersSkipped = skipped

	res := identity.NewPlayerResolver(im.db, im.cache)

	if report.HistoryRows, err = im.importPlayerHistory(ctx, docs.PlayerHistory, lk, res, report.Resolutions); err != nil {
		return err
	}
	if report.MatchRows, err = im.importMatches(ctx, docs.Matches, lk, res, report.Resolutions); err != nil {
		return err
	}
	if report.StatsRows, err = im.importSeriesStats(ctx, docs.SeriesStats, lk); err != nil {
		return err
	}
	if report.ScheduleRows, err = im.importSchedule(ctx, docs.Schedules, lk); err != nil {
		return err
	}

	return nil
}

// fail records the failed run and, in unattended mode with a pre-run dump
// on disk, attempts the full out-of-band restore before returning.
func (im *Importer) fail(ctx context.Context, report *RunReport, cause error) error {
	metrics.RecordRun("failure")

	if im.db.Profile().AutoRestore && report.DumpPath != "" {
		log.Error().Err(cause).Msg("Run failed, attempting full restore from pre-run dump")
		if restoreErr := backup.RestoreDump(ctx, im.cfg.DatabaseDSN(), report.DumpPath); restoreErr != nil {
			return fmt.Errorf("%w (dump restore also failed: %v)", cause, restoreErr)
		}
		return fmt.Errorf("%w (database restored from pre-run dump)", cause)
	}

	return cause
}
