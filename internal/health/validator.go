package health

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/repository"
)

// Verdict classifies a finished run.
type Verdict int

const (
	Healthy Verdict = iota
	Degraded
	Critical
)

func (v Verdict) String() string {
	switch v {
	case Healthy:
		return "HEALTHY"
	case Degraded:
		return "DEGRADED"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// preservation rate below this is critical regardless of orphan counts
const minPreservationRate = 0.90

// Report is the quantitative outcome of a run's validation pass.
type Report struct {
	Verdict          Verdict
	OrphanCounts     map[string]int
	TotalOrphans     int
	DiscardedOrphans int // orphans nulled or deleted during restore repair
	InvalidTeams     int
	CurrentTeams     int
	BackedUpTeams    int
	PreservationRate float64 // current/backed-up, capped at 1.0
	RefoundRate      float64 // backed-up natural keys re-found, informational
	MappedTeams      int
}

// Validator computes the health report after restore.
type Validator struct {
	db *repository.Database
}

func NewValidator(db *repository.Database) *Validator {
	return &Validator{db: db}
}

// Validate counts orphaned team references, structurally invalid teams, and
// the preservation rate, then classifies the run. backedUpTeams and
// mappedTeams come from the backup manager; a zero backedUpTeams (first run
// against an empty database) yields a 100% rate. discardedOrphans counts
// content the restore repair nulled or deleted: those rows no longer show
// up as orphans in the database, but losing them still degrades the run.
//
// The preservation rate divides current team count by backed-up team count
// and caps at 100%, so simultaneous team loss and creation can mask each
// other. The refound rate (mapped/backed-up) is the stricter measure and is
// reported alongside, but the capped ratio remains the gating metric.
func (v *Validator) Validate(ctx context.Context, backedUpTeams, mappedTeams, discardedOrphans int) (*Report, error) {
	report := &Report{
		BackedUpTeams:    backedUpTeams,
		MappedTeams:      mappedTeams,
		DiscardedOrphans: discardedOrphans,
	}

	orphans, err := v.db.UserContent.OrphanCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphans: %w", err)
	}
	report.OrphanCounts = orphans
	for _, n := range orphans {
		report.TotalOrphans += n
	}

	invalid, err := v.db.Teams.CountInvalid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invalid teams: %w", err)
	}
	report.InvalidTeams = invalid

	current, err := v.db.Teams.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}
	report.CurrentTeams = current

	if backedUpTeams == 0 {
		report.PreservationRate = 1
		report.RefoundRate = 1
	} else {
		report.PreservationRate = float64(current) / float64(backedUpTeams)
		if report.PreservationRate > 1 {
			report.PreservationRate = 1
		}
		report.RefoundRate = float64(mappedTeams) / float64(backedUpTeams)
	}

	report.Verdict = classify(report)

	metrics.PreservationRate.Set(report.PreservationRate)
	metrics.HealthVerdict.Set(float64(report.Verdict))

	event := log.Info()
	if report.Verdict != Healthy {
		event = log.Warn()
	}
	event.
		Str("verdict", report.Verdict.String()).
		Int("orphans", report.TotalOrphans).
		Int("discarded_orphans", report.DiscardedOrphans).
		Int("invalid_teams", report.InvalidTeams).
		Float64("preservation_rate", report.PreservationRate).
		Float64("refound_rate", report.RefoundRate).
		Msg("Health validation complete")

	return report, nil
}

func classify(r *Report) Verdict {
	if r.InvalidTeams > 0 || r.PreservationRate < minPreservationRate {
		return Critical
	}
	if r.TotalOrphans > 0 || r.DiscardedOrphans > 0 {
		return Degraded
	}
	return Healthy
}

// Repairer is the slice of the backup manager the repair cycle needs.
type Repairer interface {
	RepairOrphans(ctx context.Context) (*RepairOutcome, error)
}

// RepairOutcome mirrors the backup manager's repair counters.
type RepairOutcome struct {
	Repaired  int
	Discarded int
}

// ValidateWithRepair runs validation and, on a CRITICAL verdict, applies
// one repair pass and revalidates. The second report is final; escalation
// on a still-critical verdict is the caller's decision.
func (v *Validator) ValidateWithRepair(ctx context.Context, backedUpTeams, mappedTeams, discardedOrphans int, repairer Repairer) (*Report, error) {
	report, err := v.Validate(ctx, backedUpTeams, mappedTeams, discardedOrphans)
	if err != nil {
		return nil, err
	}
	if report.Verdict != Critical {
		return report, nil
	}

	log.Warn().Msg("Critical verdict, running repair pass and revalidating")
	outcome, err := repairer.RepairOrphans(ctx)
	if err != nil {
		return nil, fmt.Errorf("repair pass failed: %w", err)
	}
	log.Info().
		Int("repaired", outcome.Repaired).
		Int("discarded", outcome.Discarded).
		Msg("Repair pass complete")

	// Content discarded by the repair pass counts against the rerun too.
	return v.Validate(ctx, backedUpTeams, mappedTeams, discardedOrphans+outcome.Discarded)
}
