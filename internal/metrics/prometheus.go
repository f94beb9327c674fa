package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the import engine

var (
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_import_runs_total",
			Help: "Total number of import runs by final status",
		},
		[]string{"status"},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaguesync_phase_duration_seconds",
			Help:    "Duration of import phases in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"phase"},
	)

	RowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_rows_imported_total",
			Help: "Total number of rows imported per table",
		},
		[]string{"table"},
	)

	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_rows_skipped_total",
			Help: "Total number of input rows skipped per table",
		},
		[]string{"table", "reason"},
	)

	TeamsPreserved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_teams_preserved",
			Help: "Teams whose surrogate id survived the last reload",
		},
	)

	PreservationRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_preservation_rate",
			Help: "Current team count over backed-up team count (0-1)",
		},
	)

	OrphansRepaired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_orphans_repaired_total",
			Help: "Orphaned team references resolved per method",
		},
		[]string{"table", "method"},
	)

	OrphansDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_orphans_discarded_total",
			Help: "Orphaned rows nulled or deleted as a last resort",
		},
		[]string{"table", "action"},
	)

	HealthVerdict = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_health_verdict",
			Help: "Last run verdict: 0=healthy, 1=degraded, 2=critical",
		},
	)

	PlayerResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_player_resolutions_total",
			Help: "Player id resolutions by outcome",
		},
		[]string{"outcome"},
	)

	SessionRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaguesync_session_rotations_total",
			Help: "Database session rotations at batch boundaries",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_last_successful_run_timestamp",
			Help: "Timestamp of the last successful import run",
		},
	)
)

// RecordPhase records a completed phase duration
func RecordPhase(phase string, seconds float64) {
	PhaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordRun records a finished run and its status
func RecordRun(status string) {
	ImportRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordResolution records a player id resolution outcome
func RecordResolution(outcome string) {
	PlayerResolutions.WithLabelValues(outcome).Inc()
}
