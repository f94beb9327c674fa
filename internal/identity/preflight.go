package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/repository"
)

// PreflightValidator is the high-assurance path run before an import: it
// verifies that the unique constraints the UPSERT statements depend on
// actually exist on the live schema, creates any that are missing, and
// merges rows that already violate them so the constraints can be applied.
type PreflightValidator struct {
	db *repository.Database
}

func NewPreflightValidator(db *repository.Database) *PreflightValidator {
	return &PreflightValidator{db: db}
}

type requiredConstraint struct {
	table   string
	name    string
	columns string
}

var requiredConstraints = []requiredConstraint{
	{"teams", "teams_club_series_league_key", "club_id, series_id, league_id"},
	{"teams", "teams_name_league_key", "team_name, league_id"},
	{"players", "players_external_scope_key", "tenniscores_player_id, league_id, club_id, series_id"},
}

// Tables holding a teams(id) foreign key, repointed when duplicate teams
// are merged.
var teamDependents = []struct {
	table  string
	column string
}{
	{"players", "team_id"},
	{"series_stats", "team_id"},
	{"match_results", "home_team_id"},
	{"match_results", "away_team_id"},
	{"schedule", "home_team_id"},
	{"schedule", "away_team_id"},
	{"polls", "team_id"},
	{"captain_messages", "team_id"},
}

// PreflightReport summarizes the repairs applied before the import.
type PreflightReport struct {
	ConstraintsCreated []string
	TeamsMerged        int
	DependentsUpdated  int64
}

// Run validates and repairs the schema. Duplicate teams are merged before
// constraint creation so ADD CONSTRAINT cannot fail on existing data.
func (v *PreflightValidator) Run(ctx context.Context) (*PreflightReport, error) {
	report := &PreflightReport{}

	merged, repointed, err := v.mergeDuplicateTeams(ctx)
	if err != nil {
		return nil, err
	}
	report.TeamsMerged = merged
	report.DependentsUpdated = repointed

	for _, rc := range requiredConstraints {
		exists, err := v.constraintExists(ctx, rc.table, rc.name)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)`, rc.table, rc.name, rc.columns)
		if _, err := v.db.Pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create constraint %s: %w", rc.name, err)
		}
		report.ConstraintsCreated = append(report.ConstraintsCreated, rc.name)
		log.Warn().Str("constraint", rc.name).Str("table", rc.table).Msg("Missing unique constraint created")
	}

	log.Info().
		Int("teams_merged", report.TeamsMerged).
		Int64("dependents_updated", report.DependentsUpdated).
		Strs("constraints_created", report.ConstraintsCreated).
		Msg("Preflight validation complete")

	return report, nil
}

func (v *PreflightValidator) constraintExists(ctx context.Context, table, name string) (bool, error) {
	var exists bool
	err := v.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM pg_constraint con
			JOIN pg_class rel ON rel.oid = con.conrelid
			WHERE rel.relname = $1 AND con.conname = $2
		)`, table, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check constraint %s: %w", name, err)
	}
	return exists, nil
}

// mergeDuplicateTeams collapses teams sharing a (club_id, series_id,
// league_id) triple down to the lowest id, repointing every dependent row
// before deleting the losers.
func (v *PreflightValidator) mergeDuplicateTeams(ctx context.Context) (int, int64, error) {
	rows, err := v.db.Pool.Query(ctx, `
		SELECT id, MIN(id) OVER (PARTITION BY club_id, series_id, league_id) AS keeper
		FROM teams
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to scan for duplicate teams: %w", err)
	}
	defer rows.Close()

	losers := make(map[int]int) // duplicate id -> surviving id
	for rows.Next() {
		var id, keeper int
		if err := rows.Scan(&id, &keeper); err != nil {
			return 0, 0, fmt.Errorf("failed to scan duplicate team row: %w", err)
		}
		if id != keeper {
			losers[id] = keeper
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to read duplicate team rows: %w", err)
	}
	if len(losers) == 0 {
		return 0, 0, nil
	}

	tx, err := v.db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var repointed int64
	for dup, keeper := range losers {
		for _, dep := range teamDependents {
			stmt := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, dep.table, dep.column, dep.column)
			tag, err := tx.Exec(ctx, stmt, keeper, dup)
			if err != nil {
				return 0, 0, fmt.Errorf("failed to repoint %s.%s: %w", dep.table, dep.column, err)
			}
			repointed += tag.RowsAffected()
		}
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, dup); err != nil {
			return 0, 0, fmt.Errorf("failed to delete duplicate team %d: %w", dup, err)
		}
		log.Warn().Int("duplicate", dup).Int("kept", keeper).Msg("Duplicate team merged")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit team merge: %w", err)
	}

	return len(losers), repointed, nil
}
