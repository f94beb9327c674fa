package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/models"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team by its (club_id, series_id, league_id)
// natural key, preserving the surrogate id of an existing row and updating
// only name fields. Returns the surrogate id and whether a new row was
// inserted.
//
// The primary path is a single atomic statement; (xmax = 0) distinguishes a
// fresh insert from a conflict-update. If the statement itself errors (for
// example the unique constraint is absent on a legacy schema), a manual
// SELECT-then-INSERT-or-UPDATE fallback runs instead.
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) (int, bool, error) {
	query := `
		INSERT INTO teams (club_id, series_id, league_id, team_name, team_alias, display_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT teams_club_series_league_key DO UPDATE SET
			team_name = EXCLUDED.team_name,
			team_alias = EXCLUDED.team_alias,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS was_insert
	`

	var id int
	var wasInsert bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		team.ClubID, team.SeriesID, team.LeagueID,
		team.TeamName, team.TeamAlias, team.DisplayName,
	).Scan(&id, &wasInsert)

	if err == nil {
		team.ID = id
		return id, wasInsert, nil
	}

	log.Warn().
		Err(err).
		Str("team", team.TeamName).
		Msg("Atomic team upsert failed, falling back to select-then-write")

	return r.upsertFallback(ctx, team)
}

// upsertFallback is the non-atomic path: look the natural key up, then
// update or insert. Used only when the atomic statement cannot run.
func (r *TeamRepository) upsertFallback(ctx context.Context, team *models.Team) (int, bool, error) {
	var id int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id FROM teams
		WHERE club_id = $1 AND series_id = $2 AND league_id = $3
	`, team.ClubID, team.SeriesID, team.LeagueID).Scan(&id)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = r.db.Pool.QueryRow(ctx, `
			INSERT INTO teams (club_id, series_id, league_id, team_name, team_alias, display_name)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, team.ClubID, team.SeriesID, team.LeagueID,
			team.TeamName, team.TeamAlias, team.DisplayName).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert team %s: %w", team.TeamName, err)
		}
		team.ID = id
		return id, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("failed to look up team %s: %w", team.TeamName, err)

	default:
		_, err = r.db.Pool.Exec(ctx, `
			UPDATE teams SET
				team_name = $1,
				team_alias = $2,
				display_name = $3,
				updated_at = NOW()
			WHERE id = $4
		`, team.TeamName, team.TeamAlias, team.DisplayName, id)
		if err != nil {
			return 0, false, fmt.Errorf("failed to update team %s: %w", team.TeamName, err)
		}
		team.ID = id
		return id, false, nil
	}
}

// GetByNaturalKey retrieves a team by (club_id, series_id, league_id).
// The boolean is false when no such team exists.
func (r *TeamRepository) GetByNaturalKey(ctx context.Context, key models.TeamKey) (*models.Team, bool, error) {
	query := `
		SELECT id, club_id, series_id, league_id, team_name, team_alias, display_name,
		       created_at, updated_at
		FROM teams
		WHERE club_id = $1 AND series_id = $2 AND league_id = $3
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, key.ClubID, key.SeriesID, key.LeagueID).Scan(
		&team.ID, &team.ClubID, &team.SeriesID, &team.LeagueID,
		&team.TeamName, &team.TeamAlias, &team.DisplayName,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, true, nil
}

// IDByName retrieves a team id by (team_name, league_id). The boolean is
// false when no such team exists.
func (r *TeamRepository) IDByName(ctx context.Context, teamName string, leagueID int) (int, bool, error) {
	var id int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id FROM teams WHERE team_name = $1 AND league_id = $2
	`, teamName, leagueID).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get team by name: %w", err)
	}

	return id, true, nil
}

// IDsByNameAndLeague returns a "team_name|league_code" to surrogate-id map
// for all teams, for bulk loaders that resolve scraped team names.
func (r *TeamRepository) IDsByNameAndLeague(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT t.team_name, l.league_id, t.id
		FROM teams t
		JOIN leagues l ON l.id = t.league_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var name, code string
		var id int
		if err := rows.Scan(&name, &code, &id); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		ids[name+"|"+code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return ids, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

// CountInvalid returns the number of teams whose league, club or series
// foreign key fails to resolve. Any nonzero value is a critical condition.
func (r *TeamRepository) CountInvalid(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM teams t
		LEFT JOIN leagues l ON l.id = t.league_id
		LEFT JOIN clubs c ON c.id = t.club_id
		LEFT JOIN series s ON s.id = t.series_id
		WHERE l.id IS NULL OR c.id IS NULL OR s.id IS NULL
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invalid teams: %w", err)
	}
	return count, nil
}
