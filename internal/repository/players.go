package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player by the four-part external key
// (tenniscores_player_id, league_id, club_id, series_id).
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (
			tenniscores_player_id, first_name, last_name,
			league_id, club_id, series_id, team_id,
			pti, wins, losses, captain, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT ON CONSTRAINT players_external_scope_key DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			team_id = EXCLUDED.team_id,
			pti = EXCLUDED.pti,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			captain = EXCLUDED.captain,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.TenniscoresPlayerID, player.FirstName, player.LastName,
		player.LeagueID, player.ClubID, player.SeriesID, player.TeamID,
		player.PTI, player.Wins, player.Losses, player.Captain, player.IsActive,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.TenniscoresPlayerID, err)
	}

	return nil
}

// UpdateCareerStats sets the cumulative career W-L for every scope row of
// the external id. Career totals come from the history document, not the
// roster, so they are written separately from Upsert.
func (r *PlayerRepository) UpdateCareerStats(ctx context.Context, externalID string, wins, losses int) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE players
		SET career_wins = $2, career_losses = $3, updated_at = NOW()
		WHERE tenniscores_player_id = $1
	`, externalID, wins, losses)
	if err != nil {
		return fmt.Errorf("failed to update career stats for %s: %w", externalID, err)
	}
	return nil
}

// CareerStats returns the stored career W-L for the external id.
func (r *PlayerRepository) CareerStats(ctx context.Context, externalID string) (wins, losses int, err error) {
	err = r.db.Pool.QueryRow(ctx, `
		SELECT career_wins, career_losses FROM players
		WHERE tenniscores_player_id = $1
		ORDER BY id LIMIT 1
	`, externalID).Scan(&wins, &losses)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read career stats for %s: %w", externalID, err)
	}
	return wins, losses, nil
}

// ExistsActive reports whether an active player row exists for the external
// id, in any scope.
func (r *PlayerRepository) ExistsActive(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM players
			WHERE tenniscores_player_id = $1 AND is_active
		)
	`, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check player existence: %w", err)
	}
	return exists, nil
}

// FindByNameScope searches current active players by name within a
// (league, club, series) scope. Club and series narrow the search when
// nonzero. Results are ordered deterministically.
func (r *PlayerRepository) FindByNameScope(ctx context.Context, firstName, lastName string, leagueID, clubID, seriesID int) ([]*models.Player, error) {
	query := `
		SELECT id, tenniscores_player_id, first_name, last_name,
		       league_id, club_id, series_id, team_id, pti, wins, losses,
		       captain, is_active, created_at, updated_at
		FROM players
		WHERE is_active
		  AND LOWER(first_name) = LOWER($1)
		  AND LOWER(last_name) = LOWER($2)
		  AND league_id = $3
		  AND ($4 = 0 OR club_id = $4)
		  AND ($5 = 0 OR series_id = $5)
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query, firstName, lastName, leagueID, clubID, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to search players by name: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// FindByNameAnyLeague searches active players by full name across all
// leagues. Last-resort lookup for substitute players known only by the name
// string on a match-history row.
func (r *PlayerRepository) FindByNameAnyLeague(ctx context.Context, fullName string) ([]*models.Player, error) {
	query := `
		SELECT id, tenniscores_player_id, first_name, last_name,
		       league_id, club_id, series_id, team_id, pti, wins, losses,
		       captain, is_active, created_at, updated_at
		FROM players
		WHERE is_active
		  AND LOWER(first_name || ' ' || last_name) = LOWER($1)
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to search players cross-league: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// TeamsForUser returns the teams the user's associated players currently
// belong to, with the league code for each. Used by the restore heuristics.
func (r *PlayerRepository) TeamsForUser(ctx context.Context, userID int) ([]models.UserTeam, error) {
	query := `
		SELECT DISTINCT t.id, t.team_name, s.name, l.league_id
		FROM user_player_associations upa
		JOIN players p ON p.tenniscores_player_id = upa.tenniscores_player_id
		JOIN teams t ON t.id = p.team_id
		JOIN series s ON s.id = t.series_id
		JOIN leagues l ON l.id = t.league_id
		WHERE upa.user_id = $1 AND p.is_active
		ORDER BY t.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user %d: %w", userID, err)
	}
	defer rows.Close()

	var teams []models.UserTeam
	for rows.Next() {
		var ut models.UserTeam
		if err := rows.Scan(&ut.TeamID, &ut.TeamName, &ut.SeriesName, &ut.LeagueCode); err != nil {
			return nil, fmt.Errorf("failed to scan user team: %w", err)
		}
		teams = append(teams, ut)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user teams: %w", err)
	}

	return teams, nil
}

// IDByExternalID returns the surrogate id of any row carrying the external
// id. The boolean is false when the id is unknown.
func (r *PlayerRepository) IDByExternalID(ctx context.Context, externalID string) (int, bool, error) {
	var id int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id FROM players
		WHERE tenniscores_player_id = $1
		ORDER BY id
		LIMIT 1
	`, externalID).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get player by external id: %w", err)
	}

	return id, true, nil
}

// Count returns the total number of players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

func scanPlayers(rows pgx.Rows) ([]*models.Player, error) {
	var players []*models.Player
	for rows.Next() {
		var p models.Player
		err := rows.Scan(
			&p.ID, &p.TenniscoresPlayerID, &p.FirstName, &p.LastName,
			&p.LeagueID, &p.ClubID, &p.SeriesID, &p.TeamID, &p.PTI,
			&p.Wins, &p.Losses, &p.Captain, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}
