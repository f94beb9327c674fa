package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/models"
)

// LeagueRepository handles league database operations
type LeagueRepository struct {
	db *Database
}

// Upsert inserts or updates a league by its natural key (the string code).
// Leagues are never deleted mid-run; re-import only upserts.
func (r *LeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (league_id, league_name, league_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (league_id) DO UPDATE SET
			league_name = EXCLUDED.league_name,
			league_url = EXCLUDED.league_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		league.LeagueID, league.LeagueName, league.LeagueURL,
	).Scan(&league.ID, &league.CreatedAt, &league.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert league %s: %w", league.LeagueID, err)
	}

	log.Debug().
		Int("id", league.ID).
		Str("league_id", league.LeagueID).
		Msg("League upserted")

	return nil
}

// GetByCode retrieves a league by its string code. The boolean is false when
// no league with that code exists.
func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (*models.League, bool, error) {
	query := `
		SELECT id, league_id, league_name, league_url, created_at, updated_at
		FROM leagues
		WHERE league_id = $1
	`

	var league models.League
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&league.ID, &league.LeagueID, &league.LeagueName, &league.LeagueURL,
		&league.CreatedAt, &league.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get league: %w", err)
	}

	return &league, true, nil
}

// IDsByCode returns a code to surrogate-id map for all leagues.
func (r *LeagueRepository) IDsByCode(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT league_id, id FROM leagues`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var code string
		var id int
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		ids[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leagues: %w", err)
	}

	return ids, nil
}

// Count returns the total number of leagues
func (r *LeagueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM leagues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leagues: %w", err)
	}
	return count, nil
}
