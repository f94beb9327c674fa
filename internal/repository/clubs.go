package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// ClubRepository handles club database operations
type ClubRepository struct {
	db *Database
}

// Upsert inserts or updates a club by its case-insensitive name. When an
// existing row differs only in capitalization, the stored name is replaced
// by the incoming one (the resolver has already chosen the best variant).
func (r *ClubRepository) Upsert(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name)
		VALUES ($1)
		ON CONFLICT (LOWER(name)) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, club.Name).
		Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert club %s: %w", club.Name, err)
	}

	return nil
}

// GetByName retrieves a club by name, case-insensitively. The boolean is
// false when no such club exists.
func (r *ClubRepository) GetByName(ctx context.Context, name string) (*models.Club, bool, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM clubs
		WHERE LOWER(name) = LOWER($1)
	`

	var club models.Club
	err := r.db.Pool.QueryRow(ctx, query, name).
		Scan(&club.ID, &club.Name, &club.CreatedAt, &club.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get club: %w", err)
	}

	return &club, true, nil
}

// IDsByName returns a lower-cased name to surrogate-id map for all clubs.
func (r *ClubRepository) IDsByName(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT LOWER(name), id FROM clubs`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var name string
		var id int
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}

	return ids, nil
}

// LinkLeague records a club-league association, ignoring duplicates.
func (r *ClubRepository) LinkLeague(ctx context.Context, clubID, leagueID int) error {
	query := `
		INSERT INTO club_leagues (club_id, league_id)
		VALUES ($1, $2)
		ON CONFLICT (club_id, league_id) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, query, clubID, leagueID); err != nil {
		return fmt.Errorf("failed to link club %d to league %d: %w", clubID, leagueID, err)
	}
	return nil
}

// Count returns the total number of clubs
func (r *ClubRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	return count, nil
}
