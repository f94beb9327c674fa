package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// SeriesRepository handles series database operations
type SeriesRepository struct {
	db *Database
}

// Upsert inserts or updates a series by name. The display name is kept when
// the incoming record has none.
func (r *SeriesRepository) Upsert(ctx context.Context, series *models.Series) error {
	query := `
		INSERT INTO series (name, display_name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			display_name = CASE
				WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name
				ELSE series.display_name
			END,
			updated_at = NOW()
		RETURNING id, display_name, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, series.Name, series.DisplayName).
		Scan(&series.ID, &series.DisplayName, &series.CreatedAt, &series.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert series %s: %w", series.Name, err)
	}

	return nil
}

// GetByName retrieves a series by its database name. The boolean is false
// when no such series exists.
func (r *SeriesRepository) GetByName(ctx context.Context, name string) (*models.Series, bool, error) {
	query := `
		SELECT id, name, display_name, created_at, updated_at
		FROM series
		WHERE name = $1
	`

	var series models.Series
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&series.ID, &series.Name, &series.DisplayName,
		&series.CreatedAt, &series.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get series: %w", err)
	}

	return &series, true, nil
}

// IDsByName returns a name to surrogate-id map for all series.
func (r *SeriesRepository) IDsByName(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT name, id FROM series`)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var name string
		var id int
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}

	return ids, nil
}

// LinkLeague records a series-league association, ignoring duplicates.
func (r *SeriesRepository) LinkLeague(ctx context.Context, seriesID, leagueID int) error {
	query := `
		INSERT INTO series_leagues (series_id, league_id)
		VALUES ($1, $2)
		ON CONFLICT (series_id, league_id) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, query, seriesID, leagueID); err != nil {
		return fmt.Errorf("failed to link series %d to league %d: %w", seriesID, leagueID, err)
	}
	return nil
}

// Count returns the total number of series
func (r *SeriesRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM series`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count series: %w", err)
	}
	return count, nil
}
