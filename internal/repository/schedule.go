package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// ScheduleRepository handles schedule bulk loads
type ScheduleRepository struct {
	db *Database
}

// InsertBatch inserts one batch of schedule rows inside a single
// transaction on the session's connection.
func (r *ScheduleRepository) InsertBatch(ctx context.Context, sess *Session, entries []*models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := sess.Conn().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin schedule batch: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.LeagueID, e.MatchDate, e.MatchTime,
			e.HomeTeam, e.AwayTeam, e.HomeTeamID, e.AwayTeamID, e.Location,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"schedule"},
		[]string{
			"league_id", "match_date", "match_time",
			"home_team", "away_team", "home_team_id", "away_team_id", "location",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy schedule entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedule batch: %w", err)
	}

	sess.Record(len(entries))
	return nil
}

// Count returns the total number of schedule rows
func (r *ScheduleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM schedule`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schedule entries: %w", err)
	}
	return count, nil
}
