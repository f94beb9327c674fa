package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// StatsRepository handles series standings bulk loads
type StatsRepository struct {
	db *Database
}

// InsertBatch inserts one batch of standings rows inside a single
// transaction on the session's connection.
func (r *StatsRepository) InsertBatch(ctx context.Context, sess *Session, stats []*models.SeriesStats) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := sess.Conn().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin stats batch: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]interface{}, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []interface{}{
			s.LeagueID, s.SeriesID, s.TeamID, s.Series, s.Team, s.Points,
			s.MatchesWon, s.MatchesLost, s.LinesWon, s.LinesLost,
			s.SetsWon, s.SetsLost, s.GamesWon, s.GamesLost,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"series_stats"},
		[]string{
			"league_id", "series_id", "team_id", "series", "team", "points",
			"matches_won", "matches_lost", "lines_won", "lines_lost",
			"sets_won", "sets_lost", "games_won", "games_lost",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy series stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stats batch: %w", err)
	}

	sess.Record(len(stats))
	return nil
}

// Count returns the total number of standings rows
func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM series_stats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count series stats: %w", err)
	}
	return count, nil
}
