package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaguesync/importer/internal/models"
)

// MatchRepository handles match result and player history bulk loads.
// Both tables are fully rebuilt every run, so loads are insert-only,
// batched, with a commit per batch.
type MatchRepository struct {
	db *Database
}

// InsertResultsBatch inserts one batch of match results inside a single
// transaction on the session's connection.
func (r *MatchRepository) InsertResultsBatch(ctx context.Context, sess *Session, results []*models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := sess.Conn().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin match batch: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]interface{}, 0, len(results))
	for _, m := range results {
		rows = append(rows, []interface{}{
			m.LeagueID, m.MatchDate, m.HomeTeam, m.AwayTeam,
			m.HomeTeamID, m.AwayTeamID,
			m.HomePlayer1ID, m.HomePlayer2ID, m.AwayPlayer1ID, m.AwayPlayer2ID,
			m.Scores, m.Winner,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"match_results"},
		[]string{
			"league_id", "match_date", "home_team", "away_team",
			"home_team_id", "away_team_id",
			"home_player_1_id", "home_player_2_id", "away_player_1_id", "away_player_2_id",
			"scores", "winner",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy match results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit match batch: %w", err)
	}

	sess.Record(len(results))
	return nil
}

// InsertHistoryBatch inserts one batch of player history rows.
func (r *MatchRepository) InsertHistoryBatch(ctx context.Context, sess *Session, entries []*models.PlayerHistory) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := sess.Conn().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin history batch: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]interface{}, 0, len(entries))
	for _, h := range entries {
		rows = append(rows, []interface{}{
			h.PlayerID, h.LeagueID, h.Series, h.MatchDate, h.EndPTI,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"player_history"},
		[]string{"player_id", "league_id", "series", "match_date", "end_pti"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy player history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit history batch: %w", err)
	}

	sess.Record(len(entries))
	return nil
}

// CountResults returns the total number of match results
func (r *MatchRepository) CountResults(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM match_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count match results: %w", err)
	}
	return count, nil
}
