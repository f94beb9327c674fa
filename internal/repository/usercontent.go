package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/models"
)

// UserContentRepository handles the user-generated tables the importer must
// never truncate: polls, captain messages, practice schedule rows and user
// league contexts. Its writes are limited to repairing team references.
type UserContentRepository struct {
	db *Database
}

// OrphanedPolls returns polls whose non-null team_id does not resolve to an
// existing team.
func (r *UserContentRepository) OrphanedPolls(ctx context.Context) ([]*models.Poll, error) {
	query := `
		SELECT p.id, p.team_id, p.created_by, p.question, p.created_at
		FROM polls p
		WHERE p.team_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = p.team_id)
		ORDER BY p.id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned polls: %w", err)
	}
	defer rows.Close()

	var polls []*models.Poll
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.TeamID, &p.CreatedBy, &p.Question, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	return polls, nil
}

// OrphanedCaptainMessages returns captain messages whose team_id does not
// resolve to an existing team.
func (r *UserContentRepository) OrphanedCaptainMessages(ctx context.Context) ([]*models.CaptainMessage, error) {
	query := `
		SELECT m.id, m.team_id, m.captain_user_id, m.message, m.created_at
		FROM captain_messages m
		WHERE NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = m.team_id)
		ORDER BY m.id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned captain messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.CaptainMessage
	for rows.Next() {
		var m models.CaptainMessage
		if err := rows.Scan(&m.ID, &m.TeamID, &m.CaptainUserID, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan captain message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating captain messages: %w", err)
	}

	return msgs, nil
}

// SetPollTeam repoints a poll at a team, or nulls the reference when teamID
// is nil (the last-resort repair for a nullable column).
func (r *UserContentRepository) SetPollTeam(ctx context.Context, pollID int, teamID *int) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE polls SET team_id = $1 WHERE id = $2`, teamID, pollID)
	if err != nil {
		return fmt.Errorf("failed to update poll %d team: %w", pollID, err)
	}
	return nil
}

// SetCaptainMessageTeam repoints a captain message at a team.
func (r *UserContentRepository) SetCaptainMessageTeam(ctx context.Context, messageID, teamID int) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE captain_messages SET team_id = $1 WHERE id = $2`, teamID, messageID)
	if err != nil {
		return fmt.Errorf("failed to update captain message %d team: %w", messageID, err)
	}
	return nil
}

// DeleteCaptainMessage deletes a message whose NOT NULL team reference could
// not be repaired. Callers count and report every deletion.
func (r *UserContentRepository) DeleteCaptainMessage(ctx context.Context, messageID int) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM captain_messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete captain message %d: %w", messageID, err)
	}
	log.Warn().Int("message_id", messageID).Msg("Captain message deleted: team unmappable")
	return nil
}

// OrphanCounts returns, per dependent table, the number of non-null team
// references that do not resolve to an existing team.
func (r *UserContentRepository) OrphanCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	queries := map[string]string{
		"polls": `
			SELECT COUNT(*) FROM polls p
			WHERE p.team_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = p.team_id)`,
		"captain_messages": `
			SELECT COUNT(*) FROM captain_messages m
			WHERE NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = m.team_id)`,
		"practice_schedule": `
			SELECT COUNT(*) FROM schedule e
			WHERE e.home_team LIKE '%Practice%'
			  AND e.home_team_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = e.home_team_id)`,
	}

	for table, query := range queries {
		var n int
		if err := r.db.Pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count orphans in %s: %w", table, err)
		}
		counts[table] = n
	}

	return counts, nil
}
