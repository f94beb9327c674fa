package backup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/repository"
)

// Manager drives the backup / clear / rebuild / restore state machine
// around the destructive reload. Rebuild itself is owned by the importer;
// the manager owns everything that protects user-generated content across
// it. Each phase is individually retryable.
type Manager struct {
	db    *repository.Database
	stamp string

	backedUpTeams int
}

func NewManager(db *repository.Database) *Manager {
	return &Manager{db: db, stamp: repository.NewStamp()}
}

// Stamp returns the shadow-table stamp for this run.
func (m *Manager) Stamp() string {
	return m.stamp
}

// BackedUpTeams returns the team count captured by Backup, used as the
// denominator of the preservation rate.
func (m *Manager) BackedUpTeams() int {
	return m.backedUpTeams
}

// Backup snapshots every table holding a team-shaped reference into
// run-scoped shadow tables.
func (m *Manager) Backup(ctx context.Context) error {
	if err := m.db.Backup.Snapshot(ctx, m.stamp); err != nil {
		return fmt.Errorf("backup phase failed: %w", err)
	}

	count, err := m.db.Backup.BackedUpTeamCount(ctx, m.stamp)
	if err != nil {
		return fmt.Errorf("backup phase failed: %w", err)
	}
	m.backedUpTeams = count

	log.Info().Str("stamp", m.stamp).Int("teams", count).Msg("Backup phase complete")
	return nil
}

// Clear deletes the rebuildable tables in reverse-dependency order. The
// protected-table gate inside the repository refuses to run otherwise.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.db.Backup.Clear(ctx); err != nil {
		return fmt.Errorf("clear phase failed: %w", err)
	}
	return nil
}

// RestoreResult summarizes the restore phase for the run report.
type RestoreResult struct {
	MappedTeams       int
	Remapped          map[string]int64
	PracticesRestored int64
	ContextsRestored  int64
	Repair            RepairResult
}

// Restore runs after the rebuild: it maps old team ids to new ones by
// natural key, applies the mapping to every dependent table, re-inserts
// practice blocks, restores user league contexts, and finally repairs any
// references the mapping could not cover.
func (m *Manager) Restore(ctx context.Context) (*RestoreResult, error) {
	result := &RestoreResult{}

	mapped, err := m.db.Backup.BuildTeamMapping(ctx, m.stamp)
	if err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}
	result.MappedTeams = mapped

	remapped, err := m.db.Backup.RemapTeamReferences(ctx, m.stamp)
	if err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}
	result.Remapped = remapped

	practices, err := m.db.Backup.RestorePractices(ctx, m.stamp)
	if err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}
	result.PracticesRestored = practices

	contexts, err := m.db.Backup.RestoreLeagueContexts(ctx, m.stamp)
	if err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}
	result.ContextsRestored = contexts

	if _, err := m.db.Backup.RemapAvailabilitySeries(ctx, m.stamp); err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}

	repair, err := m.RepairOrphans(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore phase failed: %w", err)
	}
	result.Repair = *repair

	log.Info().
		Int("mapped_teams", result.MappedTeams).
		Int64("practices_restored", result.PracticesRestored).
		Int64("contexts_restored", result.ContextsRestored).
		Msg("Restore phase complete")

	return result, nil
}

// RepairResult counts heuristic repairs and last-resort discards.
type RepairResult struct {
	PollsRepaired    int
	PollsNulled      int
	MessagesRepaired int
	MessagesDeleted  int
}

// RepairOrphans applies content-based heuristics to every record whose
// team reference survived neither the id mapping nor the rebuild. Polls
// that cannot be repaired are nulled; captain messages are deleted. Also
// invoked standalone by the health validator's repair cycle.
func (m *Manager) RepairOrphans(ctx context.Context) (*RepairResult, error) {
	result := &RepairResult{}

	polls, err := m.db.UserContent.OrphanedPolls(ctx)
	if err != nil {
		return nil, err
	}
	for _, poll := range polls {
		teams, err := m.db.Players.TeamsForUser(ctx, poll.CreatedBy)
		if err != nil {
			return nil, err
		}

		oldLeague, err := m.oldLeague(ctx, int(poll.TeamID.Int64))
		if err != nil {
			return nil, err
		}

		if teamID, ok := MatchTeamByContent(poll.Question, teams, oldLeague); ok {
			if err := m.db.UserContent.SetPollTeam(ctx, poll.ID, &teamID); err != nil {
				return nil, err
			}
			result.PollsRepaired++
			metrics.OrphansRepaired.WithLabelValues("polls", "content").Inc()
			continue
		}
		if teamID, ok := PrimaryTeam(teams); ok {
			if err := m.db.UserContent.SetPollTeam(ctx, poll.ID, &teamID); err != nil {
				return nil, err
			}
			result.PollsRepaired++
			metrics.OrphansRepaired.WithLabelValues("polls", "primary_team").Inc()
			continue
		}

		if err := m.db.UserContent.SetPollTeam(ctx, poll.ID, nil); err != nil {
			return nil, err
		}
		result.PollsNulled++
		metrics.OrphansDiscarded.WithLabelValues("polls", "nulled").Inc()
		log.Warn().Int("poll_id", poll.ID).Msg("Orphaned poll nulled, no owner team found")
	}

	messages, err := m.db.UserContent.OrphanedCaptainMessages(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range messages {
		teams, err := m.db.Players.TeamsForUser(ctx, msg.CaptainUserID)
		if err != nil {
			return nil, err
		}

		oldLeague, err := m.oldLeague(ctx, msg.TeamID)
		if err != nil {
			return nil, err
		}

		if teamID, ok := MatchTeamByContent(msg.Message, teams, oldLeague); ok {
			if err := m.db.UserContent.SetCaptainMessageTeam(ctx, msg.ID, teamID); err != nil {
				return nil, err
			}
			result.MessagesRepaired++
			metrics.OrphansRepaired.WithLabelValues("captain_messages", "content").Inc()
			continue
		}
		if teamID, ok := PrimaryTeam(teams); ok {
			if err := m.db.UserContent.SetCaptainMessageTeam(ctx, msg.ID, teamID); err != nil {
				return nil, err
			}
			result.MessagesRepaired++
			metrics.OrphansRepaired.WithLabelValues("captain_messages", "primary_team").Inc()
			continue
		}

		// team_id is NOT NULL here, so deletion is the only remaining move.
		if err := m.db.UserContent.DeleteCaptainMessage(ctx, msg.ID); err != nil {
			return nil, err
		}
		result.MessagesDeleted++
		metrics.OrphansDiscarded.WithLabelValues("captain_messages", "deleted").Inc()
	}

	if result.PollsRepaired+result.PollsNulled+result.MessagesRepaired+result.MessagesDeleted > 0 {
		log.Info().
			Int("polls_repaired", result.PollsRepaired).
			Int("polls_nulled", result.PollsNulled).
			Int("messages_repaired", result.MessagesRepaired).
			Int("messages_deleted", result.MessagesDeleted).
			Msg("Orphan repair complete")
	}

	return result, nil
}

// oldLeague resolves the league the orphan's pre-clear team belonged to,
// so the content heuristics prefer owner teams in that league.
func (m *Manager) oldLeague(ctx context.Context, oldTeamID int) (string, error) {
	if oldTeamID == 0 {
		return "", nil
	}
	code, found, err := m.db.Backup.LeagueForOldTeam(ctx, m.stamp, oldTeamID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return code, nil
}

// Finalize drops the shadow tables. Called only after restore and health
// validation succeed.
func (m *Manager) Finalize(ctx context.Context) error {
	return m.db.Backup.Drop(ctx, m.stamp)
}
