package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BackupRepository manages the run-scoped shadow tables taken before the
// destructive clear and the old-to-new team id mapping computed after the
// rebuild. Shadow tables are named backup_<name>_<stamp> and dropped only
// once restore and validation succeed.
type BackupRepository struct {
	db *Database
}

// ProtectedTables hold user-generated content and must NEVER appear in the
// clear list. The clear phase refuses to run if one does.
var ProtectedTables = []string{
	"users",
	"user_player_associations",
	"polls",
	"captain_messages",
	"player_availability",
}

// ClearTables are the rebuildable tables, in strict reverse-dependency
// order: children first, leagues last.
var ClearTables = []string{
	"schedule",
	"series_stats",
	"match_results",
	"player_history",
	"players",
	"teams",
	"series_leagues",
	"club_leagues",
	"series",
	"clubs",
	"leagues",
}

var stampPattern = regexp.MustCompile(`^[0-9_]+$`)

// NewStamp returns a shadow-table stamp for the current run.
func NewStamp() string {
	return time.Now().UTC().Format("20060102_150405")
}

func validStamp(stamp string) error {
	if !stampPattern.MatchString(stamp) {
		return fmt.Errorf("invalid backup stamp %q", stamp)
	}
	return nil
}

// VerifyClearListSafe returns an error if any protected table name appears
// in the clear list. Called before every clear as a hard gate.
func VerifyClearListSafe(clearList []string) error {
	protected := make(map[string]bool, len(ProtectedTables))
	for _, t := range ProtectedTables {
		protected[t] = true
	}
	for _, t := range clearList {
		if protected[t] {
			return fmt.Errorf("refusing to clear protected table %q", t)
		}
	}
	return nil
}

// Snapshot copies every table holding a team-shaped reference into
// run-scoped shadow tables, stamped with the run stamp. The teams snapshot
// is denormalized to the name-based natural key (club name, series name,
// league code) because every surrogate id in the reference tables is
// reassigned by the rebuild.
func (r *BackupRepository) Snapshot(ctx context.Context, stamp string) error {
	if err := validStamp(stamp); err != nil {
		return err
	}

	statements := []struct {
		name string
		sql  string
	}{
		{"teams", fmt.Sprintf(`
			CREATE TABLE backup_teams_%s AS
			SELECT t.id AS old_team_id,
			       t.team_name,
			       c.name AS club_name,
			       s.name AS series_name,
			       l.league_id AS league_code
			FROM teams t
			JOIN clubs c ON c.id = t.club_id
			JOIN series s ON s.id = t.series_id
			JOIN leagues l ON l.id = t.league_id`, stamp)},
		{"series", fmt.Sprintf(`
			CREATE TABLE backup_series_%s AS
			SELECT id AS old_series_id, name
			FROM series`, stamp)},
		{"polls", fmt.Sprintf(`
			CREATE TABLE backup_polls_%s AS SELECT * FROM polls`, stamp)},
		{"captain_messages", fmt.Sprintf(`
			CREATE TABLE backup_captain_messages_%s AS SELECT * FROM captain_messages`, stamp)},
		{"user_associations", fmt.Sprintf(`
			CREATE TABLE backup_user_associations_%s AS SELECT * FROM user_player_associations`, stamp)},
		{"availability", fmt.Sprintf(`
			CREATE TABLE backup_availability_%s AS
			SELECT a.*, s.name AS series_name
			FROM player_availability a
			LEFT JOIN series s ON s.id = a.series_id`, stamp)},
		{"user_contexts", fmt.Sprintf(`
			CREATE TABLE backup_user_contexts_%s AS
			SELECT u.id AS user_id, l.league_id AS league_code
			FROM users u
			JOIN leagues l ON l.id = u.league_context
			WHERE u.league_context IS NOT NULL`, stamp)},
		{"practices", fmt.Sprintf(`
			CREATE TABLE backup_practices_%s AS
			SELECT e.match_date, e.match_time, e.home_team, e.away_team,
			       e.location,
			       l.league_id AS league_code,
			       c.name AS club_name,
			       s.name AS series_name
			FROM schedule e
			LEFT JOIN teams t ON t.id = e.home_team_id
			LEFT JOIN clubs c ON c.id = t.club_id
			LEFT JOIN series s ON s.id = t.series_id
			LEFT JOIN leagues l ON l.id = e.league_id
			WHERE e.home_team LIKE '%%Practice%%'`, stamp)},
	}

	for _, stmt := range statements {
		if _, err := r.db.Pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", stmt.name, err)
		}
		log.Debug().Str("table", stmt.name).Str("stamp", stamp).Msg("Shadow table created")
	}

	return nil
}

// BackedUpTeamCount returns the number of teams captured in the snapshot.
func (r *BackupRepository) BackedUpTeamCount(ctx context.Context, stamp string) (int, error) {
	if err := validStamp(stamp); err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM backup_teams_%s`, stamp)
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count backed-up teams: %w", err)
	}
	return count, nil
}

// LeagueForOldTeam returns the league code the given pre-clear team id
// belonged to, from the teams snapshot. Used by the restore heuristics to
// keep a repaired record in its original league.
func (r *BackupRepository) LeagueForOldTeam(ctx context.Context, stamp string, oldTeamID int) (string, bool, error) {
	if err := validStamp(stamp); err != nil {
		return "", false, err
	}

	var code string
	query := fmt.Sprintf(`SELECT league_code FROM backup_teams_%s WHERE old_team_id = $1`, stamp)
	err := r.db.Pool.QueryRow(ctx, query, oldTeamID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up old team %d league: %w", oldTeamID, err)
	}
	return code, true, nil
}

// Clear deletes all rebuildable tables in reverse-dependency order inside a
// single transaction, after verifying the clear list touches no protected
// table.
func (r *BackupRepository) Clear(ctx context.Context) error {
	if err := VerifyClearListSafe(ClearTables); err != nil {
		return err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range ClearTables {
		tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		log.Info().
			Str("phase", "clear").
			Str("table", table).
			Int64("rows", tag.RowsAffected()).
			Msg("Table cleared")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}

	return nil
}

// BuildTeamMapping joins the teams snapshot to the rebuilt teams table on
// the name-based natural key and materializes the old-to-new id mapping.
// Returns the number of mapped teams.
func (r *BackupRepository) BuildTeamMapping(ctx context.Context, stamp string) (int, error) {
	if err := validStamp(stamp); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		CREATE TABLE team_id_mapping_%[1]s AS
		SELECT b.old_team_id, t.id AS new_team_id
		FROM backup_teams_%[1]s b
		JOIN leagues l ON l.league_id = b.league_code
		JOIN clubs c ON LOWER(c.name) = LOWER(b.club_name)
		JOIN series s ON s.name = b.series_name
		JOIN teams t ON t.club_id = c.id
		           AND t.series_id = s.id
		           AND t.league_id = l.id
	`, stamp)

	if _, err := r.db.Pool.Exec(ctx, query); err != nil {
		return 0, fmt.Errorf("failed to build team id mapping: %w", err)
	}

	var count int
	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM team_id_mapping_%s`, stamp)
	if err := r.db.Pool.QueryRow(ctx, countQ).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team id mapping: %w", err)
	}

	log.Info().Int("mapped", count).Msg("Team id mapping built")
	return count, nil
}

// RemapTeamReferences applies the id mapping to every dependent table via a
// direct UPDATE ... FROM join. Returns rows updated per table.
func (r *BackupRepository) RemapTeamReferences(ctx context.Context, stamp string) (map[string]int64, error) {
	if err := validStamp(stamp); err != nil {
		return nil, err
	}

	updates := []struct {
		table string
		sql   string
	}{
		{"polls", fmt.Sprintf(`
			UPDATE polls p
			SET team_id = m.new_team_id
			FROM team_id_mapping_%s m
			WHERE p.team_id = m.old_team_id`, stamp)},
		{"captain_messages", fmt.Sprintf(`
			UPDATE captain_messages cm
			SET team_id = m.new_team_id
			FROM team_id_mapping_%s m
			WHERE cm.team_id = m.old_team_id`, stamp)},
	}

	updated := make(map[string]int64)
	for _, u := range updates {
		tag, err := r.db.Pool.Exec(ctx, u.sql)
		if err != nil {
			return nil, fmt.Errorf("failed to remap %s: %w", u.table, err)
		}
		updated[u.table] = tag.RowsAffected()
		log.Info().
			Str("phase", "restore").
			Str("table", u.table).
			Int64("rows", tag.RowsAffected()).
			Msg("Team references remapped")
	}

	return updated, nil
}

// RestorePractices re-inserts the practice blocks captured in the snapshot,
// resolving their teams against the rebuilt set by natural key. Returns the
// number of restored rows.
func (r *BackupRepository) RestorePractices(ctx context.Context, stamp string) (int64, error) {
	if err := validStamp(stamp); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO schedule (league_id, match_date, match_time, home_team, away_team, home_team_id, location)
		SELECT l.id, b.match_date, b.match_time, b.home_team, b.away_team, t.id, b.location
		FROM backup_practices_%[1]s b
		LEFT JOIN leagues l ON l.league_id = b.league_code
		LEFT JOIN clubs c ON LOWER(c.name) = LOWER(b.club_name)
		LEFT JOIN series s ON s.name = b.series_name
		LEFT JOIN teams t ON t.club_id = c.id
		                 AND t.series_id = s.id
		                 AND t.league_id = l.id
	`, stamp)

	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to restore practice entries: %w", err)
	}

	log.Info().Int64("rows", tag.RowsAffected()).Msg("Practice entries restored")
	return tag.RowsAffected(), nil
}

// RestoreLeagueContexts repoints users.league_context at the rebuilt league
// rows by league code.
func (r *BackupRepository) RestoreLeagueContexts(ctx context.Context, stamp string) (int64, error) {
	if err := validStamp(stamp); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE users u
		SET league_context = l.id
		FROM backup_user_contexts_%s b
		JOIN leagues l ON l.league_id = b.league_code
		WHERE u.id = b.user_id
	`, stamp)

	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to restore league contexts: %w", err)
	}

	log.Info().Int64("rows", tag.RowsAffected()).Msg("User league contexts restored")
	return tag.RowsAffected(), nil
}

// RemapAvailabilitySeries repoints player_availability.series_id at the
// rebuilt series rows by series name.
func (r *BackupRepository) RemapAvailabilitySeries(ctx context.Context, stamp string) (int64, error) {
	if err := validStamp(stamp); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE player_availability a
		SET series_id = s.id
		FROM backup_availability_%s b
		JOIN series s ON s.name = b.series_name
		WHERE a.id = b.id AND b.series_name IS NOT NULL
	`, stamp)

	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to remap availability series: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Drop removes all shadow tables for the stamp. Called only after restore
// and validation have succeeded.
func (r *BackupRepository) Drop(ctx context.Context, stamp string) error {
	if err := validStamp(stamp); err != nil {
		return err
	}

	tables := []string{
		"team_id_mapping_" + stamp,
		"backup_teams_" + stamp,
		"backup_series_" + stamp,
		"backup_polls_" + stamp,
		"backup_captain_messages_" + stamp,
		"backup_user_associations_" + stamp,
		"backup_availability_" + stamp,
		"backup_user_contexts_" + stamp,
		"backup_practices_" + stamp,
	}

	for _, table := range tables {
		if _, err := r.db.Pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("failed to drop shadow table %s: %w", table, err)
		}
	}

	log.Info().Str("stamp", stamp).Msg("Shadow tables dropped")
	return nil
}
