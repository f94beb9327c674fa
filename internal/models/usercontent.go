package models

import (
	"database/sql"
	"time"
)

// User-generated content. These rows are never truncated by a reload; the
// importer's job is to keep their team references valid across the refresh.

// Poll is a team poll. team_id is nullable: a poll that cannot be remapped
// after a reload is nulled, never deleted.
type Poll struct {
	ID        int           `db:"id"`
	TeamID    sql.NullInt64 `db:"team_id"`
	CreatedBy int           `db:"created_by"`
	Question  string        `db:"question"`
	CreatedAt time.Time     `db:"created_at"`
}

// CaptainMessage is a message a captain posted to their team. team_id is
// NOT NULL: a message that cannot be remapped after a reload is deleted,
// with the count retained for the run report.
type CaptainMessage struct {
	ID            int       `db:"id"`
	TeamID        int       `db:"team_id"`
	CaptainUserID int       `db:"captain_user_id"`
	Message       string    `db:"message"`
	CreatedAt     time.Time `db:"created_at"`
}

// User is a registered account. LeagueContext is the surrogate id of the
// league the user last viewed; it is remapped by league natural key after a
// reload.
type User struct {
	ID            int           `db:"id"`
	Email         string        `db:"email"`
	FirstName     string        `db:"first_name"`
	LastName      string        `db:"last_name"`
	LeagueContext sql.NullInt64 `db:"league_context"`
	CreatedAt     time.Time     `db:"created_at"`
}

// UserTeam is one of a user's current team memberships, as seen through
// their player associations. Input to the restore heuristics.
type UserTeam struct {
	TeamID     int
	TeamName   string
	SeriesName string
	LeagueCode string
}

// PlayerAvailability is a user's availability for a match date. series_id is
// remapped by series name after a reload.
type PlayerAvailability struct {
	ID                 int           `db:"id"`
	UserID             int           `db:"user_id"`
	MatchDate          time.Time     `db:"match_date"`
	AvailabilityStatus int           `db:"availability_status"`
	SeriesID           sql.NullInt64 `db:"series_id"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// UserPlayerAssociation links a user account to one of their scraped player
// identities by external id. External ids are stable across scrapes, so
// these rows need no remapping.
type UserPlayerAssociation struct {
	UserID              int       `db:"user_id"`
	TenniscoresPlayerID string    `db:"tenniscores_player_id"`
	IsPrimary           bool      `db:"is_primary"`
	CreatedAt           time.Time `db:"created_at"`
}
