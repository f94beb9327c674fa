package models

import (
	"database/sql"
	"time"
)

// Player is keyed by the external tenniscores id, scoped by
// (league, club, series): the same external id can legitimately appear at
// multiple clubs or series within a league (substitutes), so the true
// uniqueness constraint is the four-part tuple.
type Player struct {
	ID                  int             `db:"id"`
	TenniscoresPlayerID string          `db:"tenniscores_player_id"`
	FirstName           string          `db:"first_name"`
	LastName            string          `db:"last_name"`
	LeagueID            int             `db:"league_id"`
	ClubID              int             `db:"club_id"`
	SeriesID            int             `db:"series_id"`
	TeamID              sql.NullInt64   `db:"team_id"`
	PTI                 sql.NullFloat64 `db:"pti"`
	Wins                int             `db:"wins"`
	Losses              int             `db:"losses"`
	CareerWins          int             `db:"career_wins"`
	CareerLosses        int             `db:"career_losses"`
	Captain             sql.NullString  `db:"captain"`
	IsActive            bool            `db:"is_active"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// PlayerHistory is one PTI history point for a player. Fully rebuilt each run.
type PlayerHistory struct {
	ID        int             `db:"id"`
	PlayerID  sql.NullInt64   `db:"player_id"`
	LeagueID  sql.NullInt64   `db:"league_id"`
	Series    sql.NullString  `db:"series"`
	MatchDate sql.NullTime    `db:"match_date"`
	EndPTI    sql.NullFloat64 `db:"end_pti"`
	CreatedAt time.Time       `db:"created_at"`
}
