package models

import (
	"database/sql"
	"time"
)

// Team is the join point for nearly everything else. Two unique constraints
// hold simultaneously: (club_id, series_id, league_id) and
// (team_name, league_id). The surrogate id must survive reloads whenever the
// natural key still exists.
type Team struct {
	ID          int            `db:"id"`
	ClubID      int            `db:"club_id"`
	SeriesID    int            `db:"series_id"`
	LeagueID    int            `db:"league_id"`
	TeamName    string         `db:"team_name"`
	TeamAlias   sql.NullString `db:"team_alias"`
	DisplayName sql.NullString `db:"display_name"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// TeamTuple is one (club, series, league, team_name) tuple extracted from the
// scraped documents, before club/series/league names have been resolved to
// surrogate ids.
type TeamTuple struct {
	ClubName   string
	SeriesName string
	LeagueCode string
	TeamName   string
	TeamAlias  string
}

// TeamKey is the resolved natural key of a team.
type TeamKey struct {
	ClubID   int
	SeriesID int
	LeagueID int
}

// TeamMapping records one old-id to new-id translation computed by joining
// the teams backup to the rebuilt teams table on the natural key.
type TeamMapping struct {
	OldTeamID int
	NewTeamID int
}
