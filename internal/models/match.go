package models

import (
	"database/sql"
	"time"
)

// MatchResult is one played line: two teams, four players, set scores and a
// winner. Fully rebuilt each run; no identity survives a reload.
type MatchResult struct {
	ID            int            `db:"id"`
	LeagueID      sql.NullInt64  `db:"league_id"`
	MatchDate     time.Time      `db:"match_date"`
	HomeTeam      string         `db:"home_team"`
	AwayTeam      string         `db:"away_team"`
	HomeTeamID    sql.NullInt64  `db:"home_team_id"`
	AwayTeamID    sql.NullInt64  `db:"away_team_id"`
	HomePlayer1ID sql.NullString `db:"home_player_1_id"`
	HomePlayer2ID sql.NullString `db:"home_player_2_id"`
	AwayPlayer1ID sql.NullString `db:"away_player_1_id"`
	AwayPlayer2ID sql.NullString `db:"away_player_2_id"`
	Scores        string         `db:"scores"`
	Winner        sql.NullString `db:"winner"`
	CreatedAt     time.Time      `db:"created_at"`
}

// SeriesStats is one standings row: points plus match/line/set/game
// won-lost for a team within a series. Fully rebuilt each run.
type SeriesStats struct {
	ID          int           `db:"id"`
	LeagueID    sql.NullInt64 `db:"league_id"`
	SeriesID    sql.NullInt64 `db:"series_id"`
	TeamID      sql.NullInt64 `db:"team_id"`
	Series      string        `db:"series"`
	Team        string        `db:"team"`
	Points      int           `db:"points"`
	MatchesWon  int           `db:"matches_won"`
	MatchesLost int           `db:"matches_lost"`
	LinesWon    int           `db:"lines_won"`
	LinesLost   int           `db:"lines_lost"`
	SetsWon     int           `db:"sets_won"`
	SetsLost    int           `db:"sets_lost"`
	GamesWon    int           `db:"games_won"`
	GamesLost   int           `db:"games_lost"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// ScheduleEntry is one fixture (or practice block) on the calendar.
// Practice blocks are identified by a "Practice" substring in the home-team
// field and are user-owned: they are backed up before clearing and
// re-inserted with remapped team ids after the rebuild.
type ScheduleEntry struct {
	ID         int            `db:"id"`
	LeagueID   sql.NullInt64  `db:"league_id"`
	MatchDate  sql.NullTime   `db:"match_date"`
	MatchTime  sql.NullString `db:"match_time"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	HomeTeamID sql.NullInt64  `db:"home_team_id"`
	AwayTeamID sql.NullInt64  `db:"away_team_id"`
	Location   sql.NullString `db:"location"`
	CreatedAt  time.Time      `db:"created_at"`
}
