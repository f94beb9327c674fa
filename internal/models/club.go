package models

import "time"

// Club represents a physical club. The natural key is the name,
// case-insensitive; team qualifiers (" - 6", " S2B", " 1a") are stripped
// before a string is accepted as a club name.
type Club struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Series represents a division within a league. Name is the database
// spelling; DisplayName carries the user-facing spelling where the two
// differ (e.g. "Chicago 22" vs "Series 22").
type Series struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ClubLeague links a club to a league it fields teams in.
type ClubLeague struct {
	ID       int `db:"id"`
	ClubID   int `db:"club_id"`
	LeagueID int `db:"league_id"`
}

// SeriesLeague links a series to a league it is played in.
type SeriesLeague struct {
	ID       int `db:"id"`
	SeriesID int `db:"series_id"`
	LeagueID int `db:"league_id"`
}
