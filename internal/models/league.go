package models

import "time"

// League represents one scraped league source (e.g. APTA_CHICAGO, NSTF).
// Leagues are keyed by their string code and upserted by that natural key;
// a league row is never deleted mid-run.
type League struct {
	ID         int       `db:"id"`
	LeagueID   string    `db:"league_id"`
	LeagueName string    `db:"league_name"`
	LeagueURL  string    `db:"league_url"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// League codes recognized by the club-name and series heuristics.
const (
	LeagueAPTAChicago = "APTA_CHICAGO"
	LeagueCNSWPL      = "CNSWPL"
	LeagueNSTF        = "NSTF"
)
