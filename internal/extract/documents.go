package extract

// Input contract: five JSON documents produced by the external scraper and
// consumed verbatim. Field names mirror the scraped export headers.

// PlayerRecord is one row of players.json: the roster extract with
// club/series/league scoping, PTI and W-L.
type PlayerRecord struct {
	League    string `json:"League"`
	Club      string `json:"Club"`
	Series    string `json:"Series"`
	Team      string `json:"Series Mapping ID"`
	PlayerID  string `json:"Player ID"`
	FirstName string `json:"First Name"`
	LastName  string `json:"Last Name"`
	PTI       string `json:"PTI"`
	Wins      string `json:"Wins"`
	Losses    string `json:"Losses"`
	Captain   string `json:"Captain"`
}

// HistoryMatch is one PTI history point inside a player_history.json entry.
type HistoryMatch struct {
	Date   string  `json:"date"`
	EndPTI float64 `json:"end_pti"`
	Series string  `json:"series"`
}

// PlayerHistoryRecord is one entry of player_history.json: per-player
// match-by-match PTI history plus cumulative career W-L.
type PlayerHistoryRecord struct {
	PlayerID string         `json:"player_id"`
	League   string         `json:"league_id"`
	Name     string         `json:"name"`
	Wins     int            `json:"wins"`
	Losses   int            `json:"losses"`
	Matches  []HistoryMatch `json:"matches"`
}

// MatchRecord is one row of match_history.json: one played line.
type MatchRecord struct {
	League        string `json:"league_id"`
	Date          string `json:"Date"`
	HomeTeam      string `json:"Home Team"`
	AwayTeam      string `json:"Away Team"`
	HomePlayer1   string `json:"Home Player 1"`
	HomePlayer2   string `json:"Home Player 2"`
	AwayPlayer1   string `json:"Away Player 1"`
	AwayPlayer2   string `json:"Away Player 2"`
	HomePlayer1ID string `json:"Home Player 1 ID"`
	HomePlayer2ID string `json:"Home Player 2 ID"`
	AwayPlayer1ID string `json:"Away Player 1 ID"`
	AwayPlayer2ID string `json:"Away Player 2 ID"`
	Scores        string `json:"Scores"`
	Winner        string `json:"Winner"`
}

// WonLost is a won/lost pair inside a series_stats.json row.
type WonLost struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// SeriesStatsRecord is one standings row of series_stats.json.
type SeriesStatsRecord struct {
	League  string  `json:"league_id"`
	Series  string  `json:"series"`
	Team    string  `json:"team"`
	Points  int     `json:"points"`
	Matches WonLost `json:"matches"`
	Lines   WonLost `json:"lines"`
	Sets    WonLost `json:"sets"`
	Games   WonLost `json:"games"`
}

// ScheduleRecord is one fixture of schedules.json. Practice blocks are
// placeholders whose home-team field contains "Practice".
type ScheduleRecord struct {
	League   string `json:"League"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Location string `json:"location"`
}

// Documents bundles the five parsed input documents for one run.
type Documents struct {
	Players       []PlayerRecord
	PlayerHistory []PlayerHistoryRecord
	Matches       []MatchRecord
	SeriesStats   []SeriesStatsRecord
	Schedules     []ScheduleRecord
}
