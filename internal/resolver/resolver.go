package resolver

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/extract"
	"leaguesync/importer/internal/models"
)

// Universe is the deduplicated League/Club/Series world extracted from the
// union of all input documents, plus the association pairs and team tuples
// the rebuild phases consume.
type Universe struct {
	Leagues       []models.League
	Clubs         []string
	Series        []SeriesEntry
	ClubLeagues   []Pair
	SeriesLeagues []Pair
	Teams         []models.TeamTuple
	SkippedRows   int
}

// SeriesEntry pairs the database spelling of a series name with its
// user-facing display spelling.
type SeriesEntry struct {
	Name        string
	DisplayName string
}

// Pair associates a club or series name with a league code.
type Pair struct {
	Name       string
	LeagueCode string
}

var knownLeagues = map[string]models.League{
	models.LeagueAPTAChicago: {
		LeagueID:   models.LeagueAPTAChicago,
		LeagueName: "APTA Chicago",
		LeagueURL:  "https://aptachicago.tenniscores.com",
	},
	models.LeagueCNSWPL: {
		LeagueID:   models.LeagueCNSWPL,
		LeagueName: "Chicago North Shore Women's Platform Tennis League",
		LeagueURL:  "https://cnswpl.tenniscores.com",
	},
	models.LeagueNSTF: {
		LeagueID:   models.LeagueNSTF,
		LeagueName: "North Shore Tennis Foundation",
		LeagueURL:  "https://nstf.org",
	},
}

// Resolve walks every input document, not just the player roster, so a
// league, club or series mentioned only in standings or schedule data is
// still discovered. Club and team names are deduplicated case-insensitively
// and the best capitalization wins.
func Resolve(docs *extract.Documents) *Universe {
	u := &Universe{}

	leagues := map[string]bool{}
	clubs := map[string]string{}        // lower(name) -> best capitalization
	series := map[string]string{}       // "name|league" guard, value display name
	clubLeagues := map[Pair]bool{}
	seriesLeagues := map[Pair]bool{}
	teams := map[string]models.TeamTuple{} // "team|league" -> tuple, last write wins

	addLeague := func(code string) string {
		code = strings.TrimSpace(code)
		if code == "" {
			return ""
		}
		leagues[code] = true
		return code
	}
	addClub := func(name string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return ""
		}
		key := strings.ToLower(name)
		clubs[key] = BetterClubName(clubs[key], name)
		return name
	}
	addSeries := func(name, league string) string {
		name = CleanSeriesName(name)
		if name == "" {
			return ""
		}
		if _, ok := series[name]; !ok {
			series[name] = DisplaySeriesName(name, league)
		}
		if league != "" {
			seriesLeagues[Pair{Name: name, LeagueCode: league}] = true
		}
		return name
	}
	addTeam := func(teamName, clubName, seriesName, league string) {
		teamName = strings.TrimSpace(teamName)
		if teamName == "" || clubName == "" || seriesName == "" || league == "" {
			u.SkippedRows++
			return
		}
		teams[strings.ToLower(teamName)+"|"+league] = models.TeamTuple{
			ClubName:   clubName,
			SeriesName: seriesName,
			LeagueCode: league,
			TeamName:   teamName,
		}
		clubLeagues[Pair{Name: clubName, LeagueCode: league}] = true
	}

	// Primary roster: explicit club/series columns.
	for _, p := range docs.Players {
		league := addLeague(p.League)
		if league == "" {
			u.SkippedRows++
			continue
		}
		club := addClub(ParseClubName(p.Club, league))
		ser := addSeries(p.Series, league)
		if p.Team != "" {
			addTeam(p.Team, club, ser, league)
		}
		if club != "" {
			clubLeagues[Pair{Name: club, LeagueCode: league}] = true
		}
	}

	// Standings: team names only, club derived from the team label.
	for _, s := range docs.SeriesStats {
		league := addLeague(s.League)
		if league == "" {
			u.SkippedRows++
			continue
		}
		club := addClub(ParseClubName(s.Team, league))
		ser := addSeries(s.Series, league)
		addTeam(s.Team, club, ser, league)
	}

	// Schedules and match history contribute league discovery only: their
	// team labels carry no series column and resolve by name at load time.
	for _, m := range docs.Matches {
		addLeague(m.League)
	}
	for _, sc := range docs.Schedules {
		addLeague(sc.League)
	}

	for code := range leagues {
		if l, ok := knownLeagues[code]; ok {
			u.Leagues = append(u.Leagues, l)
		} else {
			u.Leagues = append(u.Leagues, models.League{LeagueID: code, LeagueName: code})
		}
	}
	sort.Slice(u.Leagues, func(i, j int) bool { return u.Leagues[i].LeagueID < u.Leagues[j].LeagueID })

	for _, name := range clubs {
		u.Clubs = append(u.Clubs, name)
	}
	sort.Strings(u.Clubs)

	for name, display := range series {
		u.Series = append(u.Series, SeriesEntry{Name: name, DisplayName: display})
	}
	sort.Slice(u.Series, func(i, j int) bool { return u.Series[i].Name < u.Series[j].Name })

	for p := range clubLeagues {
		u.ClubLeagues = append(u.ClubLeagues, p)
	}
	sort.Slice(u.ClubLeagues, func(i, j int) bool {
		if u.ClubLeagues[i].LeagueCode != u.ClubLeagues[j].LeagueCode {
			return u.ClubLeagues[i].LeagueCode < u.ClubLeagues[j].LeagueCode
		}
		return u.ClubLeagues[i].Name < u.ClubLeagues[j].Name
	})

	for p := range seriesLeagues {
		u.SeriesLeagues = append(u.SeriesLeagues, p)
	}
	sort.Slice(u.SeriesLeagues, func(i, j int) bool {
		if u.SeriesLeagues[i].LeagueCode != u.SeriesLeagues[j].LeagueCode {
			return u.SeriesLeagues[i].LeagueCode < u.SeriesLeagues[j].LeagueCode
		}
		return u.SeriesLeagues[i].Name < u.SeriesLeagues[j].Name
	})

	for _, t := range teams {
		u.Teams = append(u.Teams, t)
	}
	sort.Slice(u.Teams, func(i, j int) bool {
		if u.Teams[i].LeagueCode != u.Teams[j].LeagueCode {
			return u.Teams[i].LeagueCode < u.Teams[j].LeagueCode
		}
		return u.Teams[i].TeamName < u.Teams[j].TeamName
	})

	log.Info().
		Int("leagues", len(u.Leagues)).
		Int("clubs", len(u.Clubs)).
		Int("series", len(u.Series)).
		Int("teams", len(u.Teams)).
		Int("skipped", u.SkippedRows).
		Msg("Reference universe resolved")

	return u
}
