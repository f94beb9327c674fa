package backup

import (
	"regexp"
	"sort"
	"strings"

	"leaguesync/importer/internal/models"
)

// Content-based team matching for orphaned records whose old team id no
// longer maps. The record's free text is scanned for a series-identifying
// token drawn from the owner's current team memberships.
//
// Token precedence is deliberate and must not be "improved": a
// letter-bearing token like "2B" (NSTF style) is checked before a purely
// numeric one like "22" or "2" (APTA/CNSWPL style), and a numeric token
// only matches when it is not part of a longer alphanumeric run, so a
// message about "Series 2B" can never be assigned to an APTA series 2 or
// 22 team.

// SeriesToken isolates the series qualifier from a series name, e.g.
// "Series 2B" -> "2B", "Chicago 22" -> "22".
func SeriesToken(seriesName string) string {
	fields := strings.Fields(seriesName)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

// textMentionsToken reports whether the token appears in the text as a
// standalone run, not embedded in a longer alphanumeric sequence.
func textMentionsToken(text, token string) bool {
	if token == "" {
		return false
	}
	pattern := `(^|[^0-9A-Za-z])` + regexp.QuoteMeta(token) + `([^0-9A-Za-z]|$)`
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// MatchTeamByContent returns the owner team whose series token appears in
// the record's text. Teams in preferredLeague (the orphaned record's old
// league, from the teams snapshot) are tried before the rest; within each
// group, letter-bearing tokens come first, longest first, then numeric
// tokens, longest first.
func MatchTeamByContent(text string, teams []models.UserTeam, preferredLeague string) (int, bool) {
	if text == "" || len(teams) == 0 {
		return 0, false
	}

	ordered := make([]models.UserTeam, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		if preferredLeague != "" {
			pi := ordered[i].LeagueCode == preferredLeague
			pj := ordered[j].LeagueCode == preferredLeague
			if pi != pj {
				return pi
			}
		}
		ti, tj := SeriesToken(ordered[i].SeriesName), SeriesToken(ordered[j].SeriesName)
		li, lj := hasLetter(ti), hasLetter(tj)
		if li != lj {
			return li
		}
		return len(ti) > len(tj)
	})

	for _, team := range ordered {
		if textMentionsToken(text, SeriesToken(team.SeriesName)) {
			return team.TeamID, true
		}
	}
	return 0, false
}

// PrimaryTeam picks the owner's fallback team when content matching fails:
// the APTA Chicago membership if the owner has one, otherwise the first.
func PrimaryTeam(teams []models.UserTeam) (int, bool) {
	if len(teams) == 0 {
		return 0, false
	}
	for _, team := range teams {
		if team.LeagueCode == models.LeagueAPTAChicago {
			return team.TeamID, true
		}
	}
	return teams[0].TeamID, true
}
