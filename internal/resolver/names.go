package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"leaguesync/importer/internal/models"
)

// Club-name parsing. Team labels in the scraped documents embed a series
// qualifier after the bare club name, and the qualifier grammar differs per
// league:
//
//	APTA_CHICAGO  "Tennaqua - 6"       dash plus series number
//	CNSWPL        "Birchwood 1a"       trailing number with optional letter
//	NSTF          "Wilmette S2B"       S-prefixed series token
//	NSTF          "Wilmette Sunday A"  Sunday division label
var (
	aptaSuffix   = regexp.MustCompile(`\s+-\s+\d+[A-Za-z]?$`)
	cnswplSuffix = regexp.MustCompile(`\s+\d+[A-Za-z]?$`)
	nstfSuffix   = regexp.MustCompile(`\s+S\d+[A-Za-z]?$`)
	sundaySuffix = regexp.MustCompile(`\s+Sunday\s*[A-Za-z]?$`)
)

// ParseClubName strips the league-specific series qualifier from a team
// label, returning the bare club name.
func ParseClubName(raw, leagueCode string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	switch leagueCode {
	case models.LeagueAPTAChicago:
		name = aptaSuffix.ReplaceAllString(name, "")
	case models.LeagueCNSWPL:
		name = cnswplSuffix.ReplaceAllString(name, "")
	case models.LeagueNSTF:
		name = sundaySuffix.ReplaceAllString(name, "")
		name = nstfSuffix.ReplaceAllString(name, "")
	default:
		// Unknown league: the dash form is the most conservative strip.
		name = aptaSuffix.ReplaceAllString(name, "")
	}

	return strings.TrimSpace(name)
}

// BetterClubName picks the preferred capitalization between two case
// variants of the same club name: more title-cased words win, and an
// all-uppercase variant loses to anything mixed-case.
func BetterClubName(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}

	scoreA, scoreB := titleWordCount(a), titleWordCount(b)
	if scoreA != scoreB {
		if scoreA > scoreB {
			return a
		}
		return b
	}

	if a == strings.ToUpper(a) && b != strings.ToUpper(b) {
		return b
	}
	return a
}

func titleWordCount(s string) int {
	count := 0
	for _, word := range strings.Fields(s) {
		runes := []rune(word)
		if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
			continue
		}
		if unicode.IsUpper(runes[0]) && strings.ToUpper(word) != word {
			count++
		}
	}
	return count
}

// CleanSeriesName repairs malformed series tokens from bad scrapes. The
// most common corruption drops the leading "S" from "Series".
func CleanSeriesName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if strings.HasPrefix(name, "eries ") || name == "eries" {
		name = "S" + name
	}
	return name
}

// Per-league display<->database series-name spellings. The database keeps
// the scraped spelling ("Chicago 22"); the serving layer shows the display
// spelling ("Series 22").
var seriesPrefixes = map[string]string{
	models.LeagueAPTAChicago: "Chicago",
	models.LeagueCNSWPL:      "Division",
}

// DisplaySeriesName converts a database series name to its user-facing
// form. Names with no mapped prefix pass through unchanged.
func DisplaySeriesName(dbName, leagueCode string) string {
	prefix, ok := seriesPrefixes[leagueCode]
	if !ok {
		return dbName
	}
	if rest, found := strings.CutPrefix(dbName, prefix+" "); found {
		return "Series " + rest
	}
	return dbName
}

// DatabaseSeriesName converts a display series name back to the spelling
// stored in the series table.
func DatabaseSeriesName(displayName, leagueCode string) string {
	prefix, ok := seriesPrefixes[leagueCode]
	if !ok {
		return displayName
	}
	if rest, found := strings.CutPrefix(displayName, "Series "); found {
		return prefix + " " + rest
	}
	return displayName
}
