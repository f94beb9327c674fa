package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaguesync/importer/internal/extract"
	"leaguesync/importer/internal/models"
)

func TestResolveMergesClubCaseVariants(t *testing.T) {
	docs := &extract.Documents{
		Players: []extract.PlayerRecord{
			{League: models.LeagueCNSWPL, Club: "BIRCHWOOD 1", Series: "Division 1", Team: "Birchwood 1", PlayerID: "p1"},
			{League: models.LeagueAPTAChicago, Club: "Birchwood", Series: "Chicago 6", Team: "Birchwood - 6", PlayerID: "p2"},
		},
	}

	u := Resolve(docs)

	require.Len(t, u.Clubs, 1)
	assert.Equal(t, "Birchwood", u.Clubs[0])
}

func TestResolveDiscoversFromStandings(t *testing.T) {
	// A club mentioned only in series_stats must still reach the universe.
	docs := &extract.Documents{
		Players: []extract.PlayerRecord{
			{League: models.LeagueAPTAChicago, Club: "Tennaqua", Series: "Chicago 6", Team: "Tennaqua - 6", PlayerID: "p1"},
		},
		SeriesStats: []extract.SeriesStatsRecord{
			{League: models.LeagueAPTAChicago, Series: "Chicago 9", Team: "Winnetka - 9"},
		},
	}

	u := Resolve(docs)

	assert.ElementsMatch(t, []string{"Tennaqua", "Winnetka"}, u.Clubs)
	require.Len(t, u.Teams, 2)
	assert.Contains(t, u.ClubLeagues, Pair{Name: "Winnetka", LeagueCode: models.LeagueAPTAChicago})
	assert.Contains(t, u.SeriesLeagues, Pair{Name: "Chicago 9", LeagueCode: models.LeagueAPTAChicago})
}

func TestResolveSkipsRowsMissingLeague(t *testing.T) {
	docs := &extract.Documents{
		Players: []extract.PlayerRecord{
			{League: "", Club: "Tennaqua", Series: "Chicago 6", PlayerID: "p1"},
		},
	}

	u := Resolve(docs)

	assert.Empty(t, u.Leagues)
	assert.Equal(t, 1, u.SkippedRows)
}

func TestResolveCleansMalformedSeries(t *testing.T) {
	docs := &extract.Documents{
		Players: []extract.PlayerRecord{
			{League: models.LeagueAPTAChicago, Club: "Tennaqua", Series: "eries 22", Team: "Tennaqua - 22", PlayerID: "p1"},
		},
	}

	u := Resolve(docs)

	require.Len(t, u.Series, 1)
	assert.Equal(t, "Series 22", u.Series[0].Name)
}

func TestResolveDeduplicatesTeamsLastWins(t *testing.T) {
	docs := &extract.Documents{
		Players: []extract.PlayerRecord{
			{League: models.LeagueAPTAChicago, Club: "Tennaqua", Series: "Chicago 6", Team: "Tennaqua - 6", PlayerID: "p1"},
			{League: models.LeagueAPTAChicago, Club: "Tennaqua", Series: "Chicago 6", Team: "Tennaqua - 6", PlayerID: "p2"},
		},
	}

	u := Resolve(docs)

	require.Len(t, u.Teams, 1)
	assert.Equal(t, "Tennaqua - 6", u.Teams[0].TeamName)
}
