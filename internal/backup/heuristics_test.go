package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leaguesync/importer/internal/models"
)

func TestSeriesToken(t *testing.T) {
	assert.Equal(t, "2B", SeriesToken("Series 2B"))
	assert.Equal(t, "22", SeriesToken("Chicago 22"))
	assert.Equal(t, "1", SeriesToken("Division 1"))
	assert.Equal(t, "", SeriesToken(""))
}

func TestMatchTeamByContentPrefersLetterToken(t *testing.T) {
	// A message about "Series 2B" must land on the NSTF 2B team, never on
	// an APTA team whose series is "22" or "2".
	teams := []models.UserTeam{
		{TeamID: 10, SeriesName: "Chicago 22", LeagueCode: models.LeagueAPTAChicago},
		{TeamID: 11, SeriesName: "Chicago 2", LeagueCode: models.LeagueAPTAChicago},
		{TeamID: 12, SeriesName: "Series 2B", LeagueCode: models.LeagueNSTF},
	}

	id, ok := MatchTeamByContent("Who is in for Series 2B on Thursday?", teams, "")

	assert.True(t, ok)
	assert.Equal(t, 12, id)
}

func TestMatchTeamByContentPrefersOldLeague(t *testing.T) {
	// The same series token exists in two of the owner's leagues; the
	// record's original league wins over input order.
	teams := []models.UserTeam{
		{TeamID: 20, SeriesName: "Chicago 2", LeagueCode: models.LeagueAPTAChicago},
		{TeamID: 21, SeriesName: "Series 2", LeagueCode: models.LeagueNSTF},
	}

	id, ok := MatchTeamByContent("Series 2 lineup for Sunday", teams, models.LeagueNSTF)
	assert.True(t, ok)
	assert.Equal(t, 21, id)

	// Without a known old league, input order decides.
	id, ok = MatchTeamByContent("Series 2 lineup for Sunday", teams, "")
	assert.True(t, ok)
	assert.Equal(t, 20, id)
}

func TestMatchTeamByContentOldLeagueWithoutTokenMatch(t *testing.T) {
	// League preference reorders candidates but never overrides the token
	// check: a text naming only an APTA series still lands on the APTA
	// team even when the old league was NSTF.
	teams := []models.UserTeam{
		{TeamID: 10, SeriesName: "Chicago 22", LeagueCode: models.LeagueAPTAChicago},
		{TeamID: 12, SeriesName: "Series 2B", LeagueCode: models.LeagueNSTF},
	}

	id, ok := MatchTeamByContent("series 22 standings", teams, models.LeagueNSTF)
	assert.True(t, ok)
	assert.Equal(t, 10, id)
}

func TestMatchTeamByContentNumericBoundary(t *testing.T) {
	// "2B" in the text must not satisfy the numeric token "2".
	teams := []models.UserTeam{
		{TeamID: 11, SeriesName: "Chicago 2", LeagueCode: models.LeagueAPTAChicago},
	}

	_, ok := MatchTeamByContent("Practice for 2B this week", teams, "")
	assert.False(t, ok)

	id, ok := MatchTeamByContent("Series 2 lineup", teams, "")
	assert.True(t, ok)
	assert.Equal(t, 11, id)
}

func TestMatchTeamByContentNumericMatch(t *testing.T) {
	teams := []models.UserTeam{
		{TeamID: 10, SeriesName: "Chicago 22", LeagueCode: models.LeagueAPTAChicago},
		{TeamID: 11, SeriesName: "Chicago 2", LeagueCode: models.LeagueAPTAChicago},
	}

	id, ok := MatchTeamByContent("Standings for series 22 are posted", teams, "")

	assert.True(t, ok)
	assert.Equal(t, 10, id)
}

func TestMatchTeamByContentNoMatch(t *testing.T) {
	teams := []models.UserTeam{
		{TeamID: 10, SeriesName: "Chicago 22", LeagueCode: models.LeagueAPTAChicago},
	}

	_, ok := MatchTeamByContent("General announcement", teams, "")
	assert.False(t, ok)

	_, ok = MatchTeamByContent("series 22", nil, "")
	assert.False(t, ok)
}

func TestPrimaryTeamPrefersAPTA(t *testing.T) {
	teams := []models.UserTeam{
		{TeamID: 12, SeriesName: "Series 2B", LeagueCode: models.LeagueNSTF},
		{TeamID: 10, SeriesName: "Chicago 22", LeagueCode: models.LeagueAPTAChicago},
	}

	id, ok := PrimaryTeam(teams)
	assert.True(t, ok)
	assert.Equal(t, 10, id)

	id, ok = PrimaryTeam(teams[:1])
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = PrimaryTeam(nil)
	assert.False(t, ok)
}
