package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaguesync/importer/internal/models"
)

func tuple(club, series, league, team string) models.TeamTuple {
	return models.TeamTuple{ClubName: club, SeriesName: series, LeagueCode: league, TeamName: team}
}

func TestDedupeTuplesNaturalKeyLastWins(t *testing.T) {
	tuples := []models.TeamTuple{
		tuple("Tennaqua", "Chicago 6", "APTA_CHICAGO", "Tennaqua - 6"),
		tuple("Tennaqua", "Chicago 6", "APTA_CHICAGO", "Tennaqua 6"),
	}

	out, renamed := DedupeTuples(tuples)

	require.Len(t, out, 1)
	assert.Equal(t, "Tennaqua 6", out[0].TeamName)
	assert.Zero(t, renamed)
}

func TestDedupeTuplesNameCollisionRenamed(t *testing.T) {
	// Same team_name in one league across two different natural keys.
	tuples := []models.TeamTuple{
		tuple("Tennaqua", "Chicago 6", "APTA_CHICAGO", "Tennaqua"),
		tuple("Tennaqua", "Chicago 9", "APTA_CHICAGO", "Tennaqua"),
	}

	out, renamed := DedupeTuples(tuples)

	require.Len(t, out, 2)
	assert.Equal(t, "Tennaqua", out[0].TeamName)
	assert.Equal(t, "Tennaqua (Chicago 9)", out[1].TeamName)
	assert.Equal(t, 1, renamed)
}

func TestDedupeTuplesNameCollisionAcrossLeaguesAllowed(t *testing.T) {
	// The name constraint is scoped per league; no rename across leagues.
	tuples := []models.TeamTuple{
		tuple("Tennaqua", "Chicago 6", "APTA_CHICAGO", "Tennaqua"),
		tuple("Tennaqua", "Series 1", "NSTF", "Tennaqua"),
	}

	out, renamed := DedupeTuples(tuples)

	require.Len(t, out, 2)
	assert.Zero(t, renamed)
}

func TestDedupeTuplesCaseInsensitiveClub(t *testing.T) {
	tuples := []models.TeamTuple{
		tuple("BIRCHWOOD", "Division 1", "CNSWPL", "Birchwood 1"),
		tuple("Birchwood", "Division 1", "CNSWPL", "Birchwood I"),
	}

	out, _ := DedupeTuples(tuples)

	require.Len(t, out, 1)
	assert.Equal(t, "Birchwood I", out[0].TeamName)
}
