package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()

	players := `[{"League":"APTA_CHICAGO","Club":"Birchwood","Series":"Chicago 6","Player ID":"nndz-1001","First Name":"Ann","Last Name":"Smith","PTI":"32.5","Wins":"7","Losses":"2"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlayersFile), []byte(players), 0o644))

	schedules := `[{"League":"APTA_CHICAGO","date":"2026-01-10","time":"18:30","home_team":"Birchwood Practice","away_team":"","location":"Birchwood"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SchedulesFile), []byte(schedules), 0o644))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err, "Should load with optional documents missing")

	require.Len(t, docs.Players, 1)
	assert.Equal(t, "nndz-1001", docs.Players[0].PlayerID)
	assert.Equal(t, "Birchwood", docs.Players[0].Club)

	require.Len(t, docs.Schedules, 1)
	assert.True(t, IsPracticeEntry(docs.Schedules[0].HomeTeam))
	assert.Empty(t, docs.Matches)
}

func TestLoadDocumentsMissingPlayers(t *testing.T) {
	_, err := LoadDocuments(t.TempDir())
	assert.Error(t, err, "players.json is required")
}

func TestParseFloat(t *testing.T) {
	v, ok := ParseFloat("32.5")
	require.True(t, ok)
	assert.InDelta(t, 32.5, v, 0.001)

	_, ok = ParseFloat("-")
	assert.False(t, ok)
	_, ok = ParseFloat("")
	assert.False(t, ok)
	_, ok = ParseFloat("N/A")
	assert.False(t, ok)
}

func TestIsPracticeEntry(t *testing.T) {
	assert.True(t, IsPracticeEntry("Tennaqua Practice - Series 2B"))
	assert.False(t, IsPracticeEntry("Tennaqua - 6"))
}
