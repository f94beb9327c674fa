package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leaguesync/importer/internal/models"
)

func TestParseClubName(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		league string
		want   string
	}{
		{"apta dash suffix", "Tennaqua - 6", models.LeagueAPTAChicago, "Tennaqua"},
		{"apta no suffix", "Tennaqua", models.LeagueAPTAChicago, "Tennaqua"},
		{"cnswpl number", "Birchwood 1", models.LeagueCNSWPL, "Birchwood"},
		{"cnswpl number letter", "Birchwood 1a", models.LeagueCNSWPL, "Birchwood"},
		{"nstf series token", "Wilmette S2B", models.LeagueNSTF, "Wilmette"},
		{"nstf sunday", "Wilmette Sunday A", models.LeagueNSTF, "Wilmette"},
		{"unknown league dash", "Glen Ellyn - 3", "OTHER", "Glen Ellyn"},
		{"multiword club kept", "Glen View", models.LeagueCNSWPL, "Glen View"},
		{"blank", "  ", models.LeagueAPTAChicago, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClubName(tt.raw, tt.league))
		})
	}
}

func TestBetterClubName(t *testing.T) {
	assert.Equal(t, "Birchwood", BetterClubName("BIRCHWOOD", "Birchwood"))
	assert.Equal(t, "Birchwood", BetterClubName("Birchwood", "BIRCHWOOD"))
	assert.Equal(t, "Glen View", BetterClubName("Glen view", "Glen View"))
	assert.Equal(t, "Tennaqua", BetterClubName("", "Tennaqua"))
	assert.Equal(t, "Tennaqua", BetterClubName("Tennaqua", ""))
}

func TestCleanSeriesName(t *testing.T) {
	assert.Equal(t, "Series 22", CleanSeriesName("eries 22"))
	assert.Equal(t, "Chicago 22", CleanSeriesName("  Chicago   22 "))
	assert.Equal(t, "Series 2B", CleanSeriesName("Series 2B"))
}

func TestSeriesNameMapping(t *testing.T) {
	assert.Equal(t, "Series 22", DisplaySeriesName("Chicago 22", models.LeagueAPTAChicago))
	assert.Equal(t, "Chicago 22", DatabaseSeriesName("Series 22", models.LeagueAPTAChicago))
	assert.Equal(t, "Series 1", DisplaySeriesName("Division 1", models.LeagueCNSWPL))
	// NSTF has no prefix mapping; names pass through.
	assert.Equal(t, "Series 2B", DisplaySeriesName("Series 2B", models.LeagueNSTF))
}
