package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// File names of the five input documents, relative to the data directory.
const (
	PlayersFile       = "players.json"
	PlayerHistoryFile = "player_history.json"
	MatchHistoryFile  = "match_history.json"
	SeriesStatsFile   = "series_stats.json"
	SchedulesFile     = "schedules.json"
)

// LoadDocuments reads and parses all five input documents from dir.
// A missing optional document (anything but players.json) is logged and
// skipped; players.json is required.
func LoadDocuments(dir string) (*Documents, error) {
	docs := &Documents{}

	if err := loadJSON(filepath.Join(dir, PlayersFile), &docs.Players); err != nil {
		return nil, fmt.Errorf("failed to load players document: %w", err)
	}

	optional := []struct {
		name string
		dst  interface{}
	}{
		{PlayerHistoryFile, &docs.PlayerHistory},
		{MatchHistoryFile, &docs.Matches},
		{SeriesStatsFile, &docs.SeriesStats},
		{SchedulesFile, &docs.Schedules},
	}

	for _, doc := range optional {
		path := filepath.Join(dir, doc.name)
		if err := loadJSON(path, doc.dst); err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("file", doc.name).Msg("Input document missing, skipping")
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", doc.name, err)
		}
	}

	log.Info().
		Int("players", len(docs.Players)).
		Int("history", len(docs.PlayerHistory)).
		Int("matches", len(docs.Matches)).
		Int("stats", len(docs.SeriesStats)).
		Int("schedules", len(docs.Schedules)).
		Msg("Input documents loaded")

	return docs, nil
}

func loadJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// IsPracticeEntry reports whether a schedule row is a practice-block
// placeholder rather than a real fixture.
func IsPracticeEntry(homeTeam string) bool {
	return strings.Contains(homeTeam, "Practice")
}

// ParseFloat converts a scraped numeric string to a float, tolerating blanks
// and placeholder dashes. Returns (0, false) when no value is present.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseInt converts a scraped numeric string to an int, tolerating blanks.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
