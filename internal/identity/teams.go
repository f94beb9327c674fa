package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/models"
	"leaguesync/importer/internal/repository"
)

// TeamPreserver imports resolved team tuples so that an existing team's
// surrogate id survives whenever its (club, series, league) natural key
// still exists. Only team_name, alias and display_name are updated on an
// existing row.
type TeamPreserver struct {
	db           *repository.Database
	errorCeiling int
}

func NewTeamPreserver(db *repository.Database) *TeamPreserver {
	return &TeamPreserver{
		db:           db,
		errorCeiling: db.Profile().TeamErrorCeiling,
	}
}

// TeamImportResult accumulates per-run counters for the team phase.
type TeamImportResult struct {
	Inserted int
	Updated  int
	Renamed  int
	Skipped  int
	Errors   int
}

func naturalKey(t models.TeamTuple) string {
	return strings.ToLower(t.ClubName) + "|" + t.SeriesName + "|" + t.LeagueCode
}

func nameKey(t models.TeamTuple) string {
	return strings.ToLower(t.TeamName) + "|" + t.LeagueCode
}

// DedupeTuples enforces both team uniqueness rules on the input before any
// row reaches the database. Tuples sharing a (club, series, league) key
// collapse to one entry whose team_name comes from the last occurrence.
// A tuple whose (team_name, league) collides with a different natural key
// is renamed to carry its series qualifier. Returns the deduplicated list
// and the number of renames applied.
func DedupeTuples(tuples []models.TeamTuple) ([]models.TeamTuple, int) {
	out := make([]models.TeamTuple, 0, len(tuples))
	byNatural := make(map[string]int, len(tuples))
	byName := make(map[string]int, len(tuples))
	renamed := 0

	for _, t := range tuples {
		nk := naturalKey(t)
		if i, ok := byNatural[nk]; ok {
			// Same natural key seen again: last team_name wins.
			prev := out[i]
			if other, clash := byName[nameKey(t)]; clash && other != i {
				t.TeamName = fmt.Sprintf("%s (%s)", t.TeamName, t.SeriesName)
				renamed++
			}
			delete(byName, nameKey(prev))
			out[i].TeamName = t.TeamName
			out[i].TeamAlias = t.TeamAlias
			byName[nameKey(out[i])] = i
			continue
		}

		if _, clash := byName[nameKey(t)]; clash {
			t.TeamName = fmt.Sprintf("%s (%s)", t.TeamName, t.SeriesName)
			renamed++
			log.Warn().
				Str("team", t.TeamName).
				Str("league", t.LeagueCode).
				Msg("Team name collision resolved with series qualifier")
		}

		byNatural[nk] = len(out)
		byName[nameKey(t)] = len(out)
		out = append(out, t)
	}

	return out, renamed
}

// Import upserts every tuple, resolving club/series/league names to ids via
// the lookup maps built from the already-imported reference tables. Rows
// whose references cannot be resolved are skipped and counted; upsert
// errors count against the phase error ceiling and abort the phase once
// exceeded.
func (p *TeamPreserver) Import(ctx context.Context, tuples []models.TeamTuple) (*TeamImportResult, error) {
	leagueIDs, err := p.db.Leagues.IDsByCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load league ids: %w", err)
	}
	clubIDs, err := p.db.Clubs.IDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load club ids: %w", err)
	}
	seriesIDs, err := p.db.Series.IDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load series ids: %w", err)
	}

	deduped, renamed := DedupeTuples(tuples)
	result := &TeamImportResult{Renamed: renamed}

	for _, t := range deduped {
		leagueID, okL := leagueIDs[t.LeagueCode]
		clubID, okC := clubIDs[strings.ToLower(t.ClubName)]
		seriesID, okS := seriesIDs[t.SeriesName]
		if !okL || !okC || !okS {
			result.Skipped++
			metrics.RowsSkipped.WithLabelValues("teams", "unresolved_reference").Inc()
			log.Warn().
				Str("team", t.TeamName).
				Str("club", t.ClubName).
				Str("series", t.SeriesName).
				Str("league", t.LeagueCode).
				Msg("Skipping team with unresolved reference")
			continue
		}

		team := &models.Team{
			ClubID:      clubID,
			SeriesID:    seriesID,
			LeagueID:    leagueID,
			TeamName:    t.TeamName,
			TeamAlias:   nullString(t.TeamAlias),
			DisplayName: nullString(t.TeamName),
		}

		_, wasInsert, err := p.db.Teams.Upsert(ctx, team)
		if err != nil {
			result.Errors++
			log.Error().Err(err).Str("team", t.TeamName).Msg("Failed to upsert team")
			if result.Errors > p.errorCeiling {
				return result, fmt.Errorf("team import aborted after %d errors: %w", result.Errors, err)
			}
			continue
		}

		if wasInsert {
			result.Inserted++
		} else {
			result.Updated++
		}
		metrics.RowsImported.WithLabelValues("teams").Inc()
	}

	metrics.TeamsPreserved.Set(float64(result.Updated))

	log.Info().
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("renamed", result.Renamed).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("Team import complete")

	return result, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
