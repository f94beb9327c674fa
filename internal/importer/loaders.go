package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/extract"
	"leaguesync/importer/internal/identity"
	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/models"
	"leaguesync/importer/internal/resolver"
)

// Scraped dates arrive in a handful of spellings depending on the source
// page.
var dateLayouts = []string{
	"02-Jan-06",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func splitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func nullInt(id int, ok bool) sql.NullInt64 {
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// lookups caches the reference-table id maps the row loaders resolve
// against. Rebuilt once after the reference import, never mutated by the
// loaders.
type lookups struct {
	leagues map[string]int // league code -> id
	clubs   map[string]int // lower(club name) -> id
	series  map[string]int // series name -> id
	teams   map[string]int // "team_name|league_code" -> id
}

func (im *Importer) buildLookups(ctx context.Context) (*lookups, error) {
	l := &lookups{}
	var err error
	if l.leagues, err = im.db.Leagues.IDsByCode(ctx); err != nil {
		return nil, err
	}
	if l.clubs, err = im.db.Clubs.IDsByName(ctx); err != nil {
		return nil, err
	}
	if l.series, err = im.db.Series.IDsByName(ctx); err != nil {
		return nil, err
	}
	if l.teams, err = im.db.Teams.IDsByNameAndLeague(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *lookups) teamID(teamName, leagueCode string) (int, bool) {
	id, ok := l.teams[teamName+"|"+leagueCode]
	return id, ok
}

// importReferences upserts the resolved league/club/series universe and the
// club-league and series-league association pairs.
func (im *Importer) importReferences(ctx context.Context, u *resolver.Universe) error {
	for i := range u.Leagues {
		if err := im.db.Leagues.Upsert(ctx, &u.Leagues[i]); err != nil {
			return fmt.Errorf("failed to import league %s: %w", u.Leagues[i].LeagueID, err)
		}
		metrics.RowsImported.WithLabelValues("leagues").Inc()
	}

	for _, name := range u.Clubs {
		if err := im.db.Clubs.Upsert(ctx, &models.Club{Name: name}); err != nil {
			return fmt.Errorf("failed to import club %s: %w", name, err)
		}
		metrics.RowsImported.WithLabelValues("clubs").Inc()
	}

	for _, s := range u.Series {
		if err := im.db.Series.Upsert(ctx, &models.Series{Name: s.Name, DisplayName: s.DisplayName}); err != nil {
			return fmt.Errorf("failed to import series %s: %w", s.Name, err)
		}
		metrics.RowsImported.WithLabelValues("series").Inc()
	}

	leagueIDs, err := im.db.Leagues.IDsByCode(ctx)
	if err != nil {
		return err
	}
	clubIDs, err := im.db.Clubs.IDsByName(ctx)
	if err != nil {
		return err
	}
	seriesIDs, err := im.db.Series.IDsByName(ctx)
	if err != nil {
		return err
	}

	for _, pair := range u.ClubLeagues {
		clubID, okC := clubIDs[strings.ToLower(pair.Name)]
		leagueID, okL := leagueIDs[pair.LeagueCode]
		if !okC || !okL {
			continue
		}
		if err := im.db.Clubs.LinkLeague(ctx, clubID, leagueID); err != nil {
			return fmt.Errorf("failed to link club %s to %s: %w", pair.Name, pair.LeagueCode, err)
		}
	}

	for _, pair := range u.SeriesLeagues {
		seriesID, okS := seriesIDs[pair.Name]
		leagueID, okL := leagueIDs[pair.LeagueCode]
		if !okS || !okL {
			continue
		}
		if err := im.db.Series.LinkLeague(ctx, seriesID, leagueID); err != nil {
			return fmt.Errorf("failed to link series %s to %s: %w", pair.Name, pair.LeagueCode, err)
		}
	}

	return nil
}

// importPlayers upserts the roster. Rows whose league/club/series cannot be
// resolved are skipped and counted against the row error ceiling.
func (im *Importer) importPlayers(ctx context.Context, records []extract.PlayerRecord, l *lookups) (imported, skipped int, err error) {
	ceiling := im.db.Profile().RowErrorCeiling
	errors := 0

	for _, rec := range records {
		leagueID, okL := l.leagues[rec.League]
		clubName := resolver.ParseClubName(rec.Club, rec.League)
		clubID, okC := l.clubs[strings.ToLower(clubName)]
		seriesID, okS := l.series[resolver.CleanSeriesName(rec.Series)]
		if !okL || !okC || !okS {
			skipped++
			metrics.RowsSkipped.WithLabelValues("players", "unresolved_reference").Inc()
			continue
		}
		if rec.PlayerID == "" {
			skipped++
			metrics.RowsSkipped.WithLabelValues("players", "missing_id").Inc()
			continue
		}

		player := &models.Player{
			TenniscoresPlayerID: rec.PlayerID,
			FirstName:           rec.FirstName,
			LastName:            rec.LastName,
			LeagueID:            leagueID,
			ClubID:              clubID,
			SeriesID:            seriesID,
			TeamID:              nullInt(l.teamID(rec.Team, rec.League)),
			Wins:                extract.ParseInt(rec.Wins),
			Losses:              extract.ParseInt(rec.Losses),
			Captain:             nullStr(rec.Captain),
			IsActive:            true,
		}
		if pti, ok := extract.ParseFloat(rec.PTI); ok {
			player.PTI = sql.NullFloat64{Float64: pti, Valid: true}
		}

		if err := im.db.Players.Upsert(ctx, player); err != nil {
			errors++
			log.Error().Err(err).Str("player_id", rec.PlayerID).Msg("Failed to upsert player")
			if errors > ceiling {
				return imported, skipped, fmt.Errorf("player import aborted after %d errors: %w", errors, err)
			}
			continue
		}
		imported++
		metrics.RowsImported.WithLabelValues("players").Inc()
	}

	return imported, skipped, nil
}

// importPlayerHistory bulk-loads the PTI history in batches on a rotating
// session. History rows reference players by surrogate id; stale external
// ids go through the resolver first.
func (im *Importer) importPlayerHistory(ctx context.Context, records []extract.PlayerHistoryRecord, l *lookups, res *identity.PlayerResolver, report *identity.ResolutionReport) (int, error) {
	sess, err := im.db.NewSession(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	batchSize := im.db.Profile().BatchSize
	batch := make([]*models.PlayerHistory, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.db.Matches.InsertHistoryBatch(ctx, sess, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return sess.RotateIfNeeded(ctx)
	}

	for _, rec := range records {
		currentID := rec.PlayerID
		playerID, found, err := im.db.Players.IDByExternalID(ctx, currentID)
		if err != nil {
			return total, err
		}
		if !found {
			first, last := splitName(rec.Name)
			leagueID := l.leagues[rec.League]
			resolved, ok, err := res.Resolve(ctx, currentID, first, last, leagueID, 0, 0, report)
			if err != nil {
				return total, err
			}
			if ok {
				currentID = resolved
				playerID, found, err = im.db.Players.IDByExternalID(ctx, currentID)
				if err != nil {
					return total, err
				}
			}
		}
		if !found {
			metrics.RowsSkipped.WithLabelValues("player_history", "unresolved_player").Inc()
			continue
		}

		// Career totals ride along with the history document.
		if err := im.db.Players.UpdateCareerStats(ctx, currentID, rec.Wins, rec.Losses); err != nil {
			return total, err
		}

		leagueID, okL := l.leagues[rec.League]
		for _, m := range rec.Matches {
			h := &models.PlayerHistory{
				PlayerID: sql.NullInt64{Int64: int64(playerID), Valid: true},
				LeagueID: nullInt(leagueID, okL),
				Series:   nullStr(resolver.CleanSeriesName(m.Series)),
				EndPTI:   sql.NullFloat64{Float64: m.EndPTI, Valid: true},
			}
			if d, ok := parseDate(m.Date); ok {
				h.MatchDate = sql.NullTime{Time: d, Valid: true}
			}
			batch = append(batch, h)
			metrics.RowsImported.WithLabelValues("player_history").Inc()
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}

	return total, flush()
}

// importMatches bulk-loads match results. Player columns carry external
// ids; stale ones are resolved by name before the row is written.
func (im *Importer) importMatches(ctx context.Context, records []extract.MatchRecord, l *lookups, res *identity.PlayerResolver, report *identity.ResolutionReport) (int, error) {
	sess, err := im.db.NewSession(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	batchSize := im.db.Profile().BatchSize
	batch := make([]*models.MatchResult, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.db.Matches.InsertResultsBatch(ctx, sess, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return sess.RotateIfNeeded(ctx)
	}

	resolveID := func(externalID, name string, leagueID int) sql.NullString {
		if externalID == "" && name == "" {
			return sql.NullString{}
		}
		if resolved, ok, err := res.ResolveSlot(ctx, externalID, name, leagueID, report); err == nil && ok {
			return nullStr(resolved)
		}
		return nullStr(externalID)
	}

	for _, rec := range records {
		date, okDate := parseDate(rec.Date)
		if !okDate {
			metrics.RowsSkipped.WithLabelValues("match_results", "bad_date").Inc()
			continue
		}
		leagueID, okL := l.leagues[rec.League]

		m := &models.MatchResult{
			LeagueID:      nullInt(leagueID, okL),
			MatchDate:     date,
			HomeTeam:      rec.HomeTeam,
			AwayTeam:      rec.AwayTeam,
			HomeTeamID:    nullInt(l.teamID(rec.HomeTeam, rec.League)),
			AwayTeamID:    nullInt(l.teamID(rec.AwayTeam, rec.League)),
			HomePlayer1ID: resolveID(rec.HomePlayer1ID, rec.HomePlayer1, leagueID),
			HomePlayer2ID: resolveID(rec.HomePlayer2ID, rec.HomePlayer2, leagueID),
			AwayPlayer1ID: resolveID(rec.AwayPlayer1ID, rec.AwayPlayer1, leagueID),
			AwayPlayer2ID: resolveID(rec.AwayPlayer2ID, rec.AwayPlayer2, leagueID),
			Scores:        rec.Scores,
			Winner:        nullStr(rec.Winner),
		}

		batch = append(batch, m)
		metrics.RowsImported.WithLabelValues("match_results").Inc()
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	return total, flush()
}

// importSeriesStats bulk-loads the standings.
func (im *Importer) importSeriesStats(ctx context.Context, records []extract.SeriesStatsRecord, l *lookups) (int, error) {
	sess, err := im.db.NewSession(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	batchSize := im.db.Profile().BatchSize
	batch := make([]*models.SeriesStats, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.db.Stats.InsertBatch(ctx, sess, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return sess.RotateIfNeeded(ctx)
	}

	for _, rec := range records {
		leagueID, okL := l.leagues[rec.League]
		seriesName := resolver.CleanSeriesName(rec.Series)
		seriesID, okS := l.series[seriesName]

		s := &models.SeriesStats{
			LeagueID:    nullInt(leagueID, okL),
			SeriesID:    nullInt(seriesID, okS),
			TeamID:      nullInt(l.teamID(rec.Team, rec.League)),
			Series:      seriesName,
			Team:        rec.Team,
			Points:      rec.Points,
			MatchesWon:  rec.Matches.Won,
			MatchesLost: rec.Matches.Lost,
			LinesWon:    rec.Lines.Won,
			LinesLost:   rec.Lines.Lost,
			SetsWon:     rec.Sets.Won,
			SetsLost:    rec.Sets.Lost,
			GamesWon:    rec.Games.Won,
			GamesLost:   rec.Games.Lost,
		}

		batch = append(batch, s)
		metrics.RowsImported.WithLabelValues("series_stats").Inc()
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	return total, flush()
}

// importSchedule bulk-loads fixtures. Practice blocks are excluded: they
// are user-owned and come back through the restore phase with remapped
// team ids.
func (im *Importer) importSchedule(ctx context.Context, records []extract.ScheduleRecord, l *lookups) (int, error) {
	sess, err := im.db.NewSession(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	batchSize := im.db.Profile().BatchSize
	batch := make([]*models.ScheduleEntry, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.db.Schedule.InsertBatch(ctx, sess, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return sess.RotateIfNeeded(ctx)
	}

	for _, rec := range records {
		if extract.IsPracticeEntry(rec.HomeTeam) {
			metrics.RowsSkipped.WithLabelValues("schedule", "practice_restored_separately").Inc()
			continue
		}

		leagueID, okL := l.leagues[rec.League]
		e := &models.ScheduleEntry{
			LeagueID:   nullInt(leagueID, okL),
			MatchTime:  nullStr(rec.Time),
			HomeTeam:   rec.HomeTeam,
			AwayTeam:   rec.AwayTeam,
			HomeTeamID: nullInt(l.teamID(rec.HomeTeam, rec.League)),
			AwayTeamID: nullInt(l.teamID(rec.AwayTeam, rec.League)),
			Location:   nullStr(rec.Location),
		}
		if d, ok := parseDate(rec.Date); ok {
			e.MatchDate = sql.NullTime{Time: d, Valid: true}
		}

		batch = append(batch, e)
		metrics.RowsImported.WithLabelValues("schedule").Inc()
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	return total, flush()
}
