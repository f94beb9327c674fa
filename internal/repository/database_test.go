package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaguesync/importer/internal/config"
	"leaguesync/importer/internal/models"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "leaguesync_test",
		User:     "leaguesync_user",
		Password: "leaguesync_password",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg, config.ProfileFor("local"))
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.Bootstrap(), "Failed to apply migrations")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func seedNaturalKey(t *testing.T, db *Database, ctx context.Context) models.TeamKey {
	league := &models.League{LeagueID: "APTA_CHICAGO", LeagueName: "APTA Chicago"}
	require.NoError(t, db.Leagues.Upsert(ctx, league))
	leagueIDs, err := db.Leagues.IDsByCode(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Clubs.Upsert(ctx, &models.Club{Name: "Tennaqua"}))
	clubIDs, err := db.Clubs.IDsByName(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Series.Upsert(ctx, &models.Series{Name: "Chicago 6", DisplayName: "Series 6"}))
	seriesIDs, err := db.Series.IDsByName(ctx)
	require.NoError(t, err)

	return models.TeamKey{
		ClubID:   clubIDs["tennaqua"],
		SeriesID: seriesIDs["Chicago 6"],
		LeagueID: leagueIDs["APTA_CHICAGO"],
	}
}

func TestTeamUpsertPreservesID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	key := seedNaturalKey(t, db, ctx)

	first := &models.Team{
		ClubID:   key.ClubID,
		SeriesID: key.SeriesID,
		LeagueID: key.LeagueID,
		TeamName: "Tennaqua - 6",
	}
	id1, wasInsert, err := db.Teams.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, wasInsert, "First occurrence should insert")

	// Same natural key with a new name: id survives, name updates.
	second := &models.Team{
		ClubID:   key.ClubID,
		SeriesID: key.SeriesID,
		LeagueID: key.LeagueID,
		TeamName: "Tennaqua 6",
	}
	id2, wasInsert, err := db.Teams.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, wasInsert, "Second occurrence should update")
	assert.Equal(t, id1, id2, "Surrogate id must survive the upsert")

	stored, found, err := db.Teams.GetByNaturalKey(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Tennaqua 6", stored.TeamName, "Last-processed name wins")
}

func TestClubUpsertCaseInsensitive(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Clubs.Upsert(ctx, &models.Club{Name: "BIRCHWOOD"}))
	require.NoError(t, db.Clubs.Upsert(ctx, &models.Club{Name: "Birchwood"}))

	club, found, err := db.Clubs.GetByName(ctx, "birchwood")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Birchwood", club.Name, "Later capitalization replaces the stored name")
}

func TestPlayerScopedUniqueness(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	key := seedNaturalKey(t, db, ctx)
	require.NoError(t, db.Series.Upsert(ctx, &models.Series{Name: "Chicago 9"}))
	seriesIDs, err := db.Series.IDsByName(ctx)
	require.NoError(t, err)

	// The same external id at two series within one league is two rows.
	base := models.Player{
		TenniscoresPlayerID: "nndz-test-0001",
		FirstName:           "Pat",
		LastName:            "Sub",
		LeagueID:            key.LeagueID,
		ClubID:              key.ClubID,
		SeriesID:            key.SeriesID,
		IsActive:            true,
	}
	require.NoError(t, db.Players.Upsert(ctx, &base))

	other := base
	other.SeriesID = seriesIDs["Chicago 9"]
	other.PTI = sql.NullFloat64{Float64: 38.5, Valid: true}
	require.NoError(t, db.Players.Upsert(ctx, &other))

	matches, err := db.Players.FindByNameScope(ctx, "Pat", "Sub", key.LeagueID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 2, "One row per (id, league, club, series) scope")
}

func TestCareerStatsCoverAllScopeRows(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	key := seedNaturalKey(t, db, ctx)
	require.NoError(t, db.Series.Upsert(ctx, &models.Series{Name: "Chicago 11"}))
	seriesIDs, err := db.Series.IDsByName(ctx)
	require.NoError(t, err)

	base := models.Player{
		TenniscoresPlayerID: "nndz-career-0001",
		FirstName:           "Chris",
		LastName:            "Ladder",
		LeagueID:            key.LeagueID,
		ClubID:              key.ClubID,
		SeriesID:            key.SeriesID,
		IsActive:            true,
	}
	require.NoError(t, db.Players.Upsert(ctx, &base))
	other := base
	other.SeriesID = seriesIDs["Chicago 11"]
	require.NoError(t, db.Players.Upsert(ctx, &other))

	require.NoError(t, db.Players.UpdateCareerStats(ctx, "nndz-career-0001", 134, 97))

	wins, losses, err := db.Players.CareerStats(ctx, "nndz-career-0001")
	require.NoError(t, err)
	assert.Equal(t, 134, wins)
	assert.Equal(t, 97, losses)

	// Career totals belong to the player, not the scope row.
	var behind int
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM players WHERE tenniscores_player_id = $1 AND career_wins <> 134`,
		"nndz-career-0001").Scan(&behind)
	require.NoError(t, err)
	assert.Zero(t, behind, "Every scope row carries the same career totals")
}

func TestRemapTeamReferencesAcrossReload(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	key := seedNaturalKey(t, db, ctx)
	oldID, _, err := db.Teams.Upsert(ctx, &models.Team{
		ClubID:   key.ClubID,
		SeriesID: key.SeriesID,
		LeagueID: key.LeagueID,
		TeamName: "Tennaqua - 6",
	})
	require.NoError(t, err)

	var userID int
	require.NoError(t, db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, first_name, last_name) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id`,
		"captain@example.com", "Sam", "Captain").Scan(&userID))

	var pollID int
	require.NoError(t, db.Pool.QueryRow(ctx,
		`INSERT INTO polls (team_id, created_by, question) VALUES ($1, $2, $3) RETURNING id`,
		oldID, userID, "Who can play Saturday?").Scan(&pollID))

	stamp := NewStamp()
	require.NoError(t, db.Backup.Snapshot(ctx, stamp))
	require.NoError(t, db.Backup.Clear(ctx))

	// Rebuild the same natural key. The surrogate id moves because the
	// sequence is never reset.
	newKey := seedNaturalKey(t, db, ctx)
	newID, wasInsert, err := db.Teams.Upsert(ctx, &models.Team{
		ClubID:   newKey.ClubID,
		SeriesID: newKey.SeriesID,
		LeagueID: newKey.LeagueID,
		TeamName: "Tennaqua - 6",
	})
	require.NoError(t, err)
	require.True(t, wasInsert, "Clear should have removed the old row")
	require.NotEqual(t, oldID, newID)

	mapped, err := db.Backup.BuildTeamMapping(ctx, stamp)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mapped, 1, "Natural key should map old id to new")

	updated, err := db.Backup.RemapTeamReferences(ctx, stamp)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, updated["polls"], int64(1))

	var gotTeam int
	require.NoError(t, db.Pool.QueryRow(ctx,
		`SELECT team_id FROM polls WHERE id = $1`, pollID).Scan(&gotTeam))
	assert.Equal(t, newID, gotTeam, "Poll should follow the team to its new id")

	counts, err := db.UserContent.OrphanCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts["polls"], "No orphaned polls after remap")

	require.NoError(t, db.Backup.Drop(ctx, stamp))
}
