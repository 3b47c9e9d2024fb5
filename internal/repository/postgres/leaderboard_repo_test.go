package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository/postgres"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/testutil"
)

func TestLeaderboardRepository_ApplyStatsUpserts(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.ApplyStats(ctx, "p1", "Guardian", models.ActivityStats{Kills: 5, Deaths: 1, KDRatio: 5.0}, true, models.CategoryRaid))
	require.NoError(t, repo.ApplyStats(ctx, "p1", "Guardian", models.ActivityStats{Kills: 2, Deaths: 2, KDRatio: 1.0}, false, models.CategoryDungeon))

	row, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, row.TotalRaids)
	assert.Equal(t, 1, row.TotalDungeons)
	assert.Equal(t, 1, row.FlawlessRuns)
	assert.Equal(t, 7, row.TotalKills)
	assert.Equal(t, 3, row.TotalDeaths)
	assert.InDelta(t, 5.0, row.BestKD, 0.001)
}

func TestLeaderboardRepository_BestKDNeverDecreases(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.ApplyStats(ctx, "p1", "Guardian", models.ActivityStats{Kills: 12, Deaths: 3, KDRatio: 4.0}, false, models.CategoryRaid))
	require.NoError(t, repo.ApplyStats(ctx, "p1", "Guardian", models.ActivityStats{Kills: 2, Deaths: 2, KDRatio: 1.0}, false, models.CategoryRaid))

	row, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, row.BestKD, 0.001)
}

func TestLeaderboardRepository_DisplayNameFollowsLatest(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.ApplyStats(ctx, "p1", "Unknown#p1", models.ActivityStats{KDRatio: 1.0}, false, models.CategoryRaid))
	require.NoError(t, repo.ApplyStats(ctx, "p1", "RealName#1234", models.ActivityStats{KDRatio: 1.0}, false, models.CategoryRaid))

	row, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "RealName#1234", row.DisplayName)
}

func TestLeaderboardRepository_TopByKDOrdering(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.ApplyStats(ctx, "p1", "Alpha", models.ActivityStats{KDRatio: 2.5}, false, models.CategoryRaid))
	require.NoError(t, repo.ApplyStats(ctx, "p2", "Bravo", models.ActivityStats{KDRatio: 10.0}, false, models.CategoryRaid))
	require.NoError(t, repo.ApplyStats(ctx, "p3", "Charlie", models.ActivityStats{KDRatio: 0.5}, false, models.CategoryDungeon))

	rows, err := repo.TopByKD(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bravo", rows[0].DisplayName)
	assert.Equal(t, "Alpha", rows[1].DisplayName)
}

func TestLeaderboardRepository_GetByPlayerID_NotFound(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewLeaderboardRepository(testDB.DB)

	_, err := repo.GetByPlayerID(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
}
