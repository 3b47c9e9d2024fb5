package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/services"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/testutil"
)

func newTestScheduler(t *testing.T, w *testWorld, seeds []string) *Scheduler {
	t.Helper()
	conf := crawlerConfig()
	conf.Crawler.SeedPlayers = seeds

	logger := &testutil.MockLogger{}
	repos, players, activities, leaderboard := testutil.NewRepositories()
	w.players = players
	w.activities = activities
	w.leaderboard = leaderboard

	defs := NewDefinitionService(conf, w.api, logger, &testutil.MockMetrics{})
	lbService := services.NewLeaderboardService(repos, logger)
	w.coordinator = NewCoordinator(conf, logger, &testutil.MockMetrics{}, w.api, defs, repos, lbService, w.notifier, w.archiver)

	return NewScheduler(conf, logger, w.coordinator, repos, lbService, w.notifier).(*Scheduler)
}

func TestScheduler_RunCycleCrawlsSeedsAndPublishes(t *testing.T) {
	w := newTestWorld(t)
	s := newTestScheduler(t, w, []string{"p1"})
	w.addClear("p1", "i1", 100, 20, 2)

	s.RunCycle()

	record, err := w.activities.GetByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "Last Wish", record.Name)
	assert.Equal(t, 1, w.notifier.LeaderboardSends)
}

func TestScheduler_SecondCycleRevisitsPlayers(t *testing.T) {
	w := newTestWorld(t)
	s := newTestScheduler(t, w, []string{"p1"})
	w.addClear("p1", "i1", 100, 20, 2)

	s.RunCycle()
	assert.Equal(t, 1, w.coordinator.VisitedCount())

	// Fresh cycle, fresh guard: the player is visited again and the
	// cursor resumes past the first clear.
	w.addClear("p1", "i2", 200, 9, 0)
	s.RunCycle()

	_, err := w.activities.GetByID(context.Background(), "i2")
	assert.NoError(t, err)
	assert.Equal(t, 2, w.notifier.LeaderboardSends)
}

func TestScheduler_StoppedSchedulerSkipsCycle(t *testing.T) {
	w := newTestWorld(t)
	s := newTestScheduler(t, w, []string{"p1"})
	w.addClear("p1", "i1", 100, 20, 2)

	s.Stop()
	s.RunCycle()

	_, err := w.activities.GetByID(context.Background(), "i1")
	assert.Error(t, err)
	assert.Zero(t, w.notifier.LeaderboardSends)
}

func TestScheduler_InitAndStop(t *testing.T) {
	w := newTestWorld(t)
	s := newTestScheduler(t, w, nil)

	s.Init()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}
