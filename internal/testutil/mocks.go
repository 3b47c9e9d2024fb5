package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts a
// few of the calls the crawler tests assert on.
type MockMetrics struct {
	mu                    sync.Mutex
	DefinitionCacheHits   int
	DefinitionCacheMisses int
	Outcomes              map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncBungieRequests(_ string, _ int)                {}
func (m *MockMetrics) IncPagesFetched()                                 {}


func (m *MockMetrics) IncActivitiesProcessed(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Outcomes == nil {
		m.Outcomes = make(map[string]int)
	}
	m.Outcomes[outcome]++
}
func (m *MockMetrics) IncDefinitionCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefinitionCacheHits++
}
func (m *MockMetrics) IncDefinitionCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefinitionCacheMisses++
}
func (m *MockMetrics) IncResponseCacheHits()                  {}
func (m *MockMetrics) IncResponseCacheMisses()                {}
func (m *MockMetrics) ObservePersistDuration(_ time.Duration) {}
func (m *MockMetrics) SetQueueDepth(_ int)                    {}

// StubBungie implements crawler.BungieAPI with overridable functions.
type StubBungie struct {
	ProfileFn    func(ctx context.Context, membershipType int, membershipID string) ([]bungie.CharacterComponent, error)
	ActivitiesFn func(ctx context.Context, membershipType int, membershipID, characterID string, page int) ([]bungie.ActivityHistoryItem, error)
	PGCRFn       func(ctx context.Context, instanceID string) (*bungie.PGCR, []byte, error)
	DefinitionFn func(ctx context.Context, hash uint32) (*bungie.ActivityDefinition, error)
	ManifestFn   func(ctx context.Context) (map[uint32]*bungie.ActivityDefinition, error)
}

func (s *StubBungie) GetProfileCharacters(ctx context.Context, membershipType int, membershipID string) ([]bungie.CharacterComponent, error) {
	if s.ProfileFn == nil {
		return nil, nil
	}
	return s.ProfileFn(ctx, membershipType, membershipID)
}

func (s *StubBungie) ListActivityPage(ctx context.Context, membershipType int, membershipID, characterID string, page int) ([]bungie.ActivityHistoryItem, error) {
	if s.ActivitiesFn == nil {
		return nil, nil
	}
	return s.ActivitiesFn(ctx, membershipType, membershipID, characterID, page)
}

func (s *StubBungie) GetPGCR(ctx context.Context, instanceID string) (*bungie.PGCR, []byte, error) {
	if s.PGCRFn == nil {
		return nil, nil, nil
	}
	return s.PGCRFn(ctx, instanceID)
}

func (s *StubBungie) GetDefinition(ctx context.Context, hash uint32) (*bungie.ActivityDefinition, error) {
	if s.DefinitionFn == nil {
		return nil, nil
	}
	return s.DefinitionFn(ctx, hash)
}

func (s *StubBungie) GetManifestDefinitionTable(ctx context.Context) (map[uint32]*bungie.ActivityDefinition, error) {
	if s.ManifestFn == nil {
		return nil, nil
	}
	return s.ManifestFn(ctx)
}

// InMemoryPlayerRepo implements repository.PlayerRepository on a map.
type InMemoryPlayerRepo struct {
	mu      sync.Mutex
	Players map[string]*models.Player
}

func NewInMemoryPlayerRepo() *InMemoryPlayerRepo {
	return &InMemoryPlayerRepo{Players: make(map[string]*models.Player)}
}

func (r *InMemoryPlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Players[player.MembershipID]; ok {
		return nil
	}
	clone := *player
	r.Players[player.MembershipID] = &clone
	return nil
}

func (r *InMemoryPlayerRepo) GetByID(_ context.Context, membershipID string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.Players[membershipID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	clone := *player
	return &clone, nil
}

func (r *InMemoryPlayerRepo) ListAll(_ context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		clone := *r.Players[id]
		players = append(players, &clone)
	}
	return players, nil
}

func (r *InMemoryPlayerRepo) UpdateCursor(_ context.Context, membershipID, instanceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player, ok := r.Players[membershipID]; ok {
		player.LastProcessedActivityID = instanceID
		player.LastUpdated = time.Now().UTC()
	}
	return nil
}

func (r *InMemoryPlayerRepo) UpdateProfile(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.Players[player.MembershipID]; ok {
		existing.DisplayName = player.DisplayName
		existing.MembershipType = player.MembershipType
		existing.Guardians = player.Guardians
		existing.LastUpdated = time.Now().UTC()
	}
	return nil
}

// InMemoryActivityRepo implements repository.ActivityRepository on a map.
type InMemoryActivityRepo struct {
	mu      sync.Mutex
	Records map[string]*models.ActivityRecord
	// InsertErr, when set, makes every insert fail - simulates a store
	// outage.
	InsertErr error
}

func NewInMemoryActivityRepo() *InMemoryActivityRepo {
	return &InMemoryActivityRepo{Records: make(map[string]*models.ActivityRecord)}
}

func (r *InMemoryActivityRepo) InsertIfAbsent(_ context.Context, record *models.ActivityRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return false, r.InsertErr
	}
	if _, ok := r.Records[record.InstanceID]; ok {
		return false, nil
	}
	clone := *record
	r.Records[record.InstanceID] = &clone
	return true, nil
}

func (r *InMemoryActivityRepo) Exists(_ context.Context, instanceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Records[instanceID]
	return ok, nil
}

func (r *InMemoryActivityRepo) GetByID(_ context.Context, instanceID string) (*models.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.Records[instanceID]
	if !ok {
		return nil, errors.New("activity not found")
	}
	clone := *record
	return &clone, nil
}

func (r *InMemoryActivityRepo) ListRecentByUser(_ context.Context, membershipID string, limit int) ([]*models.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []*models.ActivityRecord
	for _, record := range r.Records {
		if record.UserID == membershipID {
			clone := *record
			records = append(records, &clone)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp.After(records[j].Timestamp) })
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// InMemoryLeaderboardRepo implements repository.LeaderboardRepository
// with the same increment/max fold the Postgres upsert performs.
type InMemoryLeaderboardRepo struct {
	mu      sync.Mutex
	RowsMap map[string]*models.LeaderboardRow
	order   []string
}

func NewInMemoryLeaderboardRepo() *InMemoryLeaderboardRepo {
	return &InMemoryLeaderboardRepo{RowsMap: make(map[string]*models.LeaderboardRow)}
}

func (r *InMemoryLeaderboardRepo) ApplyStats(_ context.Context, playerID, displayName string, stats models.ActivityStats, flawless bool, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.RowsMap[playerID]
	if !ok {
		row = &models.LeaderboardRow{PlayerID: playerID, CreatedAt: time.Now().UTC()}
		r.RowsMap[playerID] = row
		r.order = append(r.order, playerID)
	}

	row.DisplayName = displayName
	row.TotalKills += stats.Kills
	row.TotalDeaths += stats.Deaths
	if flawless {
		row.FlawlessRuns++
	}
	switch category {
	case models.CategoryRaid:
		row.TotalRaids++
	case models.CategoryDungeon:
		row.TotalDungeons++
	}
	if stats.KDRatio > row.BestKD {
		row.BestKD = stats.KDRatio
	}
	return nil
}

func (r *InMemoryLeaderboardRepo) TopByKD(_ context.Context, limit int) ([]*models.LeaderboardRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]*models.LeaderboardRow, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.RowsMap[id]
		rows = append(rows, &clone)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].BestKD > rows[j].BestKD })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *InMemoryLeaderboardRepo) GetByPlayerID(_ context.Context, playerID string) (*models.LeaderboardRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.RowsMap[playerID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	clone := *row
	return &clone, nil
}

// NewRepositories bundles the in-memory fakes the coordinator tests use.
func NewRepositories() (*repository.Repositories, *InMemoryPlayerRepo, *InMemoryActivityRepo, *InMemoryLeaderboardRepo) {
	players := NewInMemoryPlayerRepo()
	activities := NewInMemoryActivityRepo()
	leaderboard := NewInMemoryLeaderboardRepo()
	return &repository.Repositories{
		Players:     players,
		Activities:  activities,
		Leaderboard: leaderboard,
	}, players, activities, leaderboard
}

// MockNotifier implements crawler.Notifier and records sends.
type MockNotifier struct {
	mu               sync.Mutex
	ActivitySends    []string
	LeaderboardSends int
	SendErr          error
}

func (m *MockNotifier) SendActivity(_ context.Context, record *models.ActivityRecord, _ []models.FireteamMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActivitySends = append(m.ActivitySends, record.InstanceID)
	return m.SendErr
}

func (m *MockNotifier) SendLeaderboard(_ context.Context, _ []models.RankedRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaderboardSends++
	return m.SendErr
}

// MockArchiver implements crawler.Archiver and records stored ids.
type MockArchiver struct {
	mu     sync.Mutex
	Stored []string
}

func (m *MockArchiver) Store(instanceID string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, instanceID)
	return nil
}
