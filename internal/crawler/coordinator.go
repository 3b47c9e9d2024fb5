package crawler

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"gorm.io/datatypes"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/services"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

// Notifier is the outbound fire-and-forget channel. Errors are logged by
// the coordinator and never roll back a persisted activity.
type Notifier interface {
	SendActivity(ctx context.Context, record *models.ActivityRecord, roster []models.FireteamMember) error
	SendLeaderboard(ctx context.Context, rows []models.RankedRow) error
}

// Archiver stores raw carnage reports. Best effort; failures never block
// ingestion.
type Archiver interface {
	Store(instanceID string, raw []byte) error
}

// Outcome statuses for one activity passed through the gate sequence.
const (
	OutcomePersisted = "persisted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Outcome is the tagged result of one activity's trip through the
// pipeline stages.
type Outcome struct {
	Status string
	Reason string
	Record *models.ActivityRecord
	Err    error
}

func skipped(reason string) Outcome { return Outcome{Status: OutcomeSkipped, Reason: reason} }
func failed(err error) Outcome      { return Outcome{Status: OutcomeFailed, Err: err} }

func persisted(r *models.ActivityRecord) Outcome {
	return Outcome{Status: OutcomePersisted, Record: r}
}

// CycleStats summarizes one drain of the player queue.
type CycleStats struct {
	RunID     string
	Players   int
	Persisted int64
	Skipped   int64
	Failed    int64
}

// Coordinator drives ingestion for a queue of players: fetch the full
// history, skip to the resume point, classify and persist activities in
// bounded batches, advance the cursor, and feed fireteam discoveries back
// into the queue.
type Coordinator struct {
	conf        *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	api         BungieAPI
	fetcher     *Fetcher
	defs        *DefinitionService
	repos       *repository.Repositories
	leaderboard services.LeaderboardServiceInterface
	notifier    Notifier
	archiver    Archiver

	visited *VisitedSet
	queue   playerQueue
}

func NewCoordinator(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	api BungieAPI,
	defs *DefinitionService,
	repos *repository.Repositories,
	leaderboard services.LeaderboardServiceInterface,
	notifier Notifier,
	archiver Archiver,
) *Coordinator {
	return &Coordinator{
		conf:        conf,
		logger:      logger,
		metrics:     metrics,
		api:         api,
		fetcher:     NewFetcher(api, logger),
		defs:        defs,
		repos:       repos,
		leaderboard: leaderboard,
		notifier:    notifier,
		archiver:    archiver,
		visited:     NewVisitedSet(),
	}
}

// Enqueue adds a player to the process-local queue unless this run has
// already claimed them.
func (c *Coordinator) Enqueue(membershipID string) {
	if c.visited.Contains(membershipID) {
		return
	}
	c.queue.Push(membershipID)
	c.metrics.SetQueueDepth(c.queue.Len())
}

// ResetVisited drops the re-entrancy guard between crawl cycles. Not
// safe to call while a drain is in progress.
func (c *Coordinator) ResetVisited() {
	c.visited = NewVisitedSet()
}

// QueueDepth reports the number of players waiting for ingestion.
func (c *Coordinator) QueueDepth() int { return c.queue.Len() }

// VisitedCount reports the number of players claimed this run.
func (c *Coordinator) VisitedCount() int { return c.visited.Len() }

// Drain processes queued players sequentially until the queue, including
// players discovered along the way, is empty. One player's failure never
// blocks the rest.
func (c *Coordinator) Drain(ctx context.Context) CycleStats {
	stats := CycleStats{RunID: uuid.NewString()}
	c.logger.Infof(providers.TypeCrawler, "Run %s: draining player queue (depth %d)", stats.RunID, c.queue.Len())

	for {
		if ctx.Err() != nil {
			break
		}
		membershipID, ok := c.queue.Pop()
		if !ok {
			break
		}
		c.metrics.SetQueueDepth(c.queue.Len())

		counts, err := c.ProcessPlayer(ctx, membershipID)
		if err != nil {
			c.logger.Errorf(providers.TypeCrawler, "Run %s: player %s failed: %s", stats.RunID, membershipID, err)
		}
		stats.Players++
		stats.Persisted += counts.Persisted
		stats.Skipped += counts.Skipped
		stats.Failed += counts.Failed
	}

	c.logger.Infof(providers.TypeCrawler, "Run %s: done, players=%d persisted=%d skipped=%d failed=%d",
		stats.RunID, stats.Players, stats.Persisted, stats.Skipped, stats.Failed)
	return stats
}

type playerCounts struct {
	Persisted int64
	Skipped   int64
	Failed    int64
}

// ProcessPlayer runs the full pipeline for one player. Transient remote
// failures degrade to skips; only store failures surface as an error, and
// they concern this player alone.
func (c *Coordinator) ProcessPlayer(ctx context.Context, membershipID string) (playerCounts, error) {
	var counts playerCounts

	if !c.visited.Add(membershipID) {
		return counts, nil
	}

	player, err := c.repos.Players.GetByID(ctx, membershipID)
	if err == models.ErrPlayerNotFound {
		player = models.NewPlaceholderPlayer(membershipID, c.conf.Crawler.DefaultMembershipType)
		if createErr := c.repos.Players.Create(ctx, player); createErr != nil {
			return counts, createErr
		}
		c.logger.Infof(providers.TypeCrawler, "Added player %s", membershipID)
	} else if err != nil {
		return counts, err
	}

	activities, characters, err := c.fetcher.FetchAll(ctx, player)
	if err != nil {
		// No data obtained; the durable cursor is untouched so the next
		// run retries from the same point.
		c.logger.Warnf(providers.TypeCrawler, "Fetch for %s failed, retry next run: %s", membershipID, err)
		return counts, nil
	}

	activities = trimToResumePoint(activities, player.LastProcessedActivityID)
	if len(activities) == 0 {
		c.refreshProfile(ctx, player, characters, "")
		c.logger.Infof(providers.TypeCrawler, "Nothing new for %s", player.DisplayName)
		return counts, nil
	}

	tracker := newCursorTracker(activities)
	var (
		persistedN, skippedN, failedN atomic.Int64
		storeErr                      atomic.Error
		nameSeen                      atomic.String
		cursorMu                      sync.Mutex
	)

	RunBatches(ctx, activities, c.conf.Crawler.BatchSize, c.conf.Crawler.Concurrency, func(idx int, item bungie.ActivityHistoryItem) {
		outcome := c.handleActivity(ctx, player, item, &nameSeen)

		switch outcome.Status {
		case OutcomePersisted:
			persistedN.Inc()
		case OutcomeSkipped:
			skippedN.Inc()
		case OutcomeFailed:
			failedN.Inc()
			storeErr.Store(outcome.Err)
		}
		c.metrics.IncActivitiesProcessed(outcome.Status)

		// The cursor only follows the contiguous prefix of handled
		// positions, so a failed item keeps resume behind it while
		// later successes still get counted. cursorMu keeps the store
		// writes in prefix order.
		if outcome.Status != OutcomeFailed {
			cursorMu.Lock()
			if instanceID, advanced := tracker.Complete(idx); advanced {
				if err := c.repos.Players.UpdateCursor(ctx, player.MembershipID, instanceID); err != nil {
					c.logger.Errorf(providers.TypeStore, "Cursor update for %s failed: %s", player.MembershipID, err)
					storeErr.Store(err)
				}
			}
			cursorMu.Unlock()
		}
	})

	counts.Persisted = persistedN.Load()
	counts.Skipped = skippedN.Load()
	counts.Failed = failedN.Load()

	c.refreshProfile(ctx, player, characters, nameSeen.Load())
	c.logger.Infof(providers.TypeCrawler, "Finished player %s: persisted=%d skipped=%d failed=%d",
		player.DisplayName, counts.Persisted, counts.Skipped, counts.Failed)
	return counts, storeErr.Load()
}

// handleActivity runs the gate sequence for one activity: report fetch,
// completion, category, dedup, flawless, persist, notify, leaderboard
// fold. Fireteam discovery happens regardless of whether the activity
// qualified.
func (c *Coordinator) handleActivity(ctx context.Context, player *models.Player, item bungie.ActivityHistoryItem, nameSeen *atomic.String) Outcome {
	instanceID := item.ActivityDetails.InstanceID

	report, raw, err := c.api.GetPGCR(ctx, instanceID)
	if err != nil {
		c.logger.Warnf(providers.TypeBungie, "PGCR %s unavailable: %s", instanceID, err)
		return skipped("pgcr_unavailable")
	}

	if c.archiver != nil {
		if err := c.archiver.Store(instanceID, raw); err != nil {
			c.logger.Warnf(providers.TypeCrawler, "Archive of %s failed: %s", instanceID, err)
		}
	}

	defer c.discoverFireteam(ctx, report)

	entry := FindEntry(report, player.MembershipID)
	if entry == nil {
		return skipped("player_entry_missing")
	}
	if name := entry.Player.DestinyUserInfo.DisplayName; name != "" {
		nameSeen.Store(name)
	}

	if !IsCompleted(entry) {
		return skipped("incomplete")
	}

	def := c.defs.Resolve(ctx, item.ActivityDetails.ReferenceID)
	category := Category(def)
	if !IsTracked(category) {
		return skipped("untracked_category")
	}

	exists, err := c.repos.Activities.Exists(ctx, instanceID)
	if err != nil {
		return failed(err)
	}
	if exists {
		return skipped("duplicate")
	}

	flawless := IsFlawless(report)
	stats := EntryStats(entry)
	roster := rosterOf(report)
	record := buildRecord(report, entry, def, category, stats, flawless, roster)

	start := time.Now()
	created, err := c.repos.Activities.InsertIfAbsent(ctx, record)
	if err != nil {
		return failed(err)
	}
	c.metrics.ObservePersistDuration(time.Since(start))
	if !created {
		// Lost the insert race to a sibling handler; treat as the
		// duplicate gate firing late.
		return skipped("duplicate")
	}

	if err := c.notifier.SendActivity(ctx, record, roster); err != nil {
		c.logger.Errorf(providers.TypeWebhook, "Notification for %s failed: %s", instanceID, err)
	}

	displayName := entry.Player.DestinyUserInfo.DisplayName
	if displayName == "" {
		displayName = player.DisplayName
	}
	if err := c.leaderboard.Apply(ctx, player.MembershipID, displayName, stats, flawless, category); err != nil {
		return failed(err)
	}

	return persisted(record)
}

// discoverFireteam enqueues every roster member this run has not claimed
// yet, creating a minimal player record for first sightings. Enqueueing
// does not consult the durable store; reprocessing an already finished
// player is idempotent thanks to the dedup gate.
func (c *Coordinator) discoverFireteam(ctx context.Context, report *bungie.PGCR) {
	for i := range report.Entries {
		info := report.Entries[i].Player.DestinyUserInfo
		if info.MembershipID == "" || c.visited.Contains(info.MembershipID) {
			continue
		}

		membershipType := info.MembershipType
		if membershipType <= 0 {
			membershipType = c.conf.Crawler.DefaultMembershipType
		}
		if err := c.repos.Players.Create(ctx, models.NewPlaceholderPlayer(info.MembershipID, membershipType)); err != nil {
			c.logger.Errorf(providers.TypeStore, "Creating discovered player %s failed: %s", info.MembershipID, err)
			continue
		}
		c.Enqueue(info.MembershipID)
	}
}

// refreshProfile persists the character list from this fetch and, when a
// carnage report named the player, replaces a placeholder display name
// with the real one. Best effort; the crawl result stands either way.
func (c *Coordinator) refreshProfile(ctx context.Context, player *models.Player, characters []bungie.CharacterComponent, displayName string) {
	if len(characters) == 0 && displayName == "" {
		return
	}

	guardians := make([]models.Guardian, 0, len(characters))
	for _, character := range characters {
		guardians = append(guardians, models.Guardian{
			CharacterID: character.CharacterID,
			Class:       character.ClassType,
			LightLevel:  character.Light,
		})
	}
	guardianJSON, _ := json.Marshal(guardians)
	player.Guardians = datatypes.JSON(guardianJSON)
	if displayName != "" {
		player.DisplayName = displayName
	}

	if err := c.repos.Players.UpdateProfile(ctx, player); err != nil {
		c.logger.Errorf(providers.TypeStore, "Profile refresh for %s failed: %s", player.MembershipID, err)
	}
}

func rosterOf(report *bungie.PGCR) []models.FireteamMember {
	roster := make([]models.FireteamMember, 0, len(report.Entries))
	for i := range report.Entries {
		entry := &report.Entries[i]
		info := entry.Player.DestinyUserInfo
		roster = append(roster, models.FireteamMember{
			MembershipID:   info.MembershipID,
			DisplayName:    info.DisplayName,
			MembershipType: info.MembershipType,
			Platform:       bungie.PlatformName(info.MembershipType),
			Kills:          int(entry.Value("kills")),
			Deaths:         int(entry.Value("deaths")),
			KDRatio:        entry.Value("killsDeathsRatio"),
		})
	}
	return roster
}

func buildRecord(report *bungie.PGCR, entry *bungie.PGCREntry, def *bungie.ActivityDefinition, category string, stats models.ActivityStats, flawless bool, roster []models.FireteamMember) *models.ActivityRecord {
	rosterJSON, _ := json.Marshal(roster)
	duration := report.ActivityDurationSeconds
	if duration == 0 {
		duration = int(entry.Value("activityDurationSeconds"))
	}

	return &models.ActivityRecord{
		InstanceID:      report.ActivityDetails.InstanceID,
		Name:            def.DisplayProperties.Name,
		Category:        category,
		Kills:           stats.Kills,
		Deaths:          stats.Deaths,
		KDRatio:         stats.KDRatio,
		Timestamp:       report.Period,
		ActivityHash:    report.ActivityDetails.ReferenceID,
		UserID:          entry.Player.DestinyUserInfo.MembershipID,
		Completed:       true,
		Flawless:        flawless,
		DurationSeconds: duration,
		FireteamSize:    len(report.Entries),
		StartTime:       report.Period,
		EndTime:         report.Period.Add(time.Duration(duration) * time.Second),
		Fireteam:        datatypes.JSON(rosterJSON),
	}
}

// trimToResumePoint drops everything up to and including the cursor
// match. No cursor means process everything; a cursor that never appears
// in the fetched sequence means nothing new is processed this run.
func trimToResumePoint(activities []bungie.ActivityHistoryItem, cursor string) []bungie.ActivityHistoryItem {
	if cursor == "" {
		return activities
	}
	for i := range activities {
		if activities[i].ActivityDetails.InstanceID == cursor {
			return activities[i+1:]
		}
	}
	return nil
}

// cursorTracker buffers out-of-order completions so the persisted cursor
// always names the end of a contiguous prefix of handled activities.
// Resume after restart is then exact even with concurrent handlers.
type cursorTracker struct {
	mu   sync.Mutex
	ids  []string
	done []bool
	next int
}

func newCursorTracker(activities []bungie.ActivityHistoryItem) *cursorTracker {
	ids := make([]string, len(activities))
	for i := range activities {
		ids[i] = activities[i].ActivityDetails.InstanceID
	}
	return &cursorTracker{ids: ids, done: make([]bool, len(ids))}
}

// Complete marks a position handled. When the contiguous prefix grows, it
// returns the instance id the cursor should advance to.
func (t *cursorTracker) Complete(pos int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done[pos] = true
	advanced := false
	for t.next < len(t.done) && t.done[t.next] {
		t.next++
		advanced = true
	}
	if !advanced {
		return "", false
	}
	return t.ids[t.next-1], true
}
