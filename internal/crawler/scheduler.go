package crawler

import (
	"context"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/crawler/interfaces"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/services"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

// Scheduler drives full crawl cycles on a fixed interval: enqueue every
// known player plus the configured seeds, drain the queue, then publish
// the leaderboard. A cycle still in flight when the next tick fires is
// left alone.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	coordinator *Coordinator
	players     repository.PlayerRepository
	leaderboard services.LeaderboardServiceInterface
	notifier    Notifier

	cron    *gron.Cron
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	coordinator *Coordinator,
	repos *repository.Repositories,
	leaderboard services.LeaderboardServiceInterface,
	notifier Notifier,
) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:      config,
		logger:      logger,
		coordinator: coordinator,
		players:     repos.Players,
		leaderboard: leaderboard,
		notifier:    notifier,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Crawler.Interval), s.RunCycle)
	s.cron.Start()

	// First cycle starts immediately; the cron only covers follow-ups.
	go s.RunCycle()
}

// Stop cancels the running cycle and halts the cron. In-flight batch
// handlers are allowed to finish; only new dispatches stop.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) RunCycle() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warnf(providers.TypeCrawler, "Previous crawl cycle still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	if s.ctx.Err() != nil {
		return
	}

	// The re-entrancy guard scopes to one cycle; a fresh cycle may visit
	// everyone again, and the per-player cursor keeps that cheap.
	s.coordinator.ResetVisited()

	for _, seed := range s.config.Crawler.SeedPlayers {
		s.coordinator.Enqueue(seed)
	}

	players, err := s.players.ListAll(s.ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Listing players failed, cycle aborted: %s", err)
		return
	}
	for _, player := range players {
		s.coordinator.Enqueue(player.MembershipID)
	}

	stats := s.coordinator.Drain(s.ctx)
	if s.ctx.Err() != nil {
		return
	}

	rows, err := s.leaderboard.TopByKD(s.ctx, s.config.Crawler.LeaderboardSize)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Leaderboard read failed after run %s: %s", stats.RunID, err)
		return
	}
	if err := s.notifier.SendLeaderboard(s.ctx, rows); err != nil {
		s.logger.Errorf(providers.TypeWebhook, "Leaderboard publication failed: %s", err)
	}
}
