package services

import (
	"context"
	"strconv"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
)

type LeaderboardServiceInterface interface {
	// Apply folds one qualifying activity into the player's row. The fold
	// is commutative and associative; the caller's duplicate gate is what
	// keeps the same activity from being folded twice.
	Apply(ctx context.Context, playerID, displayName string, stats models.ActivityStats, flawless bool, category string) error
	// TopByKD returns the ranked leaderboard, best KD first, ties in
	// arrival order.
	TopByKD(ctx context.Context, limit int) ([]models.RankedRow, error)
	Rows(ctx context.Context, limit int) ([]*models.LeaderboardRow, error)
}

type LeaderboardService struct {
	repo   repository.LeaderboardRepository
	logger providers.Logger
}

func NewLeaderboardService(repos *repository.Repositories, logger providers.Logger) LeaderboardServiceInterface {
	return &LeaderboardService{repo: repos.Leaderboard, logger: logger}
}

func (s *LeaderboardService) Apply(ctx context.Context, playerID, displayName string, stats models.ActivityStats, flawless bool, category string) error {
	err := s.repo.ApplyStats(ctx, playerID, displayName, stats, flawless, category)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Leaderboard fold for %s failed: %s", playerID, err)
		return err
	}
	return nil
}

func (s *LeaderboardService) TopByKD(ctx context.Context, limit int) ([]models.RankedRow, error) {
	rows, err := s.repo.TopByKD(ctx, limit)
	if err != nil {
		return nil, err
	}

	ranked := make([]models.RankedRow, 0, len(rows))
	for i, row := range rows {
		ranked = append(ranked, models.RankedRow{
			Rank:        i + 1,
			DisplayName: row.DisplayName,
			BestKD:      strconv.FormatFloat(row.BestKD, 'f', 2, 64),
		})
	}
	return ranked, nil
}

func (s *LeaderboardService) Rows(ctx context.Context, limit int) ([]*models.LeaderboardRow, error) {
	return s.repo.TopByKD(ctx, limit)
}
