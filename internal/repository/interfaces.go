package repository

import (
	"context"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, membershipID string) (*models.Player, error)
	ListAll(ctx context.Context) ([]*models.Player, error)
	// UpdateCursor advances the resume cursor and refreshes LastUpdated.
	UpdateCursor(ctx context.Context, membershipID, instanceID string) error
	UpdateProfile(ctx context.Context, player *models.Player) error
}

type ActivityRepository interface {
	// InsertIfAbsent persists the record unless one with the same instance
	// id already exists. Returns false when the insert was a no-op.
	InsertIfAbsent(ctx context.Context, record *models.ActivityRecord) (bool, error)
	Exists(ctx context.Context, instanceID string) (bool, error)
	GetByID(ctx context.Context, instanceID string) (*models.ActivityRecord, error)
	ListRecentByUser(ctx context.Context, membershipID string, limit int) ([]*models.ActivityRecord, error)
}

type LeaderboardRepository interface {
	// ApplyStats upserts the player's row, incrementing totals and raising
	// BestKD to the running maximum.
	ApplyStats(ctx context.Context, playerID, displayName string, stats models.ActivityStats, flawless bool, category string) error
	TopByKD(ctx context.Context, limit int) ([]*models.LeaderboardRow, error)
	GetByPlayerID(ctx context.Context, playerID string) (*models.LeaderboardRow, error)
}

type Repositories struct {
	Players     PlayerRepository
	Activities  ActivityRepository
	Leaderboard LeaderboardRepository
}
