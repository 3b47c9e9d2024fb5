package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
)

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *leaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) ApplyStats(ctx context.Context, playerID, displayName string, stats models.ActivityStats, flawless bool, category string) error {
	row := &models.LeaderboardRow{
		PlayerID:    playerID,
		DisplayName: displayName,
		TotalKills:  stats.Kills,
		TotalDeaths: stats.Deaths,
		BestKD:      stats.KDRatio,
		CreatedAt:   time.Now().UTC(),
	}
	if flawless {
		row.FlawlessRuns = 1
	}
	switch category {
	case models.CategoryRaid:
		row.TotalRaids = 1
	case models.CategoryDungeon:
		row.TotalDungeons = 1
	}

	// Single statement upsert so concurrent folds for the same player
	// cannot lose increments.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"display_name":   displayName,
			"total_raids":    gorm.Expr("leaderboard_rows.total_raids + ?", row.TotalRaids),
			"total_dungeons": gorm.Expr("leaderboard_rows.total_dungeons + ?", row.TotalDungeons),
			"flawless_runs":  gorm.Expr("leaderboard_rows.flawless_runs + ?", row.FlawlessRuns),
			"total_kills":    gorm.Expr("leaderboard_rows.total_kills + ?", stats.Kills),
			"total_deaths":   gorm.Expr("leaderboard_rows.total_deaths + ?", stats.Deaths),
			"best_kd":        gorm.Expr("GREATEST(leaderboard_rows.best_kd, ?)", stats.KDRatio),
		}),
	}).Create(row).Error
}

func (r *leaderboardRepository) TopByKD(ctx context.Context, limit int) ([]*models.LeaderboardRow, error) {
	var rows []*models.LeaderboardRow
	// Ties resolve by arrival order, so a newcomer never displaces an
	// earlier row with the same best KD.
	err := r.db.WithContext(ctx).
		Order("best_kd DESC").
		Order("created_at ASC").
		Order("player_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *leaderboardRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.LeaderboardRow, error) {
	var row models.LeaderboardRow
	err := r.db.WithContext(ctx).First(&row, "player_id = ?", playerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, err
	}
	return &row, nil
}
