package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	// Discovery may race on the same member across batch handlers; the
	// first insert wins and the rest are no-ops.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "membership_id"}},
		DoNothing: true,
	}).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, membershipID string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).First(&player, "membership_id = ?", membershipID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).Order("last_updated ASC").Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) UpdateCursor(ctx context.Context, membershipID, instanceID string) error {
	return r.db.WithContext(ctx).Model(&models.Player{}).
		Where("membership_id = ?", membershipID).
		Updates(map[string]interface{}{
			"last_processed_activity_id": instanceID,
			"last_updated":               time.Now().UTC(),
		}).Error
}

func (r *playerRepository) UpdateProfile(ctx context.Context, player *models.Player) error {
	player.LastUpdated = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.Player{}).
		Where("membership_id = ?", player.MembershipID).
		Updates(map[string]interface{}{
			"display_name":    player.DisplayName,
			"membership_type": player.MembershipType,
			"guardians":       player.Guardians,
			"last_updated":    player.LastUpdated,
		}).Error
}
