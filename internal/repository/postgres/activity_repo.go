package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) InsertIfAbsent(ctx context.Context, record *models.ActivityRecord) (bool, error) {
	// The ON CONFLICT guard, not the Exists pre-check, is what makes
	// concurrent handlers racing on the same instance id safe.
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instance_id"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *activityRepository) Exists(ctx context.Context, instanceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityRecord{}).
		Where("instance_id = ?", instanceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepository) GetByID(ctx context.Context, instanceID string) (*models.ActivityRecord, error) {
	var record models.ActivityRecord
	err := r.db.WithContext(ctx).First(&record, "instance_id = ?", instanceID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *activityRepository) ListRecentByUser(ctx context.Context, membershipID string, limit int) ([]*models.ActivityRecord, error) {
	var records []*models.ActivityRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", membershipID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
