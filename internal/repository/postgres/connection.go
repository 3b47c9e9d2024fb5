package postgres

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func NewConnection(conf *structures.Config) (*gorm.DB, error) {
	mode := logger.Silent
	if conf.Debug {
		mode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(conf.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Player{},
		&models.ActivityRecord{},
		&models.LeaderboardRow{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Players:     NewPlayerRepository(db),
		Activities:  NewActivityRepository(db),
		Leaderboard: NewLeaderboardRepository(db),
	}
}
