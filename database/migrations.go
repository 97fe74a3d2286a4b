package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/models"
)

// RunMigrations runs database migrations to ensure tables are up to date
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Note{},
		&models.BlockRecord{},
		&models.Event{},
	)
	if err != nil {
		logging.Get().Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}
