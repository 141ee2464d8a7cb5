package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
)

// Open connects to the on-device SQLite database and applies migrations.
// Migrations are additive only: opening a store created by an older build
// adds the missing tables and indices, it never drops data.
func Open(path string) (*gorm.DB, error) {

	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", path, err)
	}

	err = database.AutoMigrate(
		&models.OfflineOrder{},
		&models.OfflineOrderItem{},
		&models.OfflineCustomer{},
		&models.MenuCache{},
		&models.SyncQueueItem{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	log.Println("Local store opened and migrated successfully")

	return database, nil
}
