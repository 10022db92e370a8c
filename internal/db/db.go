package db

import (
	"calc_system/internal/config" // Application configuration
	"calc_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql"  // MySQL driver for GORM
	"gorm.io/driver/sqlite" // SQLite driver for GORM (local file store)
	"gorm.io/gorm"          // GORM ORM library
)

// Open connects to the configured store: the MySQL DSN from DATABASE_URL when
// set, otherwise a local SQLite file.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return gorm.Open(mysql.Open(cfg.DatabaseURL), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err := db.AutoMigrate(&domain.User{}, &domain.Calculation{})
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
