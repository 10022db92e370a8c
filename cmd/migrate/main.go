package main

import (
	"calc_system/internal/config" // Custom import path (Config)
	"calc_system/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Open the configured store and run schema migration
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	db.Migrate(database)
}
