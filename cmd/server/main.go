package main

import (
	"calc_system/internal/api"    // Custom package for API handlers
	"calc_system/internal/config" // Custom package for configuration
	"calc_system/internal/db"     // Custom package for the store
	"context"                     // context package is needed for Redis operations
	"log"                         // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// The signing secret is never hardcoded: production refuses to start
	// without one, development falls back with a loud warning
	if cfg.JWTSecret == "" {
		if cfg.IsProd {
			logrus.Fatal("JWT_SECRET must be set in production")
		}
		logrus.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "insecure-dev-secret"
	}

	// Connect to the configured store (MySQL DSN or local SQLite file)
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	db.Migrate(database) // Create tables on startup

	// Setup Redis client when configured; the read cache is optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin with the full route table
	r := api.NewRouter(database, redisClient, cfg)

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
