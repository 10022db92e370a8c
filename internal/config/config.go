package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string // Application port
	DatabaseURL     string // MySQL DSN; empty selects the local SQLite store
	DBPath          string // SQLite file path used when DatabaseURL is unset
	JWTSecret       string // JWT secret key
	TokenTTLMinutes int    // Access token lifetime in minutes
	RedisAddr       string // Redis server address; empty disables the read cache
	RedisPass       string // Redis password
	RedisDB         int    // Redis database number
	IsProd          bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttl, err := strconv.Atoi(os.Getenv("TOKEN_TTL_MINUTES"))
	if err != nil || ttl <= 0 {
		ttl = 30 // Default token lifetime
	}
	cfg := &Config{
		AppPort:         os.Getenv("APP_PORT"),          // Application port
		DatabaseURL:     os.Getenv("DATABASE_URL"),      // MySQL connection string
		DBPath:          os.Getenv("DB_PATH"),           // SQLite file path
		JWTSecret:       os.Getenv("JWT_SECRET"),        // JWT secret key
		TokenTTLMinutes: ttl,                            // Token lifetime
		RedisAddr:       os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:         redisDB,                        // Redis database number
		IsProd:          os.Getenv("IS_PROD") == "true", // Is production environment
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080" // Default port
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "calc.db" // Default local store
	}
	return cfg
}
