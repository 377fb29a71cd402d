package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all process configuration read from the environment.
type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
}

// Load reads .env (if present) and assembles the config. Missing optional
// values get defaults; a missing DSN or JWT secret is an error.
func Load() (Config, error) {
	// Ignore the error: in production the environment is already set.
	_ = godotenv.Load()

	cfg := Config{
		Port:      os.Getenv("PORT"),
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

// Connect opens the Postgres connection. The handle is owned by the caller
// and passed down explicitly; nothing in this package keeps a reference.
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
