package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"memoai/models"
)

// Config holds everything read from the environment at startup. It is built
// once in main and handed to each service constructor, so there is no
// package-level state to reach for.
type Config struct {
	Port           string
	DatabaseURL    string
	GeminiAPIKey   string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads the environment and fails fast when a required credential is
// missing. The process must not come up without the AI key or storage access.
func Load() (Config, error) {
	cfg := Config{
		Port:           os.Getenv("PORT"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: os.Getenv("SUPABASE_BUCKET"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SupabaseBucket == "" {
		cfg.SupabaseBucket = "uploads"
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if cfg.SupabaseURL == "" {
		return Config{}, fmt.Errorf("SUPABASE_URL is not set")
	}
	if cfg.SupabaseKey == "" {
		return Config{}, fmt.Errorf("SUPABASE_KEY is not set")
	}

	return cfg, nil
}

// InitDB opens the Postgres connection, configures pooling and runs
// automigration for all entities.
func InitDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}

	// Connection pooling
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("postgreSQL connected & migrated successfully!")
	return db, nil
}

// Migrate runs automigration. Split out so tests can run it against sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Course{},
		&models.Note{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.Video{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
