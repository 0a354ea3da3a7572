package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection. Services take a *gorm.DB explicitly so
// tests can substitute an in-memory database; this global exists for the
// server wiring and the CLIs.
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "trektogether")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("✅ Database connected successfully")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := MigrateModels(DB)
	if err != nil {
		return err
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// MigrateModels auto-migrates the full schema on the given connection. Tests
// call this against an in-memory database.
func MigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.VisitedCity{},
		&models.UserBlock{},
		&models.TypingIndicator{},
		&models.Post{},
		&models.PostImage{},
		&models.PostLike{},
		&models.PostComment{},
		&models.Request{},
		&models.RequestInterest{},
		&models.RequestComment{},
		&models.ChatMessage{},
		&models.DirectMessage{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// createIndexes creates performance indexes beyond what the model tags declare
func createIndexes() error {
	// User lookups by identity
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")

	// Room history is always read newest-first
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_room_created ON chat_messages (room_type, room_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_direct_messages_conv_created ON direct_messages (conversation_id, created_at DESC)")

	// City feeds
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_city_created ON posts (city_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_requests_city_created ON requests (city_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_comments_post_created ON post_comments (post_id, created_at ASC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_request_comments_request_created ON request_comments (request_id, created_at ASC)")

	// Typing sweep scans by expiry
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_typing_indicators_expires ON typing_indicators (expires_at)")

	// Report review queue
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_status_created ON reports (status, created_at ASC)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
