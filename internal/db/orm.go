package db

import (
	"fmt"
	"os"
	"path/filepath"

	"infinite-experiment/werewolf/internal/logging"
	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitPostgresORM opens the gorm handle backing the game repositories.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logging.Info("Connected to Postgres via GORM")
	return db, nil
}

// InitSQLiteORM opens a SQLite database for local play and migrates the schema in place.
func InitSQLiteORM(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// one connection keeps ":memory:" databases from splitting per connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	logging.Info("Opened SQLite database", "path", path)
	return db, nil
}

// AutoMigrate creates every game table. Postgres deployments use cmd/migrate instead.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Channel{},
		&models.Role{},
		&models.Character{},
		&models.Game{},
		&models.GameChannel{},
		&models.GameRole{},
		&models.GamePlayer{},
		&models.Scenario{},
		&models.ScenarioCharacter{},
		&models.RolePermission{},
		&models.CharacterPermission{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	return db.Exec(`CREATE TABLE IF NOT EXISTS api_keys (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		status BOOLEAN NOT NULL DEFAULT TRUE
	)`).Error
}
