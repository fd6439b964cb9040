// Package db opens the application database connection.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"app_backend/internal/config"
	"app_backend/internal/feature/users/domain/entity"
)

// Open connects to the database described by the settings and runs schema
// migration when enabled. Postgres connections are retried for up to 60
// seconds so the server can come up before the database does.
func Open(settings *config.Settings) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch settings.Database.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(settings.Database.DSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
	case "postgres":
		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(postgres.Open(settings.Database.DSN), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("DB connect failed after 60s: %w", err)
			}
			slog.Warn("DB connect failed, retrying...", "error", err)
			time.Sleep(3 * time.Second)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", settings.Database.Driver)
	}

	if settings.Database.ConnMaxAge > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetConnMaxLifetime(time.Duration(settings.Database.ConnMaxAge) * time.Second)
	}

	if settings.Database.Migrate {
		// マイグレーション
		if err := db.AutoMigrate(&entity.User{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return db, nil
}
