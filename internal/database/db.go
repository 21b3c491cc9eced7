package database

import (
	"fmt"
	"time"

	"motoboy/internal/config"
	"motoboy/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens the postgres pool through GORM. Migration is left to
// the caller (see Migrate) so the CLI can run it on its own.
func NewConnection(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// supervisor_codigo references a unique code, not a primary key
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.AuditLog{},
		&model.Supervisor{},
		&model.Motoboy{},
		&model.Solicitation{},
		&model.WebhookConfig{},
		&model.WebhookLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if log != nil {
		log.Info("database schema migrated")
	}
	return nil
}
