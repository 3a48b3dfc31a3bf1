package database

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tournament-arena/internal/config"
	"tournament-arena/internal/models"
)

// gormWriter forwards gorm's log lines to logrus
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.WithField("component", "gorm").Errorf(format, args...)
}

// Logger reports failed queries through logrus. Lookups that find nothing are
// a normal outcome here (first join, unknown user) and are not logged.
func Logger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Error,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Options returns the gorm configuration shared by every dialect.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{
		Logger:                                   Logger(),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

// Connect opens the PostgreSQL pool. The caller owns the handle and must Close it.
func Connect(cfg config.DatabaseConfig, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Options())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"max_open_conns": cfg.MaxOpenConns,
		"max_idle_conns": cfg.MaxIdleConns,
	}).Info("Database connection established")
	return db, nil
}

// Close releases the pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tournament{},
		&models.TournamentPlayer{},
		&models.Transaction{},
		&models.Alert{},
		&models.AdminLog{},
	}
}

// AutoMigrate creates or updates tables for all models
func AutoMigrate(db *gorm.DB) error {
	start := time.Now()
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.WithField("took", time.Since(start)).Info("Database schema is up to date")
	return nil
}
