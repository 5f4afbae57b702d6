package config

import (
	"fmt"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meal_reservations/internal/logger"
	"meal_reservations/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// Open connects to the configured database without migrating it.
func Open(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		// lib/pq is registered as "postgres"; its *pq.Error codes are used to
		// detect unique violations.
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DSN()})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.GormLogger(cfg.Debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// InitDB opens and migrates the database and stores the handle in DB.
func InitDB(cfg DatabaseConfig) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := Migrate(db); err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("driver", cfg.Driver).Info("Database connected and migrated")

	DB = db
	return db
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
