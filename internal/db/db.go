package db

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agua24-backend/config"
	"agua24-backend/internal/model"
)

// Init opens the configured backing store and runs migrations. The driver is
// selected exactly once here; everything above this layer is store-agnostic.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate applies the schema. AutoMigrate covers the current entity shapes;
// the gormigrate steps cover changes that need data backfills.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Machine{},
		&model.Report{},
		&model.Visit{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// Reports created before the visibility flag existed must stay
			// visible to the condo, so the backfill writes an explicit true
			// for approved special reports with no flag.
			ID: "202407-backfill-show-in-condo",
			Migrate: func(tx *gorm.DB) error {
				return tx.Model(&model.Report{}).
					Where("type = ? AND show_in_condo IS NULL AND status = ?", model.TypeSpecial, model.StatusApproved).
					Update("show_in_condo", true).Error
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	})
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
