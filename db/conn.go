// Package db contains the database connections used by the repositories
package db

import (
	"errors"
	"fmt"
	"os"

	"barylstyle/contacts-api/config"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the SQL database selected by cfg and migrates the schema
func New(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if cfg.Driver == "sqlite" && cfg.DSN != ":memory:" && util.IsRunningInDocker() {
		if _, err := os.Stat(cfg.DSN); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", cfg.DSN)
		}
	}

	return Open(cfg.Driver, cfg.DSN)
}

// Open connects to a sqlite or postgres database and runs AutoMigrate.
// Tests use it directly with sqlite and ":memory:".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	// Every connection to ":memory:" gets its own empty database
	if driver == "sqlite" && dsn == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(model.User{}, model.Contact{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
