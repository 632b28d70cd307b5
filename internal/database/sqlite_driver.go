// Package database provides SQLite driver implementation with optimizations.
package database

import (
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/veridex/veridex/pkg/logger"
)

// SQLiteDriver implements the Driver interface for SQLite database
type SQLiteDriver struct{}

// Name returns the driver name
func (d *SQLiteDriver) Name() string {
	return "sqlite"
}

// Open opens a SQLite database connection
func (d *SQLiteDriver) Open(dsn string) (gorm.Dialector, error) {
	return sqlite.Open(dsn), nil
}

// Configure applies SQLite configurations.
// A single connection avoids concurrent write conflicts; WAL mode keeps
// cache reads fast while the sweep or a fetch is writing.
func (d *SQLiteDriver) Configure(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// SQLite connection pool configuration (single connection to avoid
	// concurrent write conflicts)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	// Enable WAL mode (improves concurrent read performance)
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		logger.Warn("Failed to enable WAL mode", zap.Error(err))
	}

	// Set synchronous=NORMAL (balances performance and safety)
	if err := db.Exec("PRAGMA synchronous = NORMAL").Error; err != nil {
		logger.Warn("Failed to set synchronous mode", zap.Error(err))
	}

	// Wait for locks instead of failing immediately
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		logger.Warn("Failed to set busy timeout", zap.Error(err))
	}

	logger.Info("SQLite config applied",
		zap.String("journal_mode", "WAL"),
		zap.String("synchronous", "NORMAL"),
		zap.Int("busy_timeout_ms", 5000),
	)

	return nil
}
