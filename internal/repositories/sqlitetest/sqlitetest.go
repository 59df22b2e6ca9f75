// Package sqlitetest opens a migrated in-memory database for tests.
package sqlitetest

import (
	"testing"

	"walletcore/internal/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh migrated database. SQLite has no row locks, so the
// pool is pinned to one connection and concurrent callers serialize on it.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := repositories.NewGormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
