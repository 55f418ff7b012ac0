// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"github.com/Kariqs/amexan-checkout/initializers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated and seeded SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := initializers.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	require.NoError(t, initializers.Seed(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
