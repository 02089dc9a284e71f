// Package dbtest opens migrated in-memory databases for package tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ezstay/payrecon/internal/platform/db"
	gormzap "github.com/ezstay/payrecon/pkg/gormlog"
)

// New returns a fresh sqlite database with all tables migrated. It is
// closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite://:memory:", &gorm.Config{
		Logger:         gormzap.New(zap.NewNop().Sugar(), false),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
