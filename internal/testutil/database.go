// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/database"
)

// NewSQLiteDB opens an isolated, migrated in-memory sqlite database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewDB(database.Config{
		Driver:       database.DriverSQLite,
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db.DB))

	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}
