// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/AdamBeresnev/eworldcup/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// New returns a migrated in-memory sqlite database. The pool is limited to
// one connection so every query sees the same in-memory database, which
// means code under test must route queries inside a transaction through it.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect(db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(database))

	t.Cleanup(func() { database.Close() })
	return database
}
