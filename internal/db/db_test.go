package db_test

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/eworldcup/internal/db"
	"github.com/AdamBeresnev/eworldcup/internal/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesTables(t *testing.T) {
	database := dbtest.New(t)

	var tables []string
	err := database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)

	for _, table := range []string{"game_rounds", "matches", "participants", "player_scores", "tournaments"} {
		assert.Contains(t, tables, table)
	}

	// Running again is a no-op.
	require.NoError(t, db.RunMigrations(database))
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := db.InitDB(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}
