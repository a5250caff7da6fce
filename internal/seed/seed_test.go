package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSeedEmbeddedPlayers(t *testing.T) {
	repo := store.NewMemoryParticipantStore()
	ctx := context.Background()

	added, err := Participants(ctx, repo, "", logger)
	require.NoError(t, err)
	assert.Len(t, added, 20)
	assert.Equal(t, "Alice Johnson", added[0].Name)

	// A populated roster is left alone.
	added, err = Participants(ctx, repo, "", logger)
	require.NoError(t, err)
	assert.Empty(t, added)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"name":"Ann"},{"id":2,"name":"Ben"}]`), 0o600))

	repo := store.NewMemoryParticipantStore()
	added, err := Participants(context.Background(), repo, path, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Ben"}, bracket.Names(added))
}

func TestSeedErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Participants(ctx, store.NewMemoryParticipantStore(), filepath.Join(t.TempDir(), "missing.json"), logger)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o600))
	_, err = Participants(ctx, store.NewMemoryParticipantStore(), path, logger)
	assert.Error(t, err)
}
