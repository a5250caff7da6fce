package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/db/dbtest"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTournament(t *testing.T, ctx context.Context, store *TournamentStore, names []string) *bracket.Tournament {
	t.Helper()

	tournament := &bracket.Tournament{
		PlayerName:   names[0],
		TotalPlayers: len(names),
		CurrentRound: 1,
		Status:       bracket.TournamentInProgress,
		StartedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.CreateTournament(ctx, nil, tournament))
	require.NotZero(t, tournament.ID)

	require.NoError(t, store.CreateScores(ctx, nil, bracket.NewScores(tournament.ID, names)))

	pairs, err := bracket.GenerateRoundIndexPairs(1, len(names))
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, nil, bracket.NewRoundMatches(tournament.ID, 1, pairs, names)))

	return tournament
}

func TestCreateTournament(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob", "Charlie", "Diana"})

	fetched, err := store.GetTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", fetched.PlayerName)
	assert.Equal(t, 4, fetched.TotalPlayers)
	assert.Equal(t, 1, fetched.CurrentRound)
	assert.Equal(t, bracket.TournamentInProgress, fetched.Status)
	assert.Nil(t, fetched.CompletedAt)

	_, err = store.GetTournament(ctx, nil, tournament.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.ListTournaments(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRoundMatches(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob", "Charlie", "Diana"})

	matches, err := store.GetRoundMatches(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Diana", matches[0].Player2Name)
	assert.True(t, matches[0].IsPlayerMatch)
	assert.False(t, matches[1].IsPlayerMatch)

	playerMatch, err := store.GetPlayerMatch(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, matches[0].ID, playerMatch.ID)

	_, err = store.GetPlayerMatch(ctx, nil, tournament.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMatchOnlyOnce(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob"})
	match, err := store.GetPlayerMatch(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)

	match.Record(rps.Player1Win)
	updated, err := store.UpdateMatch(ctx, nil, match)
	require.NoError(t, err)
	assert.True(t, updated)

	require.True(t, match.Record(rps.Player1Win))
	updated, err = store.UpdateMatch(ctx, nil, match)
	require.NoError(t, err)
	assert.True(t, updated)

	// A completed match is never written again.
	updated, err = store.UpdateMatch(ctx, nil, match)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := store.GetPlayerMatch(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, stored.Status)
	assert.Equal(t, 2, stored.Player1Wins)
	require.NotNil(t, stored.WinnerIndex)
	assert.Equal(t, 0, *stored.WinnerIndex)
}

func TestGameRounds(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob"})
	match, err := store.GetPlayerMatch(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)

	now := time.Now().UTC()
	rounds := []rps.GameRound{
		{MatchID: match.ID, RoundNumber: 1, Player1Choice: rps.Rock, Player2Choice: rps.Rock, Result: rps.Draw, PlayedAt: now},
		{MatchID: match.ID, RoundNumber: 2, Player1Choice: rps.Paper, Player2Choice: rps.Rock, Result: rps.Player1Win, PlayedAt: now},
	}
	require.NoError(t, store.CreateGameRounds(ctx, nil, rounds))

	count, err := store.CountGameRounds(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := store.GetGameRounds(ctx, nil, match.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, rps.Paper, stored[1].Player1Choice)
	assert.Equal(t, rps.Player1Win, stored[1].Result)
}

func TestRecordMatchResult(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob", "Charlie", "Diana"})
	matches, err := store.GetRoundMatches(ctx, nil, tournament.ID, 1)
	require.NoError(t, err)

	// Bob (1) beats Charlie (2)
	match := matches[1]
	match.Record(rps.Player1Win)
	match.Record(rps.Player1Win)
	require.NoError(t, store.RecordMatchResult(ctx, nil, &match))

	scores, err := store.GetScores(ctx, nil, tournament.ID)
	require.NoError(t, err)
	require.Len(t, scores, 4)

	assert.Equal(t, bracket.PlayerScore{ID: scores[1].ID, TournamentID: tournament.ID, PlayerIndex: 1, PlayerName: "Bob", Wins: 1, Points: 3}, scores[1])
	assert.Equal(t, 1, scores[2].Losses)
	assert.Equal(t, 0, scores[2].Points)
	assert.Zero(t, scores[0].MatchesPlayed())

	assert.Error(t, store.RecordMatchResult(ctx, nil, &matches[0]))
}

func TestAdvanceTournamentGuardsRound(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := createTestTournament(t, ctx, store, []string{"Alice", "Bob"})

	tournament.Status = bracket.TournamentCompleted
	tournament.CompletedAt = utils.Ptr(time.Now().UTC())
	updated, err := store.AdvanceTournament(ctx, nil, tournament, 1)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = store.AdvanceTournament(ctx, nil, tournament, 1)
	require.NoError(t, err)
	assert.False(t, updated)

	fetched, err := store.GetTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, fetched.Status)
	assert.NotNil(t, fetched.CompletedAt)
}

func TestStoreUsesTransaction(t *testing.T) {
	db := dbtest.New(t)
	store := NewTournamentStore(db)
	ctx := context.Background()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	tournament := &bracket.Tournament{PlayerName: "Alice", TotalPlayers: 2, CurrentRound: 1, Status: bracket.TournamentInProgress, StartedAt: time.Now().UTC()}
	require.NoError(t, store.CreateTournament(ctx, tx, tournament))
	require.NoError(t, tx.Rollback())

	_, err = store.GetTournament(ctx, nil, tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
