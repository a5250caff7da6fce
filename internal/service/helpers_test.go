package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/AdamBeresnev/eworldcup/internal/db/dbtest"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedSource replays values in a loop. Replace swaps the script.
type scriptedSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func newScriptedSource(values ...int) *scriptedSource {
	return &scriptedSource{values: values}
}

func (s *scriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.pos%len(s.values)] % n
	s.pos++
	return v
}

func (s *scriptedSource) Replace(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.pos = 0
}

type recordedEvent struct {
	tournamentID int64
	event        string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(tournamentID int64, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{tournamentID: tournamentID, event: event})
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.event
	}
	return out
}

type tournamentFixture struct {
	db           *sqlx.DB
	store        *store.TournamentStore
	participants store.ParticipantRepository
	service      *TournamentService
	notifier     *recordingNotifier
}

func setupTournament(t *testing.T, src rps.Source, names ...string) *tournamentFixture {
	t.Helper()

	db := dbtest.New(t)
	participants := store.NewParticipantStore(db)
	if len(names) > 0 {
		_, err := participants.AddMany(context.Background(), names)
		require.NoError(t, err)
	}

	tournamentStore := store.NewTournamentStore(db)
	notifier := &recordingNotifier{}
	svc := NewTournamentService(db, tournamentStore, participants, src, discardLogger())
	svc.SetNotifier(notifier)

	return &tournamentFixture{
		db:           db,
		store:        tournamentStore,
		participants: participants,
		service:      svc,
		notifier:     notifier,
	}
}
