package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/AdamBeresnev/eworldcup/internal/db/dbtest"
	"github.com/AdamBeresnev/eworldcup/internal/live"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/service"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	database := dbtest.New(t)
	participants := store.NewParticipantStore(database)
	if len(names) > 0 {
		_, err := participants.AddMany(context.Background(), names)
		require.NoError(t, err)
	}

	hub := live.NewHub(logger, nil)
	tournaments := service.NewTournamentService(database, store.NewTournamentStore(database), participants, rps.NewSource(11), logger)
	tournaments.SetNotifier(hub)

	app := &application{
		participants: service.NewParticipantService(participants, logger),
		schedule:     service.NewScheduleService(participants),
		tournaments:  tournaments,
		hub:          hub,
		logger:       logger,
	}

	srv := httptest.NewServer(newRouter(app, []string{"http://localhost:3000"}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestScheduleRoutes(t *testing.T) {
	srv := setupServer(t, "Alice", "Bob", "Charlie", "Diana")

	testCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"health", "/healthz", http.StatusOK},
		{"max rounds", "/rounds/max", http.StatusOK},
		{"max rounds odd n", "/rounds/max?n=5", http.StatusBadRequest},
		{"round", "/rounds/1", http.StatusOK},
		{"round not a number", "/rounds/first", http.StatusBadRequest},
		{"round out of range", "/rounds/4", http.StatusBadRequest},
		{"round n above roster", "/rounds/1?n=6", http.StatusBadRequest},
		{"player schedule", "/player/2/schedule", http.StatusOK},
		{"player out of range", "/player/4/schedule", http.StatusBadRequest},
		{"player in round", "/player/0/round/2", http.StatusOK},
		{"remaining", "/match/remaining?n=8&roundsPlayed=3", http.StatusOK},
		{"remaining bad query", "/match/remaining?n=x", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}

	var round service.RoundResult
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/rounds/1", nil, &round))
	require.Len(t, round.Pairs, 2)
	assert.Equal(t, "Alice", round.Pairs[0].Home)
	assert.Equal(t, "Diana", round.Pairs[0].Away)

	var remaining service.RemainingPairs
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/match/remaining?n=8&roundsPlayed=3", nil, &remaining))
	assert.Equal(t, 28, remaining.TotalPairs)
	assert.Equal(t, 16, remaining.Remaining)
}

func TestParticipantRoutes(t *testing.T) {
	srv := setupServer(t)

	var overview service.ParticipantsOverview
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/participants", nil, &overview))
	assert.Zero(t, overview.Count)

	var created struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	}
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/participants", map[string]string{"name": "Alice"}, &created))
	assert.Equal(t, "Alice", created.Name)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/participants", map[string]string{"name": "alice"}, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/participants", map[string]string{"nickname": "Al"}, nil))

	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/participants/import", map[string]string{"names": "Bob\nCharlie\nDiana"}, nil))

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/participants", nil, &overview))
	assert.Equal(t, 4, overview.Count)
	require.NotNil(t, overview.MaxRounds)
	assert.Equal(t, 3, *overview.MaxRounds)

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, srv.URL+"/participants/"+created.UID, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, srv.URL+"/participants/"+created.UID, nil, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodDelete, srv.URL+"/participants/nope", nil, nil))
}

func TestTournamentRoutes(t *testing.T) {
	srv := setupServer(t, "Alice", "Bob", "Charlie", "Diana")

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/tournament/start", map[string]any{"playerName": "Alice", "totalPlayers": 3}, nil))

	var started service.StartResult
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/tournament/start", map[string]any{"playerName": "Alice", "totalPlayers": 4}, &started))
	assert.Equal(t, 3, started.MaxRounds)

	base := srv.URL + "/tournament/" + strconv.FormatInt(started.TournamentID, 10)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/play", map[string]string{"choice": "lizard"}, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/advance", nil, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, base+"/final", nil, nil))

	for round := 1; round <= started.MaxRounds; round++ {
		complete := false
		for i := 0; i < rps.MaxSimulatedRounds && !complete; i++ {
			var played service.PlayResult
			require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/play", map[string]string{"choice": "rock"}, &played))
			assert.NotEmpty(t, played.Message)
			complete = played.MatchComplete
		}
		require.True(t, complete)

		var advanced service.AdvanceResult
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/advance", nil, &advanced))
		assert.Equal(t, round, advanced.CompletedRound)
	}

	var status service.TournamentStatus
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base+"/status", nil, &status))
	assert.Equal(t, "Completed", string(status.Status))

	var final service.FinalResult
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base+"/final", nil, &final))
	assert.Len(t, final.FinalScoreboard, 4)
	assert.Equal(t, "Alice", final.PlayerName)

	var list []map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/tournament", nil, &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/tournament/999/status", nil, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, srv.URL+"/tournament/abc/status", nil, nil))
}

func TestCORSPreflight(t *testing.T) {
	srv := setupServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tournament/start", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost))
}
