// Package seed fills an empty participant roster.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/store"
)

//go:embed players.json
var defaultPlayers []byte

type player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Participants adds the players listed in path, or the embedded default list
// when path is empty, provided the roster has no participants yet. It returns
// the participants that were added.
func Participants(ctx context.Context, repo store.ParticipantRepository, path string, logger *slog.Logger) ([]bracket.Participant, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	if count > 0 {
		logger.Debug("roster already populated, skipping seed", "count", count)
		return nil, nil
	}

	data := defaultPlayers
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	var players []player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	added, err := repo.AddMany(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to seed participants: %w", err)
	}

	logger.Info("participants seeded", "count", len(added), "source", sourceName(path))
	return added, nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
