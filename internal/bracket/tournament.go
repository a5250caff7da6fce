package bracket

import (
	"time"
)

type TournamentStatus string

const (
	TournamentNotStarted TournamentStatus = "NotStarted"
	TournamentInProgress TournamentStatus = "InProgress"
	TournamentCompleted  TournamentStatus = "Completed"
)

type Tournament struct {
	ID           int64            `db:"id" json:"id"`
	PlayerName   string           `db:"player_name" json:"playerName"`
	TotalPlayers int              `db:"total_players" json:"totalPlayers"`
	CurrentRound int              `db:"current_round" json:"currentRound"`
	Status       TournamentStatus `db:"status" json:"status"`
	StartedAt    time.Time        `db:"started_at" json:"startedAt"`
	CompletedAt  *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
}

func (t *Tournament) MaxRounds() int {
	return t.TotalPlayers - 1
}

func (t *Tournament) IsLastRound() bool {
	return t.CurrentRound >= t.MaxRounds()
}
