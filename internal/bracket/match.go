package bracket

import (
	"github.com/AdamBeresnev/eworldcup/internal/rps"
)

type MatchStatus string

const (
	MatchNotStarted MatchStatus = "NotStarted"
	MatchInProgress MatchStatus = "InProgress"
	MatchCompleted  MatchStatus = "Completed"
)

// HumanPlayerIndex is the tournament roster position of the human player.
const HumanPlayerIndex = 0

type Match struct {
	ID           int64 `db:"id" json:"id"`
	TournamentID int64 `db:"tournament_id" json:"tournamentId"`
	Round        int   `db:"round" json:"round"`

	Player1Index int    `db:"player1_index" json:"player1Index"`
	Player1Name  string `db:"player1_name" json:"player1Name"`
	Player2Index int    `db:"player2_index" json:"player2Index"`
	Player2Name  string `db:"player2_name" json:"player2Name"`

	IsPlayerMatch bool        `db:"is_player_match" json:"isPlayerMatch"`
	Status        MatchStatus `db:"status" json:"status"`

	Player1Wins int  `db:"player1_wins" json:"player1Wins"`
	Player2Wins int  `db:"player2_wins" json:"player2Wins"`
	WinnerIndex *int `db:"winner_index" json:"winnerIndex,omitempty"`
}

// NewRoundMatches turns the pairs of a round into unplayed matches.
func NewRoundMatches(tournamentID int64, round int, pairs []IndexPair, names []string) []Match {
	matches := make([]Match, len(pairs))
	for i, p := range pairs {
		matches[i] = Match{
			TournamentID:  tournamentID,
			Round:         round,
			Player1Index:  p.Home,
			Player1Name:   names[p.Home],
			Player2Index:  p.Away,
			Player2Name:   names[p.Away],
			IsPlayerMatch: p.Involves(HumanPlayerIndex),
			Status:        MatchNotStarted,
		}
	}
	return matches
}

func (m *Match) Involves(index int) bool {
	return m.Player1Index == index || m.Player2Index == index
}

func (m *Match) Opponent(index int) (int, string) {
	if m.Player1Index == index {
		return m.Player2Index, m.Player2Name
	}
	return m.Player1Index, m.Player1Name
}

// WinsFor returns the game rounds won by the player at index and by the
// other side.
func (m *Match) WinsFor(index int) (own, other int) {
	if m.Player1Index == index {
		return m.Player1Wins, m.Player2Wins
	}
	return m.Player2Wins, m.Player1Wins
}

// Record applies one game round result and reports whether it decided the
// match. Results recorded after completion are ignored.
func (m *Match) Record(result rps.Result) bool {
	if m.Status == MatchCompleted {
		return false
	}

	switch result {
	case rps.Player1Win:
		m.Player1Wins++
	case rps.Player2Win:
		m.Player2Wins++
	}
	m.Status = MatchInProgress

	switch {
	case m.Player1Wins >= rps.WinsNeeded:
		m.complete(m.Player1Index)
	case m.Player2Wins >= rps.WinsNeeded:
		m.complete(m.Player2Index)
	default:
		return false
	}
	return true
}

func (m *Match) complete(winner int) {
	m.Status = MatchCompleted
	m.WinnerIndex = &winner
}

func (m *Match) IsWinner(index int) bool {
	return m.Status == MatchCompleted && m.WinnerIndex != nil && *m.WinnerIndex == index
}

// Loser returns the losing index of a completed match.
func (m *Match) Loser() (int, bool) {
	if m.Status != MatchCompleted || m.WinnerIndex == nil {
		return 0, false
	}
	loser, _ := m.Opponent(*m.WinnerIndex)
	return loser, true
}
