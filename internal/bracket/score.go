package bracket

import "sort"

// WinPoints is awarded for each match won. Losses score nothing.
const WinPoints = 3

type PlayerScore struct {
	ID           int64  `db:"id" json:"-"`
	TournamentID int64  `db:"tournament_id" json:"-"`
	PlayerIndex  int    `db:"player_index" json:"playerIndex"`
	PlayerName   string `db:"player_name" json:"playerName"`
	Wins         int    `db:"wins" json:"wins"`
	Losses       int    `db:"losses" json:"losses"`
	Points       int    `db:"points" json:"points"`
}

func (s PlayerScore) MatchesPlayed() int {
	return s.Wins + s.Losses
}

// NewScores returns a zeroed score row for every roster name.
func NewScores(tournamentID int64, names []string) []PlayerScore {
	scores := make([]PlayerScore, len(names))
	for i, name := range names {
		scores[i] = PlayerScore{TournamentID: tournamentID, PlayerIndex: i, PlayerName: name}
	}
	return scores
}

type Standing struct {
	Rank          int    `json:"rank"`
	PlayerIndex   int    `json:"playerIndex"`
	PlayerName    string `json:"playerName"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Points        int    `json:"points"`
	MatchesPlayed int    `json:"matchesPlayed"`
}

// Rank orders scores by points, then wins, then name, and numbers them from 1.
func Rank(scores []PlayerScore) []Standing {
	sorted := make([]PlayerScore, len(scores))
	copy(sorted, scores)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.PlayerIndex < b.PlayerIndex
	})

	standings := make([]Standing, len(sorted))
	for i, s := range sorted {
		standings[i] = Standing{
			Rank:          i + 1,
			PlayerIndex:   s.PlayerIndex,
			PlayerName:    s.PlayerName,
			Wins:          s.Wins,
			Losses:        s.Losses,
			Points:        s.Points,
			MatchesPlayed: s.MatchesPlayed(),
		}
	}
	return standings
}
