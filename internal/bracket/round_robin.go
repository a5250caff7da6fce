package bracket

import "github.com/AdamBeresnev/eworldcup/internal/apperr"

type MatchPair struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// IndexPair holds two positions in the participant list.
type IndexPair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (p IndexPair) Involves(index int) bool {
	return p.Home == index || p.Away == index
}

// Opponent returns the other side of the pair.
func (p IndexPair) Opponent(index int) int {
	if p.Home == index {
		return p.Away
	}
	return p.Home
}

func ValidateCount(n int) error {
	if n < 2 {
		return apperr.InvalidArgument("participant count must be at least 2, got %d", n)
	}
	if n%2 != 0 {
		return apperr.InvalidArgument("participant count must be even, got %d", n)
	}
	return nil
}

func GetMaxRounds(n int) (int, error) {
	if err := ValidateCount(n); err != nil {
		return 0, err
	}
	return n - 1, nil
}

func ValidateRound(round, n int) error {
	maxRounds, err := GetMaxRounds(n)
	if err != nil {
		return err
	}
	if round < 1 || round > maxRounds {
		return apperr.InvalidArgument("round must be between 1 and %d, got %d", maxRounds, round)
	}
	return nil
}

// GenerateRoundIndexPairs builds round d of the circle method for n players.
// Position 0 stays fixed while positions 1..n-1 rotate left by d-1 steps,
// then position i faces position n-1-i.
func GenerateRoundIndexPairs(round, n int) ([]IndexPair, error) {
	if err := ValidateRound(round, n); err != nil {
		return nil, err
	}

	positions := make([]int, n)
	for i := 1; i < n; i++ {
		positions[i] = 1 + (i-1+round-1)%(n-1)
	}

	pairs := make([]IndexPair, 0, n/2)
	for i := 0; i < n/2; i++ {
		pairs = append(pairs, IndexPair{Home: positions[i], Away: positions[n-1-i]})
	}
	return pairs, nil
}

func GenerateRoundPairs(round int, names []string) ([]MatchPair, error) {
	indexPairs, err := GenerateRoundIndexPairs(round, len(names))
	if err != nil {
		return nil, err
	}

	pairs := make([]MatchPair, len(indexPairs))
	for i, p := range indexPairs {
		pairs[i] = MatchPair{Home: names[p.Home], Away: names[p.Away]}
	}
	return pairs, nil
}

// FindOpponent returns the index paired with player in pairs.
func FindOpponent(pairs []IndexPair, player int) (int, error) {
	for _, p := range pairs {
		if p.Involves(player) {
			return p.Opponent(player), nil
		}
	}
	return 0, apperr.Internal("player %d is missing from the round pairing", player)
}
