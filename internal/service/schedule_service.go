package service

import (
	"context"
	"fmt"
	"math"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/AdamBeresnev/eworldcup/internal/utils"
)

// ScheduleService answers round robin questions about the registered roster.
type ScheduleService struct {
	participants store.ParticipantRepository
}

func NewScheduleService(participants store.ParticipantRepository) *ScheduleService {
	return &ScheduleService{participants: participants}
}

type RoundResult struct {
	Round int                 `json:"round"`
	Pairs []bracket.MatchPair `json:"pairs"`
}

type ScheduleEntry struct {
	Round         int    `json:"round"`
	OpponentIndex int    `json:"opponentIndex"`
	Opponent      string `json:"opponent"`
}

type PlayerSchedule struct {
	N           int             `json:"n"`
	PlayerIndex int             `json:"playerIndex"`
	Player      string          `json:"player"`
	Schedule    []ScheduleEntry `json:"schedule"`
}

type PlayerRound struct {
	Round         int    `json:"round"`
	PlayerIndex   int    `json:"playerIndex"`
	Player        string `json:"player"`
	OpponentIndex int    `json:"opponentIndex"`
	Opponent      string `json:"opponent"`
}

type RemainingPairs struct {
	N            int `json:"n"`
	RoundsPlayed int `json:"roundsPlayed"`
	TotalPairs   int `json:"totalPairs"`
	Remaining    int `json:"remaining"`
}

// GetMaxRounds returns n-1 for n participants, using the roster size when n
// is nil.
func (s *ScheduleService) GetMaxRounds(ctx context.Context, n *int) (int, error) {
	count, err := s.countOrDefault(ctx, n)
	if err != nil {
		return 0, err
	}
	return bracket.GetMaxRounds(count)
}

// GetRound pairs the first n participants of the roster for the given round.
// A nil n uses the whole roster.
func (s *ScheduleService) GetRound(ctx context.Context, round int, n *int) (*RoundResult, error) {
	roster, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	if n != nil {
		if err := bracket.ValidateCount(*n); err != nil {
			return nil, err
		}
		if *n > len(roster) {
			return nil, apperr.InvalidArgument("n must not exceed the %d registered participants, got %d", len(roster), *n)
		}
		roster = roster[:*n]
	}

	pairs, err := bracket.GenerateRoundPairs(round, bracket.Names(roster))
	if err != nil {
		return nil, err
	}
	return &RoundResult{Round: round, Pairs: pairs}, nil
}

func (s *ScheduleService) GetPlayerSchedule(ctx context.Context, playerIndex int) (*PlayerSchedule, error) {
	roster, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	n := len(roster)
	maxRounds, err := bracket.GetMaxRounds(n)
	if err != nil {
		return nil, err
	}
	if err := validatePlayerIndex(playerIndex, n); err != nil {
		return nil, err
	}

	schedule := make([]ScheduleEntry, 0, maxRounds)
	for round := 1; round <= maxRounds; round++ {
		pairs, err := bracket.GenerateRoundIndexPairs(round, n)
		if err != nil {
			return nil, err
		}
		opponent, err := bracket.FindOpponent(pairs, playerIndex)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, ScheduleEntry{Round: round, OpponentIndex: opponent, Opponent: roster[opponent].Name})
	}

	return &PlayerSchedule{N: n, PlayerIndex: playerIndex, Player: roster[playerIndex].Name, Schedule: schedule}, nil
}

func (s *ScheduleService) GetPlayerInRound(ctx context.Context, playerIndex, round int) (*PlayerRound, error) {
	roster, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	n := len(roster)
	if err := bracket.ValidateCount(n); err != nil {
		return nil, err
	}
	if err := validatePlayerIndex(playerIndex, n); err != nil {
		return nil, err
	}

	pairs, err := bracket.GenerateRoundIndexPairs(round, n)
	if err != nil {
		return nil, err
	}
	opponent, err := bracket.FindOpponent(pairs, playerIndex)
	if err != nil {
		return nil, err
	}

	return &PlayerRound{
		Round:         round,
		PlayerIndex:   playerIndex,
		Player:        roster[playerIndex].Name,
		OpponentIndex: opponent,
		Opponent:      roster[opponent].Name,
	}, nil
}

// GetRemainingPairs counts the pairs not yet met after roundsPlayed rounds.
// Nil arguments default to the roster size and zero rounds.
func (s *ScheduleService) GetRemainingPairs(ctx context.Context, n *int, roundsPlayed *int) (*RemainingPairs, error) {
	count, err := s.countOrDefault(ctx, n)
	if err != nil {
		return nil, err
	}
	maxRounds, err := bracket.GetMaxRounds(count)
	if err != nil {
		return nil, err
	}

	played := utils.OrZero(roundsPlayed)
	if played < 0 || played > maxRounds {
		return nil, apperr.InvalidArgument("roundsPlayed must be between 0 and %d, got %d", maxRounds, played)
	}

	if count-1 > math.MaxInt/count {
		return nil, apperr.InvalidArgument("n is too large to count pairs: %d", count)
	}
	total := count * (count - 1) / 2
	return &RemainingPairs{
		N:            count,
		RoundsPlayed: played,
		TotalPairs:   total,
		Remaining:    max(0, total-played*(count/2)),
	}, nil
}

func (s *ScheduleService) countOrDefault(ctx context.Context, n *int) (int, error) {
	if n != nil {
		return *n, nil
	}
	count, err := s.participants.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func validatePlayerIndex(index, n int) error {
	if index < 0 || index >= n {
		return apperr.InvalidArgument("player index must be between 0 and %d, got %d", n-1, index)
	}
	return nil
}
