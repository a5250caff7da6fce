package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/jmoiron/sqlx"
)

const (
	EventTournamentStarted   = "tournament.started"
	EventRoundPlayed         = "round.played"
	EventRoundAdvanced       = "round.advanced"
	EventTournamentCompleted = "tournament.completed"
)

// Notifier receives tournament events after their transaction commits.
type Notifier interface {
	Publish(tournamentID int64, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(int64, string, any) {}

// TournamentService runs single player tournaments: the human at index 0
// plays every round by hand while the remaining matches are simulated.
type TournamentService struct {
	db           *sqlx.DB
	store        *store.TournamentStore
	participants store.ParticipantRepository
	src          rps.Source
	engine       *rps.Engine
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, participants store.ParticipantRepository, src rps.Source, logger *slog.Logger) *TournamentService {
	return &TournamentService{
		db:           db,
		store:        store,
		participants: participants,
		src:          src,
		engine:       rps.NewEngine(src),
		notifier:     nopNotifier{},
		logger:       logger,
		now:          time.Now,
	}
}

func (s *TournamentService) SetNotifier(n Notifier) {
	s.notifier = n
}

type StartResult struct {
	TournamentID       int64  `json:"tournamentId"`
	PlayerName         string `json:"playerName"`
	TotalPlayers       int    `json:"totalPlayers"`
	MaxRounds          int    `json:"maxRounds"`
	CurrentRound       int    `json:"currentRound"`
	FirstOpponent      string `json:"firstOpponent"`
	FirstOpponentIndex int    `json:"firstOpponentIndex"`
}

type CurrentMatch struct {
	MatchID         int64               `json:"matchId"`
	OpponentIndex   int                 `json:"opponentIndex"`
	OpponentName    string              `json:"opponentName"`
	GameRoundNumber int                 `json:"gameRoundNumber"`
	PlayerWins      int                 `json:"playerWins"`
	OpponentWins    int                 `json:"opponentWins"`
	Status          bracket.MatchStatus `json:"status"`
}

type TournamentStatus struct {
	TournamentID int64                    `json:"tournamentId"`
	PlayerName   string                   `json:"playerName"`
	TotalPlayers int                      `json:"totalPlayers"`
	CurrentRound int                      `json:"currentRound"`
	MaxRounds    int                      `json:"maxRounds"`
	Status       bracket.TournamentStatus `json:"status"`
	CurrentMatch *CurrentMatch            `json:"currentMatch,omitempty"`
	Scoreboard   []bracket.Standing       `json:"scoreboard"`
}

type FinalResult struct {
	TournamentID    int64              `json:"tournamentId"`
	PlayerName      string             `json:"playerName"`
	TotalRounds     int                `json:"totalRounds"`
	Winner          string             `json:"winner"`
	WinnerIndex     int                `json:"winnerIndex"`
	WinnerPoints    int                `json:"winnerPoints"`
	PlayerWon       bool               `json:"playerWon"`
	PlayerRank      int                `json:"playerRank"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
	FinalScoreboard []bracket.Standing `json:"finalScoreboard"`
}

// StartTournament seats the named participant at index 0 and fills the other
// totalPlayers-1 seats with randomly chosen participants.
func (s *TournamentService) StartTournament(ctx context.Context, playerName string, totalPlayers int) (*StartResult, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, apperr.InvalidArgument("player name must not be empty")
	}
	maxRounds, err := bracket.GetMaxRounds(totalPlayers)
	if err != nil {
		return nil, err
	}

	all, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(all) < totalPlayers {
		return nil, apperr.InvalidOperation("not enough participants: %d registered, %d required", len(all), totalPlayers)
	}

	human, err := s.participants.FindByName(ctx, playerName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindInvalidOperation, err, "participant %q is not registered", playerName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	others := make([]bracket.Participant, 0, len(all))
	for _, p := range all {
		if p.UID != human.UID {
			others = append(others, p)
		}
	}
	rps.Shuffle(s.src, len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	roster := append([]bracket.Participant{*human}, others[:totalPlayers-1]...)
	names := bracket.Names(roster)

	pairs, err := bracket.GenerateRoundIndexPairs(1, totalPlayers)
	if err != nil {
		return nil, err
	}
	opponent, err := bracket.FindOpponent(pairs, bracket.HumanPlayerIndex)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament := &bracket.Tournament{
		PlayerName:   names[bracket.HumanPlayerIndex],
		TotalPlayers: totalPlayers,
		CurrentRound: 1,
		Status:       bracket.TournamentInProgress,
		StartedAt:    s.now().UTC(),
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateScores(ctx, tx, bracket.NewScores(tournament.ID, names)); err != nil {
		return nil, fmt.Errorf("failed to create scores: %w", err)
	}
	if err := s.store.CreateMatches(ctx, tx, bracket.NewRoundMatches(tournament.ID, 1, pairs, names)); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result := &StartResult{
		TournamentID:       tournament.ID,
		PlayerName:         tournament.PlayerName,
		TotalPlayers:       totalPlayers,
		MaxRounds:          maxRounds,
		CurrentRound:       1,
		FirstOpponent:      names[opponent],
		FirstOpponentIndex: opponent,
	}

	s.logger.Info("tournament started", "tournament_id", tournament.ID, "player", tournament.PlayerName, "total_players", totalPlayers)
	s.notifier.Publish(tournament.ID, EventTournamentStarted, result)
	return result, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx, nil)
}

func (s *TournamentService) GetStatus(ctx context.Context, id int64) (*TournamentStatus, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.GetScores(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}

	status := &TournamentStatus{
		TournamentID: tournament.ID,
		PlayerName:   tournament.PlayerName,
		TotalPlayers: tournament.TotalPlayers,
		CurrentRound: tournament.CurrentRound,
		MaxRounds:    tournament.MaxRounds(),
		Status:       tournament.Status,
		Scoreboard:   bracket.Rank(scores),
	}

	if tournament.Status == bracket.TournamentInProgress {
		current, err := s.currentMatch(ctx, tournament)
		if err != nil {
			return nil, err
		}
		status.CurrentMatch = current
	}
	return status, nil
}

func (s *TournamentService) GetFinalResult(ctx context.Context, id int64) (*FinalResult, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentCompleted {
		return nil, apperr.InvalidOperation("tournament %d is not completed yet", id)
	}

	scores, err := s.store.GetScores(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	standings := bracket.Rank(scores)
	if len(standings) == 0 {
		return nil, apperr.Internal("tournament %d has no scoreboard", id)
	}

	winner := standings[0]
	result := &FinalResult{
		TournamentID:    tournament.ID,
		PlayerName:      tournament.PlayerName,
		TotalRounds:     tournament.MaxRounds(),
		Winner:          winner.PlayerName,
		WinnerIndex:     winner.PlayerIndex,
		WinnerPoints:    winner.Points,
		PlayerWon:       winner.PlayerIndex == bracket.HumanPlayerIndex,
		CompletedAt:     tournament.CompletedAt,
		FinalScoreboard: standings,
	}
	for _, st := range standings {
		if st.PlayerIndex == bracket.HumanPlayerIndex {
			result.PlayerRank = st.Rank
		}
	}
	return result, nil
}

func (s *TournamentService) getTournament(ctx context.Context, id int64) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, nil, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "tournament %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tournament, nil
}

func (s *TournamentService) currentMatch(ctx context.Context, tournament *bracket.Tournament) (*CurrentMatch, error) {
	match, err := s.store.GetPlayerMatch(ctx, nil, tournament.ID, tournament.CurrentRound)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("tournament %d has no player match in round %d", tournament.ID, tournament.CurrentRound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player match: %w", err)
	}

	played, err := s.store.CountGameRounds(ctx, nil, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count game rounds: %w", err)
	}

	opponentIndex, opponentName := match.Opponent(bracket.HumanPlayerIndex)
	own, other := match.WinsFor(bracket.HumanPlayerIndex)
	return &CurrentMatch{
		MatchID:         match.ID,
		OpponentIndex:   opponentIndex,
		OpponentName:    opponentName,
		GameRoundNumber: played + 1,
		PlayerWins:      own,
		OpponentWins:    other,
		Status:          match.Status,
	}, nil
}
