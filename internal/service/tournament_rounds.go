package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/AdamBeresnev/eworldcup/internal/utils"
	"github.com/jmoiron/sqlx"
)

type PlayResult struct {
	TournamentID    int64       `json:"tournamentId"`
	Round           int         `json:"round"`
	GameRoundNumber int         `json:"gameRoundNumber"`
	PlayerChoice    rps.Choice  `json:"playerChoice"`
	OpponentChoice  rps.Choice  `json:"opponentChoice"`
	Result          rps.Outcome `json:"result"`
	Message         string      `json:"message"`
	PlayerWins      int         `json:"playerWins"`
	OpponentWins    int         `json:"opponentWins"`
	MatchComplete   bool        `json:"matchComplete"`
	MatchWinner     *string     `json:"matchWinner,omitempty"`
}

type AdvanceResult struct {
	TournamentID       int64              `json:"tournamentId"`
	CompletedRound     int                `json:"completedRound"`
	MatchesSimulated   int                `json:"matchesSimulated"`
	TournamentComplete bool               `json:"tournamentComplete"`
	NextRound          *int               `json:"nextRound,omitempty"`
	NextOpponent       *string            `json:"nextOpponent,omitempty"`
	Scoreboard         []bracket.Standing `json:"scoreboard"`
	Message            string             `json:"message"`
}

// PlayRound plays one game round of the human's current match against a
// random opponent choice.
func (s *TournamentService) PlayRound(ctx context.Context, id int64, choice rps.Choice) (*PlayResult, error) {
	if !choice.Valid() {
		return nil, apperr.InvalidArgument("invalid choice %q", choice)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.getActiveTournament(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	match, err := s.store.GetPlayerMatch(ctx, tx, id, tournament.CurrentRound)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindInvalidOperation, err, "no player match in round %d", tournament.CurrentRound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player match: %w", err)
	}
	if !match.Involves(bracket.HumanPlayerIndex) {
		return nil, apperr.Internal("player match %d in round %d does not seat the player", match.ID, tournament.CurrentRound)
	}
	if match.Status == bracket.MatchCompleted {
		return nil, apperr.InvalidOperation("match for round %d is already completed", tournament.CurrentRound)
	}

	played, err := s.store.CountGameRounds(ctx, tx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count game rounds: %w", err)
	}

	humanIsPlayer1 := match.Player1Index == bracket.HumanPlayerIndex
	opponentChoice := s.engine.GenerateRandomChoice()

	var round rps.GameRound
	if humanIsPlayer1 {
		round = s.engine.CreateGameRound(played+1, choice, &opponentChoice)
	} else {
		round = s.engine.CreateGameRound(played+1, opponentChoice, &choice)
	}
	round.MatchID = match.ID

	if err := s.store.CreateGameRounds(ctx, tx, []rps.GameRound{round}); err != nil {
		return nil, fmt.Errorf("failed to save game round: %w", err)
	}

	completed := match.Record(round.Result)
	if err := s.saveMatch(ctx, tx, match, completed); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	outcome := rps.OutcomeFor(round.Result, humanIsPlayer1)
	own, other := match.WinsFor(bracket.HumanPlayerIndex)
	result := &PlayResult{
		TournamentID:    id,
		Round:           tournament.CurrentRound,
		GameRoundNumber: round.RoundNumber,
		PlayerChoice:    choice,
		OpponentChoice:  opponentChoice,
		Result:          outcome,
		Message:         rps.Describe(choice, opponentChoice, outcome),
		PlayerWins:      own,
		OpponentWins:    other,
		MatchComplete:   completed,
	}
	if completed {
		winner := match.Player1Name
		if match.IsWinner(match.Player2Index) {
			winner = match.Player2Name
		}
		result.MatchWinner = &winner
	}

	s.logger.Info("round played", "tournament_id", id, "round", tournament.CurrentRound, "game_round", round.RoundNumber, "result", outcome)
	s.notifier.Publish(id, EventRoundPlayed, result)
	return result, nil
}

// AdvanceRound simulates the remaining matches of the current round, then
// either opens the next round or completes the tournament.
func (s *TournamentService) AdvanceRound(ctx context.Context, id int64) (*AdvanceResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.getActiveTournament(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	completedRound := tournament.CurrentRound

	matches, err := s.store.GetRoundMatches(ctx, tx, id, completedRound)
	if err != nil {
		return nil, fmt.Errorf("failed to get round matches: %w", err)
	}
	if len(matches) != tournament.TotalPlayers/2 {
		return nil, apperr.Internal("round %d of tournament %d has %d matches, want %d", completedRound, id, len(matches), tournament.TotalPlayers/2)
	}
	for _, m := range matches {
		if m.IsPlayerMatch && m.Status != bracket.MatchCompleted {
			return nil, apperr.InvalidOperation("finish your match in round %d before advancing", completedRound)
		}
	}

	simulated := 0
	for i := range matches {
		m := &matches[i]
		if m.Status == bracket.MatchCompleted {
			continue
		}

		rounds := s.engine.SimulateMatch()
		completed := false
		for j := range rounds {
			rounds[j].MatchID = m.ID
			completed = m.Record(rounds[j].Result) || completed
		}
		if !completed {
			return nil, apperr.Internal("match %d was not decided after %d game rounds", m.ID, len(rounds))
		}

		if err := s.store.CreateGameRounds(ctx, tx, rounds); err != nil {
			return nil, fmt.Errorf("failed to save game rounds: %w", err)
		}
		if err := s.saveMatch(ctx, tx, m, true); err != nil {
			return nil, err
		}
		simulated++
	}

	for _, m := range matches {
		if m.Status != bracket.MatchCompleted {
			return nil, apperr.InvalidOperation("match %d in round %d is not completed", m.ID, completedRound)
		}
	}

	result := &AdvanceResult{
		TournamentID:     id,
		CompletedRound:   completedRound,
		MatchesSimulated: simulated,
	}

	if tournament.IsLastRound() {
		tournament.Status = bracket.TournamentCompleted
		tournament.CompletedAt = utils.Ptr(s.now().UTC())
		result.TournamentComplete = true
		result.Message = fmt.Sprintf("Tournament complete! All %d rounds finished.", tournament.MaxRounds())
	} else {
		tournament.CurrentRound++
		opponent, err := s.openRound(ctx, tx, tournament)
		if err != nil {
			return nil, err
		}
		result.NextRound = utils.Ptr(tournament.CurrentRound)
		result.NextOpponent = &opponent
		result.Message = fmt.Sprintf("Round %d complete. %d AI matches simulated. Advancing to round %d.", completedRound, simulated, tournament.CurrentRound)
	}

	updated, err := s.store.AdvanceTournament(ctx, tx, tournament, completedRound)
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	if !updated {
		return nil, apperr.InvalidOperation("tournament %d was already advanced past round %d", id, completedRound)
	}

	scores, err := s.store.GetScores(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	result.Scoreboard = bracket.Rank(scores)

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("round advanced", "tournament_id", id, "completed_round", completedRound, "matches_simulated", simulated, "complete", result.TournamentComplete)
	if result.TournamentComplete {
		s.notifier.Publish(id, EventTournamentCompleted, result)
	} else {
		s.notifier.Publish(id, EventRoundAdvanced, result)
	}
	return result, nil
}

// openRound creates the matches of tournament.CurrentRound and returns the
// human's opponent. The roster order comes from the score rows, whose player
// index fixes each name's position for the whole tournament.
func (s *TournamentService) openRound(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) (string, error) {
	scores, err := s.store.GetScores(ctx, tx, tournament.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get scores: %w", err)
	}
	if len(scores) != tournament.TotalPlayers {
		return "", apperr.Internal("tournament %d has %d score rows, want %d", tournament.ID, len(scores), tournament.TotalPlayers)
	}

	names := make([]string, len(scores))
	for i, sc := range scores {
		if sc.PlayerIndex != i {
			return "", apperr.Internal("tournament %d score rows skip player index %d", tournament.ID, i)
		}
		names[i] = sc.PlayerName
	}

	pairs, err := bracket.GenerateRoundIndexPairs(tournament.CurrentRound, len(names))
	if err != nil {
		return "", err
	}
	opponent, err := bracket.FindOpponent(pairs, bracket.HumanPlayerIndex)
	if err != nil {
		return "", err
	}

	if err := s.store.CreateMatches(ctx, tx, bracket.NewRoundMatches(tournament.ID, tournament.CurrentRound, pairs, names)); err != nil {
		return "", fmt.Errorf("failed to create matches: %w", err)
	}
	return names[opponent], nil
}

// saveMatch writes match progress and, once the match is decided, credits the
// scoreboard. A match that was completed by someone else in the meantime is
// reported as an invalid operation so its result is never counted twice.
func (s *TournamentService) saveMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match, completed bool) error {
	updated, err := s.store.UpdateMatch(ctx, tx, match)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	if !updated {
		return apperr.InvalidOperation("match %d is already completed", match.ID)
	}
	if !completed {
		return nil
	}
	if err := s.store.RecordMatchResult(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to update scoreboard: %w", err)
	}
	s.logger.Debug("match completed", "tournament_id", match.TournamentID, "round", match.Round, "match_id", match.ID, "winner", *match.WinnerIndex)
	return nil
}

func (s *TournamentService) getActiveTournament(ctx context.Context, tx *sqlx.Tx, id int64) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, tx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindInvalidOperation, err, "tournament %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament.Status != bracket.TournamentInProgress {
		return nil, apperr.InvalidOperation("tournament %d is not in progress", id)
	}
	return tournament, nil
}
