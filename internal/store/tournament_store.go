package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/jmoiron/sqlx"
)

// TournamentStore persists tournaments, their matches, game rounds and score
// rows. Every method takes the executor to run on so services can group
// calls in one transaction. A nil executor runs on the store's db.
type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return s.db
}

func (s *TournamentStore) CreateTournament(ctx context.Context, exec sqlx.ExtContext, tournament *bracket.Tournament) error {
	exec = s.exec(exec)
	query, args, err := exec.BindNamed(`INSERT INTO tournaments (player_name, total_players, current_round, status, started_at, completed_at)
		VALUES (:player_name, :total_players, :current_round, :status, :started_at, :completed_at) RETURNING id`, tournament)
	if err != nil {
		return err
	}
	return exec.QueryRowxContext(ctx, query, args...).Scan(&tournament.ID)
}

func (s *TournamentStore) GetTournament(ctx context.Context, exec sqlx.ExtContext, id int64) (*bracket.Tournament, error) {
	exec = s.exec(exec)
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, exec, &tournament, exec.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, exec sqlx.ExtContext) ([]bracket.Tournament, error) {
	exec = s.exec(exec)
	tournaments := []bracket.Tournament{}
	err := sqlx.SelectContext(ctx, exec, &tournaments, "SELECT * FROM tournaments ORDER BY id DESC")
	return tournaments, err
}

// AdvanceTournament writes the round and status of tournament, but only if
// the stored row is still in progress at fromRound. It reports whether the
// row was updated.
func (s *TournamentStore) AdvanceTournament(ctx context.Context, exec sqlx.ExtContext, tournament *bracket.Tournament, fromRound int) (bool, error) {
	exec = s.exec(exec)
	res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE tournaments SET current_round = ?, status = ?, completed_at = ?
		WHERE id = ? AND current_round = ? AND status = ?`),
		tournament.CurrentRound, tournament.Status, tournament.CompletedAt,
		tournament.ID, fromRound, bracket.TournamentInProgress)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, exec sqlx.ExtContext, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, s.exec(exec), `INSERT INTO matches (tournament_id, round, player1_index, player1_name, player2_index, player2_name, is_player_match, status, player1_wins, player2_wins, winner_index)
		VALUES (:tournament_id, :round, :player1_index, :player1_name, :player2_index, :player2_name, :is_player_match, :status, :player1_wins, :player2_wins, :winner_index)`, matches)
	return err
}

func (s *TournamentStore) GetRoundMatches(ctx context.Context, exec sqlx.ExtContext, tournamentID int64, round int) ([]bracket.Match, error) {
	exec = s.exec(exec)
	matches := []bracket.Match{}
	err := sqlx.SelectContext(ctx, exec, &matches, exec.Rebind("SELECT * FROM matches WHERE tournament_id = ? AND round = ? ORDER BY id ASC"), tournamentID, round)
	return matches, err
}

func (s *TournamentStore) GetPlayerMatch(ctx context.Context, exec sqlx.ExtContext, tournamentID int64, round int) (*bracket.Match, error) {
	exec = s.exec(exec)
	var match bracket.Match
	err := sqlx.GetContext(ctx, exec, &match, exec.Rebind("SELECT * FROM matches WHERE tournament_id = ? AND round = ? AND is_player_match = ?"), tournamentID, round, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player match in round %d of tournament %d: %w", round, tournamentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateMatch saves the progress of a match that has not been completed yet.
// It reports false when the stored match was already completed, which keeps
// a result from being scored twice.
func (s *TournamentStore) UpdateMatch(ctx context.Context, exec sqlx.ExtContext, match *bracket.Match) (bool, error) {
	exec = s.exec(exec)
	res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE matches SET status = ?, player1_wins = ?, player2_wins = ?, winner_index = ?
		WHERE id = ? AND status <> ?`),
		match.Status, match.Player1Wins, match.Player2Wins, match.WinnerIndex,
		match.ID, bracket.MatchCompleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *TournamentStore) CreateGameRounds(ctx context.Context, exec sqlx.ExtContext, rounds []rps.GameRound) error {
	if len(rounds) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, s.exec(exec), `INSERT INTO game_rounds (match_id, round_number, player1_choice, player2_choice, result, played_at)
		VALUES (:match_id, :round_number, :player1_choice, :player2_choice, :result, :played_at)`, rounds)
	return err
}

func (s *TournamentStore) CountGameRounds(ctx context.Context, exec sqlx.ExtContext, matchID int64) (int, error) {
	exec = s.exec(exec)
	var count int
	err := sqlx.GetContext(ctx, exec, &count, exec.Rebind("SELECT COUNT(*) FROM game_rounds WHERE match_id = ?"), matchID)
	return count, err
}

func (s *TournamentStore) GetGameRounds(ctx context.Context, exec sqlx.ExtContext, matchID int64) ([]rps.GameRound, error) {
	exec = s.exec(exec)
	rounds := []rps.GameRound{}
	err := sqlx.SelectContext(ctx, exec, &rounds, exec.Rebind("SELECT * FROM game_rounds WHERE match_id = ? ORDER BY round_number ASC"), matchID)
	return rounds, err
}

func (s *TournamentStore) CreateScores(ctx context.Context, exec sqlx.ExtContext, scores []bracket.PlayerScore) error {
	if len(scores) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, s.exec(exec), `INSERT INTO player_scores (tournament_id, player_index, player_name, wins, losses, points)
		VALUES (:tournament_id, :player_index, :player_name, :wins, :losses, :points)`, scores)
	return err
}

// GetScores returns the score rows of a tournament ordered by player index.
func (s *TournamentStore) GetScores(ctx context.Context, exec sqlx.ExtContext, tournamentID int64) ([]bracket.PlayerScore, error) {
	exec = s.exec(exec)
	scores := []bracket.PlayerScore{}
	err := sqlx.SelectContext(ctx, exec, &scores, exec.Rebind("SELECT * FROM player_scores WHERE tournament_id = ? ORDER BY player_index ASC"), tournamentID)
	return scores, err
}

// RecordMatchResult credits the winner and the loser of a completed match.
func (s *TournamentStore) RecordMatchResult(ctx context.Context, exec sqlx.ExtContext, match *bracket.Match) error {
	exec = s.exec(exec)

	loser, ok := match.Loser()
	if !ok {
		return fmt.Errorf("match %d has no result to record", match.ID)
	}

	updates := []struct {
		index, wins, losses, points int
	}{
		{index: *match.WinnerIndex, wins: 1, points: bracket.WinPoints},
		{index: loser, losses: 1},
	}

	for _, u := range updates {
		res, err := exec.ExecContext(ctx, exec.Rebind(`UPDATE player_scores SET wins = wins + ?, losses = losses + ?, points = points + ?
			WHERE tournament_id = ? AND player_index = ?`), u.wins, u.losses, u.points, match.TournamentID, u.index)
		if err != nil {
			return fmt.Errorf("failed to update score of player %d: %w", u.index, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("score row of player %d in tournament %d: %w", u.index, match.TournamentID, ErrNotFound)
		}
	}
	return nil
}
