// Package rps plays Rock-Paper-Scissors game rounds and simulates matches.
package rps

import "time"

const (
	// WinsNeeded is the number of non-draw game rounds that decides a match.
	WinsNeeded = 2
	// MaxSimulatedRounds caps SimulateMatch when draws keep repeating.
	MaxSimulatedRounds = 100
)

type GameRound struct {
	ID            int64     `db:"id" json:"-"`
	MatchID       int64     `db:"match_id" json:"matchId"`
	RoundNumber   int       `db:"round_number" json:"roundNumber"`
	Player1Choice Choice    `db:"player1_choice" json:"player1Choice"`
	Player2Choice Choice    `db:"player2_choice" json:"player2Choice"`
	Result        Result    `db:"result" json:"result"`
	PlayedAt      time.Time `db:"played_at" json:"playedAt"`
}

type Engine struct {
	src Source
	now func() time.Time
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src, now: time.Now}
}

func (e *Engine) GenerateRandomChoice() Choice {
	return Choices[e.src.IntN(len(Choices))]
}

// CreateGameRound records a single round. A nil opponent choice is drawn
// from the engine's source.
func (e *Engine) CreateGameRound(roundNumber int, player1 Choice, player2 *Choice) GameRound {
	var opponent Choice
	if player2 != nil {
		opponent = *player2
	} else {
		opponent = e.GenerateRandomChoice()
	}
	return GameRound{
		RoundNumber:   roundNumber,
		Player1Choice: player1,
		Player2Choice: opponent,
		Result:        DetermineWinner(player1, opponent),
		PlayedAt:      e.now().UTC(),
	}
}

// SimulateMatch plays random rounds until one side has WinsNeeded wins or
// MaxSimulatedRounds rounds have been played.
func (e *Engine) SimulateMatch() []GameRound {
	var rounds []GameRound
	var wins1, wins2 int

	for wins1 < WinsNeeded && wins2 < WinsNeeded && len(rounds) < MaxSimulatedRounds {
		round := e.CreateGameRound(len(rounds)+1, e.GenerateRandomChoice(), nil)
		switch round.Result {
		case Player1Win:
			wins1++
		case Player2Win:
			wins2++
		}
		rounds = append(rounds, round)
	}
	return rounds
}
