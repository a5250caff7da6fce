package rps

import (
	"fmt"
	"strings"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
)

type Choice string

const (
	Rock     Choice = "Rock"
	Paper    Choice = "Paper"
	Scissors Choice = "Scissors"
)

var Choices = [...]Choice{Rock, Paper, Scissors}

// ParseChoice accepts a choice name in any letter case.
func ParseChoice(s string) (Choice, error) {
	for _, c := range Choices {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", apperr.InvalidArgument("invalid choice %q: must be Rock, Paper or Scissors", s)
}

func (c Choice) Valid() bool {
	return c == Rock || c == Paper || c == Scissors
}

func (c Choice) Beats(other Choice) bool {
	switch c {
	case Rock:
		return other == Scissors
	case Paper:
		return other == Rock
	case Scissors:
		return other == Paper
	}
	return false
}

func (c Choice) verb() string {
	switch c {
	case Rock:
		return "crushes"
	case Paper:
		return "covers"
	default:
		return "cuts"
	}
}

type Result string

const (
	Player1Win Result = "Player1Win"
	Player2Win Result = "Player2Win"
	Draw       Result = "Draw"
)

func DetermineWinner(player1, player2 Choice) Result {
	switch {
	case player1 == player2:
		return Draw
	case player1.Beats(player2):
		return Player1Win
	default:
		return Player2Win
	}
}

// Outcome is a Result seen from one side of the match.
type Outcome string

const (
	Win  Outcome = "Win"
	Loss Outcome = "Loss"
	Tie  Outcome = "Draw"
)

func OutcomeFor(result Result, asPlayer1 bool) Outcome {
	switch {
	case result == Draw:
		return Tie
	case (result == Player1Win) == asPlayer1:
		return Win
	default:
		return Loss
	}
}

// Describe renders a one line summary of a game round for the player who
// chose mine.
func Describe(mine, theirs Choice, outcome Outcome) string {
	switch outcome {
	case Win:
		return fmt.Sprintf("You won! %s %s %s.", mine, mine.verb(), theirs)
	case Loss:
		return fmt.Sprintf("You lost! %s %s %s.", theirs, theirs.verb(), mine)
	default:
		return fmt.Sprintf("Draw! Both chose %s.", mine)
	}
}
