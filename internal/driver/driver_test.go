package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countdownState is a minimal finite two-player game used to exercise the
// driver loop: a single shared counter that decrements on each move; the
// player who cannot move (counter already at 0) loses.
type countdownState struct {
	counter int
}

type countdownRules struct{ start int }

func (r countdownRules) InitialState() countdownState { return countdownState{counter: r.start} }

func (r countdownRules) Serialize(responsiblePlayer int, s countdownState) []byte {
	return []byte{byte(responsiblePlayer + 2), byte(s.counter)}
}

func (r countdownRules) TerminalFor(s countdownState, nextPlayer int) (int, bool) {
	if s.counter <= 0 {
		return 1 - nextPlayer, true
	}
	return 0, false
}

func (r countdownRules) LegalNextStates(currentPlayer int, s countdownState) []countdownState {
	if s.counter <= 0 {
		return nil
	}
	return []countdownState{{counter: s.counter - 1}}
}

type firstMoveTaker[G any] struct{}

func (firstMoveTaker[G]) Decide(ctx DecideContext[G]) (G, error) {
	moves := ctx.Rules.LegalNextStates(ctx.PlayerIndex, ctx.Current)
	if len(moves) == 0 {
		var zero G
		return zero, ErrNoLegalMoves
	}
	return moves[0], nil
}

func TestRunGameResolvesToLosingPlayerWhoCannotMove(t *testing.T) {
	rules := countdownRules{start: 3}
	takers := []TurnTaker[countdownState]{firstMoveTaker[countdownState]{}, firstMoveTaker[countdownState]{}}

	result, err := RunGame(rules, takers, -1, false)
	require.NoError(t, err)
	assert.Equal(t, 4, len(result.Steps)) // initial + 3 moves
	assert.Equal(t, -1, result.Steps[0].ResponsiblePlayer)
	assert.Equal(t, 0, result.Steps[1].ResponsiblePlayer)
	assert.Equal(t, 1, result.Steps[2].ResponsiblePlayer)
	assert.Equal(t, 0, result.Steps[3].ResponsiblePlayer)
	// counter hits 0 after the third move (made by player 0); player 1
	// (next) cannot move, so player 0 wins.
	assert.Equal(t, 0, result.Winner)
}

func TestRunGameMaxTurnsDraw(t *testing.T) {
	rules := countdownRules{start: 100}
	takers := []TurnTaker[countdownState]{firstMoveTaker[countdownState]{}, firstMoveTaker[countdownState]{}}

	result, err := RunGame(rules, takers, 5, true)
	require.NoError(t, err)
	assert.Equal(t, -1, result.Winner)
	assert.Equal(t, 6, len(result.Steps))
}

func TestRunGameMaxTurnsInconclusive(t *testing.T) {
	rules := countdownRules{start: 100}
	takers := []TurnTaker[countdownState]{firstMoveTaker[countdownState]{}, firstMoveTaker[countdownState]{}}

	_, err := RunGame(rules, takers, 5, false)
	assert.ErrorIs(t, err, ErrInconclusive)
}

// TestRunGameTerminationProperty is property #7: a genuinely finite game
// with max_turns = -1 still terminates.
func TestRunGameTerminationProperty(t *testing.T) {
	rules := countdownRules{start: 9}
	takers := []TurnTaker[countdownState]{firstMoveTaker[countdownState]{}, firstMoveTaker[countdownState]{}}

	result, err := RunGame(rules, takers, -1, false)
	require.NoError(t, err)
	assert.Equal(t, 10, len(result.Steps))
}

func TestToReportSerializesEveryStep(t *testing.T) {
	rules := countdownRules{start: 1}
	takers := []TurnTaker[countdownState]{firstMoveTaker[countdownState]{}, firstMoveTaker[countdownState]{}}

	result, err := RunGame(rules, takers, -1, false)
	require.NoError(t, err)

	report := ToReport[countdownState](rules, result)
	require.Len(t, report.Updates, len(result.Steps))
	assert.Equal(t, rules.Serialize(-1, result.Steps[0].State), report.Updates[0].Serialized)
	assert.Equal(t, result.Winner, report.Winner)
}
