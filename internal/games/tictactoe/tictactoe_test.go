package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/alphaself/internal/driver"
)

func TestInitialStateIsEmptyAndNonTerminal(t *testing.T) {
	r := Rules{}
	s := r.InitialState()
	_, terminal := r.TerminalFor(s, 0)
	assert.False(t, terminal)
	assert.Len(t, r.LegalNextStates(0, s), 9)
}

func TestTerminalForWinningRow(t *testing.T) {
	r := Rules{}
	s := State{
		{0, 0, 0},
		{empty, empty, empty},
		{empty, empty, empty},
	}
	winner, terminal := r.TerminalFor(s, 1)
	require.True(t, terminal)
	assert.Equal(t, 0, winner)
}

func TestTerminalForDrawOnFullBoard(t *testing.T) {
	r := Rules{}
	s := State{
		{0, 1, 0},
		{0, 1, 1},
		{1, 0, 0},
	}
	winner, terminal := r.TerminalFor(s, 0)
	require.True(t, terminal)
	assert.Equal(t, -1, winner)
}

func TestSerializeIsDeterministicAndDistinguishesPositions(t *testing.T) {
	r := Rules{}
	empty9 := r.InitialState()
	oneMove := empty9
	oneMove[0][0] = 0

	assert.Equal(t, r.Serialize(-1, empty9), r.Serialize(-1, empty9))
	assert.NotEqual(t, r.Serialize(-1, empty9), r.Serialize(0, oneMove))
}

func TestLegalNextStatesFillsOnlyEmptyCells(t *testing.T) {
	r := Rules{}
	s := r.InitialState()
	s[1][1] = 0

	next := r.LegalNextStates(1, s)
	assert.Len(t, next, 8)
	for _, cand := range next {
		assert.Equal(t, int8(0), cand[1][1])
		assert.Equal(t, int8(1), countValue(cand, 1))
	}
}

func countValue(s State, v int8) int8 {
	var n int8
	for i := range s {
		for j := range s[i] {
			if s[i][j] == v {
				n++
			}
		}
	}
	return n
}

var _ driver.Rules[State] = Rules{}
