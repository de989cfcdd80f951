// Package tictactoe implements the driver.Rules[State] contract (C9) for
// 3x3 Tic-Tac-Toe, grounded on the reference implementation's board layout
// and base-3 serialization.
package tictactoe

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/alphaself/internal/driver"
)

const boardSize = 3

// empty marks an unoccupied cell; 0 and 1 mark player 0's and player 1's
// marks respectively.
const empty = -1

// State is a 3x3 board of cell values (empty, 0, or 1).
type State [boardSize][boardSize]int8

var winningLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Rules is the tictactoe driver.Rules[State] implementation.
type Rules struct{}

var _ driver.Rules[State] = Rules{}

func (Rules) InitialState() State {
	var s State
	for i := range s {
		for j := range s[i] {
			s[i][j] = empty
		}
	}
	return s
}

// Serialize encodes the board in row-major order as a base-3 number (empty,
// player0, player1 mapped to digits 0, 1, 2) stored in two big-endian
// bytes. The responsible player is not separately encoded: a Tic-Tac-Toe
// board's filled-cell parity already determines who moved last, so the
// identity invariant holds without it (spec.md §3, §9).
func (Rules) Serialize(_ int, s State) []byte {
	var value uint16
	var multiplier uint16 = 1
	for i := 0; i < boardSize; i++ {
		for j := 0; j < boardSize; j++ {
			value += uint16(s[i][j]+1) * multiplier
			multiplier *= 3
		}
	}
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, value)
	return buf
}

func (Rules) TerminalFor(s State, _ int) (int, bool) {
	for _, line := range winningLines {
		a, b, c := s[line[0][0]][line[0][1]], s[line[1][0]][line[1][1]], s[line[2][0]][line[2][1]]
		if a != empty && a == b && a == c {
			return int(a), true
		}
	}

	full := true
	for i := 0; i < boardSize; i++ {
		for j := 0; j < boardSize; j++ {
			if s[i][j] == empty {
				full = false
			}
		}
	}
	if full {
		return -1, true
	}

	return 0, false
}

func (Rules) LegalNextStates(currentPlayer int, s State) []State {
	var out []State
	for i := 0; i < boardSize; i++ {
		for j := 0; j < boardSize; j++ {
			if s[i][j] == empty {
				next := s
				next[i][j] = int8(currentPlayer)
				out = append(out, next)
			}
		}
	}
	return out
}

// Format renders the board for an interactive player, numbering empty
// cells 0-8 in row-major order to match Parse's expected input. The
// candidate list isn't needed: the board's own cell numbers are the move
// selector.
func Format(s State, _ []State) string {
	var b strings.Builder
	idx := 0
	for i := 0; i < boardSize; i++ {
		for j := 0; j < boardSize; j++ {
			switch s[i][j] {
			case empty:
				fmt.Fprintf(&b, " %d ", idx)
			case 0:
				b.WriteString(" X ")
			case 1:
				b.WriteString(" O ")
			}
			idx++
			if j < boardSize-1 {
				b.WriteByte('|')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse maps a typed cell index (0-8) to the candidate state that fills it,
// for the interactive turn-taker.
func Parse(input string, candidates []State) (int, error) {
	cell, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || cell < 0 || cell >= boardSize*boardSize {
		return 0, fmt.Errorf("enter a cell number 0-%d", boardSize*boardSize-1)
	}
	row, col := cell/boardSize, cell%boardSize
	for i, c := range candidates {
		if c[row][col] != empty {
			return i, nil
		}
	}
	return 0, fmt.Errorf("cell %d is already occupied", cell)
}
