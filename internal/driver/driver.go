// Package driver runs one game to terminality (C5): it drives an arbitrary
// game state G through turn-taking, collects the sequence of visited states
// into a report, and resolves the winner per the rules' terminality check.
package driver

import (
	"errors"
	"fmt"

	"github.com/lox/alphaself/internal/record"
)

// ErrInconclusive is returned when a game hits its max-turns bound without
// resolving and is_max_turns_a_draw is false: no report is produced, the
// game counts as inconclusive.
var ErrInconclusive = errors.New("driver: game ended inconclusively at max turns")

// ErrNoLegalMoves is returned by a TurnTaker when the rules offer no legal
// next state for the current player.
var ErrNoLegalMoves = errors.New("driver: no legal moves")

// Rules is the external collaborator each game supplies (C9): terminality
// and legal-move generation over an opaque state type G.
type Rules[G any] interface {
	// InitialState returns the starting position.
	InitialState() G
	// Serialize encodes state as the responsible player's view, per the
	// identity invariant (spec.md §3): same position, different responsible
	// player, different serialized form.
	Serialize(responsiblePlayer int, state G) []byte
	// TerminalFor reports whether state is terminal for nextPlayer, i.e.
	// nextPlayer has no legal reply. ok is false when non-terminal; when ok
	// is true, winner is the winning player index or record.DrawWinner.
	TerminalFor(state G, nextPlayer int) (winner int, ok bool)
	// LegalNextStates enumerates every state reachable by one move of
	// currentPlayer from state.
	LegalNextStates(currentPlayer int, state G) []G
}

// TurnTaker picks the next state from the set of legal candidates (C7).
type TurnTaker[G any] interface {
	Decide(ctx DecideContext[G]) (G, error)
}

// DecideContext carries everything a turn-taker needs to decide: whose turn
// it is, the current state, and the rules to ask for legal candidates.
type DecideContext[G any] struct {
	PlayerIndex int
	Current     G
	Rules       Rules[G]
}

// Step is one visited state of a game, the generic counterpart of
// record.Update; ToReport converts steps to record.Update via
// Rules.Serialize before the report goes to the fan-out processor.
type Step[G any] struct {
	ResponsiblePlayer int
	State             G
}

// Result is what RunGame produces on a resolved (non-inconclusive) game.
type Result[G any] struct {
	Steps           []Step[G]
	NumberOfPlayers int
	Winner          int
}

// RunGame drives rules to terminality using one turn-taker per player
// (indexed by player number), honoring maxTurns (-1 = unlimited) and
// isMaxTurnsADraw. It returns ErrInconclusive when the turn bound is hit
// without is_max_turns_a_draw; any other turn-taker error is returned
// directly, except ErrNoLegalMoves surfacing while the rules claim the
// state is non-terminal, which is an invariant violation and panics.
func RunGame[G any](rules Rules[G], turnTakers []TurnTaker[G], maxTurns int, isMaxTurnsADraw bool) (Result[G], error) {
	numberOfPlayers := len(turnTakers)
	current := rules.InitialState()

	steps := []Step[G]{{ResponsiblePlayer: -1, State: current}}

	turnsPlayed := 0
	playerIdx := -1
	for {
		next := (playerIdx + 1) % numberOfPlayers

		if winner, terminal := rules.TerminalFor(current, next); terminal {
			return Result[G]{Steps: steps, NumberOfPlayers: numberOfPlayers, Winner: winner}, nil
		}

		decided, err := turnTakers[next].Decide(DecideContext[G]{PlayerIndex: next, Current: current, Rules: rules})
		if err != nil {
			if errors.Is(err, ErrNoLegalMoves) {
				panic(fmt.Sprintf("driver: rules reported non-terminal for player %d but turn-taker found no legal moves", next))
			}
			return Result[G]{}, err
		}

		current = decided
		playerIdx = next
		turnsPlayed++
		steps = append(steps, Step[G]{ResponsiblePlayer: next, State: current})

		if maxTurns >= 0 && turnsPlayed == maxTurns {
			if isMaxTurnsADraw {
				return Result[G]{Steps: steps, NumberOfPlayers: numberOfPlayers, Winner: -1}, nil
			}
			return Result[G]{}, ErrInconclusive
		}
	}
}

// ToReport serializes every step of a resolved result through rules, ready
// for the fan-out processor.
func ToReport[G any](rules Rules[G], result Result[G]) record.Report {
	updates := make([]record.Update, len(result.Steps))
	for i, s := range result.Steps {
		updates[i] = record.Update{
			Serialized:        rules.Serialize(s.ResponsiblePlayer, s.State),
			ResponsiblePlayer: s.ResponsiblePlayer,
		}
	}
	return record.Report{
		Updates:         updates,
		NumberOfPlayers: result.NumberOfPlayers,
		Winner:          result.Winner,
	}
}
