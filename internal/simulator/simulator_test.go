package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/alphaself/internal/driver"
	"github.com/lox/alphaself/internal/fanout"
	"github.com/lox/alphaself/internal/record"
)

// countdownRules is a tiny finite two-player game: a shared counter ticks
// down to zero; whoever cannot move (counter already zero) loses.
type countdownRules struct{ start int }

func (r countdownRules) InitialState() int { return r.start }
func (r countdownRules) Serialize(responsiblePlayer int, s int) []byte {
	return []byte{byte(responsiblePlayer + 2), byte(s)}
}
func (r countdownRules) TerminalFor(s int, nextPlayer int) (int, bool) {
	if s <= 0 {
		return 1 - nextPlayer, true
	}
	return 0, false
}
func (r countdownRules) LegalNextStates(currentPlayer int, s int) []int {
	if s <= 0 {
		return nil
	}
	return []int{s - 1}
}

type firstMoveTaker struct{}

func (firstMoveTaker) Decide(ctx driver.DecideContext[int]) (int, error) {
	moves := ctx.Rules.LegalNextStates(ctx.PlayerIndex, ctx.Current)
	if len(moves) == 0 {
		return 0, driver.ErrNoLegalMoves
	}
	return moves[0], nil
}

var errTurnTakerUnavailable = errors.New("turn-taker temporarily unavailable")

// flakyTaker always fails with a plain error, distinct from both
// driver.ErrInconclusive and driver.ErrNoLegalMoves.
type flakyTaker struct{}

func (flakyTaker) Decide(ctx driver.DecideContext[int]) (int, error) {
	return 0, errTurnTakerUnavailable
}

type recordingSink struct {
	reports []record.Report
}

func (s *recordingSink) Process(r record.Report) error {
	s.reports = append(s.reports, r)
	return nil
}

type recordingFlusher struct {
	flushed int
}

func (f *recordingFlusher) FlushAll() <-chan error {
	f.flushed++
	done := make(chan error, 1)
	close(done)
	return done
}

func TestRunPlaysEveryGameAndReportsEach(t *testing.T) {
	sink := &recordingSink{}
	flusher := &recordingFlusher{}

	sim := New(Config{
		NumberOfGames: 5,
		MaxTurns:      -1,
		Sink:          fanout.New(sink),
		Flushers:      []Flusher{flusher},
	}, countdownRules{start: 3}, func(gameIndex int) []driver.TurnTaker[int] {
		return []driver.TurnTaker[int]{firstMoveTaker{}, firstMoveTaker{}}
	})

	results, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, 5, results.GamesPlayed)
	assert.Len(t, sink.reports, 5)
	assert.Equal(t, 1, flusher.flushed)
	assert.Equal(t, 5, results.WinsByPlayer[0]+results.WinsByPlayer[1])
}

func TestRunCountsInconclusiveGamesWithoutReporting(t *testing.T) {
	sink := &recordingSink{}
	flusher := &recordingFlusher{}

	sim := New(Config{
		NumberOfGames:  3,
		MaxTurns:       2,
		IsMaxTurnsDraw: false,
		Sink:           fanout.New(sink),
		Flushers:       []Flusher{flusher},
	}, countdownRules{start: 100}, func(gameIndex int) []driver.TurnTaker[int] {
		return []driver.TurnTaker[int]{firstMoveTaker{}, firstMoveTaker{}}
	})

	results, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, results.Inconclusive)
	assert.Empty(t, sink.reports)
}

func TestRunCountsNonInconclusiveDriverErrorsAsInconclusiveInsteadOfAborting(t *testing.T) {
	sink := &recordingSink{}
	flusher := &recordingFlusher{}

	sim := New(Config{
		NumberOfGames: 3,
		MaxTurns:      -1,
		Sink:          fanout.New(sink),
		Flushers:      []Flusher{flusher},
	}, countdownRules{start: 3}, func(gameIndex int) []driver.TurnTaker[int] {
		return []driver.TurnTaker[int]{flakyTaker{}, flakyTaker{}}
	})

	results, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, results.GamesPlayed)
	assert.Equal(t, 3, results.Inconclusive)
	assert.Empty(t, sink.reports)
	assert.Equal(t, 1, flusher.flushed)
}

func TestRunCountsDrawsOnMaxTurnsDraw(t *testing.T) {
	sink := &recordingSink{}
	flusher := &recordingFlusher{}

	sim := New(Config{
		NumberOfGames:  2,
		MaxTurns:       2,
		IsMaxTurnsDraw: true,
		Sink:           fanout.New(sink),
		Flushers:       []Flusher{flusher},
	}, countdownRules{start: 100}, func(gameIndex int) []driver.TurnTaker[int] {
		return []driver.TurnTaker[int]{firstMoveTaker{}, firstMoveTaker{}}
	})

	results, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, results.Draws)
	assert.Len(t, sink.reports, 2)
}
