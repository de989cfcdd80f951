// Package simulator runs many games in sequence and routes their reports to
// the fan-out processor (C8), grounded on the teacher's internal/simulator
// Config/New/Run shape.
package simulator

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/alphaself/internal/driver"
	"github.com/lox/alphaself/internal/fanout"
)

// Flusher is a pending-updates manager the simulator must drain at
// shutdown. *cache.Cache and *reportlog.Writer both implement this.
type Flusher interface {
	FlushAll() <-chan error
}

// Config holds everything one simulation run needs.
type Config struct {
	NumberOfGames   int
	MaxTurns        int
	IsMaxTurnsDraw  bool
	Sink            *fanout.Processor
	Flushers        []Flusher
	Logger          *log.Logger
	Verbose         bool
}

// Results aggregates outcome counts across every game played.
type Results struct {
	WinsByPlayer  map[int]int
	Draws         int
	Inconclusive  int
	GamesPlayed   int
	Duration      time.Duration
}

// TurnTakerFactory builds the ordered turn-taker set for one game. A caller
// may rotate the assignment across the call sequence (e.g. by index parity)
// to alternate which concrete turn-taker plays which color.
type TurnTakerFactory[G any] func(gameIndex int) []driver.TurnTaker[G]

// Simulator runs number_of_games iterations of a single game type.
type Simulator[G any] struct {
	config Config
	rules  driver.Rules[G]
	takers TurnTakerFactory[G]
}

// New returns a simulator for rules, building a fresh turn-taker set per
// game via takers.
func New[G any](config Config, rules driver.Rules[G], takers TurnTakerFactory[G]) *Simulator[G] {
	return &Simulator[G]{config: config, rules: rules, takers: takers}
}

// Run plays config.NumberOfGames games, reports each one to the fan-out
// sink, and flushes every pending-updates manager before returning.
func (s *Simulator[G]) Run() (Results, error) {
	start := time.Now()
	results := Results{WinsByPlayer: make(map[int]int)}

	for i := 0; i < s.config.NumberOfGames; i++ {
		turnTakers := s.takers(i)

		result, err := driver.RunGame(s.rules, turnTakers, s.config.MaxTurns, s.config.IsMaxTurnsDraw)
		if err != nil {
			// Any driver error other than ErrNoLegalMoves (which the driver
			// never returns — it panics instead, since that signals a rules
			// invariant violation, not a game outcome) is counted as
			// inconclusive rather than aborting the whole run (spec.md §7).
			if !errors.Is(err, driver.ErrInconclusive) && s.config.Logger != nil {
				s.config.Logger.Warn("simulator: game ended inconclusively", "game", i, "error", err)
			}
			results.Inconclusive++
			results.GamesPlayed++
			s.logProgress(i)
			continue
		}

		report := driver.ToReport(s.rules, result)
		if err := s.config.Sink.Process(report); err != nil {
			return results, fmt.Errorf("simulator: processing report for game %d: %w", i, err)
		}

		if result.Winner < 0 {
			results.Draws++
		} else {
			results.WinsByPlayer[result.Winner]++
		}
		results.GamesPlayed++
		s.logProgress(i)
	}

	results.Duration = time.Since(start)

	var g errgroup.Group
	for _, f := range s.config.Flushers {
		f := f
		g.Go(func() error { return <-f.FlushAll() })
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("simulator: shutdown flush failed: %w", err)
	}

	return results, nil
}

func (s *Simulator[G]) logProgress(gameIndex int) {
	if !s.config.Verbose || s.config.Logger == nil {
		return
	}
	if (gameIndex+1)%max(1, s.config.NumberOfGames/20) == 0 || gameIndex+1 == s.config.NumberOfGames {
		s.config.Logger.Debug("simulator progress", "game", gameIndex+1, "of", s.config.NumberOfGames)
	}
}
