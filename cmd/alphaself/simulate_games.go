package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/alphaself/internal/cache"
	"github.com/lox/alphaself/internal/driver"
	"github.com/lox/alphaself/internal/fanout"
	"github.com/lox/alphaself/internal/games/checkers"
	"github.com/lox/alphaself/internal/games/tictactoe"
	"github.com/lox/alphaself/internal/obslog"
	"github.com/lox/alphaself/internal/reportlog"
	"github.com/lox/alphaself/internal/simulator"
	"github.com/lox/alphaself/internal/store"
	"github.com/lox/alphaself/internal/turntaker"
	"github.com/lox/alphaself/internal/weight"
)

// SimulateGamesCmd runs self-play games and persists the accumulated
// statistics, matching spec.md §6's simulate-games shape.
type SimulateGamesCmd struct {
	Game            string `kong:"short='g',enum='tic-tac-toe,checkers',required,help='Game to play'"`
	NumberOfGames   int    `kong:"short='n',default='1000',help='Number of games to simulate'"`
	MaxTurns        int    `kong:"short='m',default='-1',help='Maximum turns per game (-1 = unlimited)'"`
	IsMaxTurnsADraw bool   `kong:"help='Treat a game that hits the max-turns bound as a draw instead of inconclusive'"`
	Store           string `kong:"default='alphaself.db',help='Path to the SQLite records store'"`
	CacheSize       int    `kong:"default='10000',help='Bounded cache capacity (M)'"`
	BatchSize       int    `kong:"default='10000',help='Report log batch size'"`
	Verbose         bool   `kong:"short='v',help='Verbose logging'"`

	WeightFlags
}

func (c *SimulateGamesCmd) Run() error {
	logger := obslog.New(os.Stderr, c.Verbose)
	coef := c.WeightFlags.Resolve()

	switch c.Game {
	case "tic-tac-toe":
		return runSimulateGames(tictactoe.Rules{}, c, coef, logger)
	case "checkers":
		return runSimulateGames(checkers.Rules{}, c, coef, logger)
	default:
		return fmt.Errorf("unknown game %q", c.Game)
	}
}

func runSimulateGames[G any](rules driver.Rules[G], c *SimulateGamesCmd, coef weight.Coefficients, logger *log.Logger) error {
	st, err := store.Open(c.Store, c.Game, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	reportWriter, err := reportlog.NewWriter(reportlog.Config{
		Path:      c.Store,
		GameName:  c.Game,
		BatchSize: c.BatchSize,
	}, logger)
	if err != nil {
		return err
	}
	defer reportWriter.Close()

	recordCache := cache.New(c.CacheSize, st, logger)
	sink := fanout.New(recordCache, reportWriter)

	calc := weight.New(coef, recordCache)
	weigher := turntaker.NewWeigher[G](calc, rules.Serialize)
	takers := []driver.TurnTaker[G]{
		turntaker.Argmax[G]{Weigh: weigher},
		turntaker.Argmax[G]{Weigh: weigher},
	}

	sim := simulator.New(simulator.Config{
		NumberOfGames:   c.NumberOfGames,
		MaxTurns:        c.MaxTurns,
		IsMaxTurnsDraw:  c.IsMaxTurnsADraw,
		Sink:            sink,
		Flushers:        []simulator.Flusher{recordCache, reportWriter},
		Logger:          logger,
		Verbose:         c.Verbose,
	}, rules, func(gameIndex int) []driver.TurnTaker[G] {
		return takers
	})

	results, err := sim.Run()
	if err != nil {
		return err
	}

	fmt.Printf("played %d games in %s\n", results.GamesPlayed, results.Duration)
	fmt.Printf("wins: %v  draws: %d  inconclusive: %d\n", results.WinsByPlayer, results.Draws, results.Inconclusive)
	return nil
}
