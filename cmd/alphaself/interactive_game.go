package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/alphaself/internal/cache"
	"github.com/lox/alphaself/internal/cliui"
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

// InteractiveGameCmd plays one game against a human, matching spec.md §6's
// interactive-game shape.
type InteractiveGameCmd struct {
	Game       string `kong:"short='g',enum='tic-tac-toe,checkers',required,help='Game to play'"`
	HumanIndex int    `kong:"short='h',default='0',help='Player index controlled by the human (0 or 1)'"`
	Store      string `kong:"default='alphaself.db',help='Path to the SQLite records store'"`
	CacheSize  int    `kong:"default='10000',help='Bounded cache capacity (M)'"`
	BatchSize  int    `kong:"default='10000',help='Report log batch size'"`
	Verbose    bool   `kong:"short='v',help='Verbose logging'"`

	WeightFlags
}

func (c *InteractiveGameCmd) Run() error {
	logger := obslog.New(os.Stderr, c.Verbose)
	coef := c.WeightFlags.Resolve()

	switch c.Game {
	case "tic-tac-toe":
		return runInteractiveGame(tictactoe.Rules{}, tictactoe.Format, tictactoe.Parse, c, coef, logger)
	case "checkers":
		return runInteractiveGame(checkers.Rules{}, checkers.Format, checkers.Parse, c, coef, logger)
	default:
		return fmt.Errorf("unknown game %q", c.Game)
	}
}

func runInteractiveGame[G any](
	rules driver.Rules[G],
	format turntaker.Formatter[G],
	parse turntaker.Parser[G],
	c *InteractiveGameCmd,
	coef weight.Coefficients,
	logger *log.Logger,
) error {
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
	ai := turntaker.Argmax[G]{Weigh: weigher}
	human := turntaker.Interactive[G]{
		Out:    os.Stdout,
		In:     bufio.NewScanner(os.Stdin),
		Format: format,
		Parse:  parse,
	}

	takers := make([]driver.TurnTaker[G], 2)
	for i := range takers {
		if i == c.HumanIndex {
			takers[i] = human
		} else {
			takers[i] = ai
		}
	}

	result, err := driver.RunGame(rules, takers, -1, false)
	if err != nil {
		return fmt.Errorf("interactive-game: %w", err)
	}

	report := driver.ToReport(rules, result)
	if err := sink.Process(report); err != nil {
		return err
	}

	fmt.Println(cliui.Outcome(result.Winner))

	var g errgroup.Group
	for _, f := range []simulator.Flusher{recordCache, reportWriter} {
		f := f
		g.Go(func() error { return <-f.FlushAll() })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("interactive-game: shutdown flush: %w", err)
	}
	return nil
}
