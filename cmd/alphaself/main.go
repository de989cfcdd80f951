package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

// CLI is the root kong command tree: simulate-games runs self-play to
// populate the store, interactive-game plays one game against a human.
type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`

	SimulateGames   SimulateGamesCmd   `cmd:"simulate-games" help:"Run self-play games and record outcomes"`
	InteractiveGame InteractiveGameCmd `cmd:"interactive-game" help:"Play one game against a human"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("alphaself"),
		kong.Description("Self-play reinforcement learning harness for Tic-Tac-Toe and Checkers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
