// Package turntaker implements the three turn-taker variants (C7): greedy
// argmax, weighted-random sampling, and interactive human input.
package turntaker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/lox/alphaself/internal/driver"
	"github.com/lox/alphaself/internal/weight"
)

// Weigher is the subset of weight.Calculator's behavior a turn-taker needs,
// parameterized over the game state type.
type Weigher[G any] func(ctx context.Context, playerIdx int, states []G) ([]float32, error)

// NewWeigher adapts a *weight.Calculator and a game's serializer into a
// Weigher for G.
func NewWeigher[G any](calc *weight.Calculator, serialize func(responsiblePlayer int, state G) []byte) Weigher[G] {
	return func(ctx context.Context, playerIdx int, states []G) ([]float32, error) {
		return weight.Weigh(ctx, calc, playerIdx, states, serialize)
	}
}

// Argmax picks the legal next state with the greatest weight, breaking ties
// by lowest candidate index. It never rectifies weights (spec.md §4.6).
type Argmax[G any] struct {
	Weigh Weigher[G]
}

func (a Argmax[G]) Decide(ctx driver.DecideContext[G]) (G, error) {
	var zero G
	candidates := ctx.Rules.LegalNextStates(ctx.PlayerIndex, ctx.Current)
	if len(candidates) == 0 {
		return zero, driver.ErrNoLegalMoves
	}

	weights, err := a.Weigh(context.Background(), ctx.PlayerIndex, candidates)
	if err != nil {
		return zero, err
	}

	best := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[best] {
			best = i
		}
	}
	return candidates[best], nil
}

// WeightedRandom samples a legal next state with probability proportional
// to its rectified weight. Rand defaults to the package-level math/rand/v2
// source when nil, injectable for deterministic tests.
type WeightedRandom[G any] struct {
	Weigh Weigher[G]
	Rand  func() float64 // uniform [0, 1); defaults to rand.Float64
}

func (w WeightedRandom[G]) Decide(ctx driver.DecideContext[G]) (G, error) {
	var zero G
	candidates := ctx.Rules.LegalNextStates(ctx.PlayerIndex, ctx.Current)
	if len(candidates) == 0 {
		return zero, driver.ErrNoLegalMoves
	}

	weights, err := w.Weigh(context.Background(), ctx.PlayerIndex, candidates)
	if err != nil {
		return zero, err
	}
	weights = weight.Rectify(weights)

	var total float64
	anyPositive := false
	for _, wt := range weights {
		if wt > 0 {
			anyPositive = true
		}
		total += float64(wt)
	}
	if !anyPositive {
		return zero, fmt.Errorf("turntaker: weighted random requires at least one positive weight after rectification")
	}

	draw := w.rand()
	target := draw * total
	var cumulative float64
	for i, wt := range weights {
		cumulative += float64(wt)
		if target < cumulative {
			return candidates[i], nil
		}
	}
	return candidates[len(candidates)-1], nil
}

func (w WeightedRandom[G]) rand() float64 {
	if w.Rand != nil {
		return w.Rand()
	}
	return rand.Float64()
}

// Formatter renders a state plus its legal next states (e.g. annotated with
// selection indices) for display to an interactive player.
type Formatter[G any] func(state G, candidates []G) string

// Parser reads and validates one move choice from raw input, returning the
// index into the legal-next-states slice it refers to. A non-nil error
// causes the prompt to repeat.
type Parser[G any] func(input string, candidates []G) (int, error)

// Interactive prompts a human for their move over Out/In, looping on
// rejected input until the parser accepts a choice.
type Interactive[G any] struct {
	Out    io.Writer
	In     *bufio.Scanner
	Format Formatter[G]
	Parse  Parser[G]
}

func (ia Interactive[G]) Decide(ctx driver.DecideContext[G]) (G, error) {
	var zero G
	candidates := ctx.Rules.LegalNextStates(ctx.PlayerIndex, ctx.Current)
	if len(candidates) == 0 {
		return zero, driver.ErrNoLegalMoves
	}

	fmt.Fprintln(ia.Out, ia.Format(ctx.Current, candidates))
	for {
		fmt.Fprint(ia.Out, "your move> ")
		if !ia.In.Scan() {
			return zero, fmt.Errorf("turntaker: interactive input closed: %w", ia.In.Err())
		}
		idx, err := ia.Parse(ia.In.Text(), candidates)
		if err != nil {
			fmt.Fprintln(ia.Out, "invalid move:", err)
			continue
		}
		return candidates[idx], nil
	}
}
