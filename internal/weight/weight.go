// Package weight implements the policy-selection weight calculator (C6): it
// maps a batch of candidate states to selection weights, combining the
// cached win/loss/draw statistics with a visit-deficit exploration bonus.
package weight

import (
	"context"

	"github.com/lox/alphaself/internal/record"
)

// Coefficients are the linear combination's (α, β, γ, δ) factors applied to
// (draws, losses, wins, visit-deficit). DefaultCoefficients matches spec.md
// §4.6's default policy.
type Coefficients struct {
	Draws         float32
	Losses        float32
	Wins          float32
	VisitsDeficit float32
}

// DefaultCoefficients is the (5, -10, 10, 20) policy.
func DefaultCoefficients() Coefficients {
	return Coefficients{Draws: 5, Losses: -10, Wins: 10, VisitsDeficit: 20}
}

// Records looks a key up by its serialized form, defaulting to the zero
// record when absent. *cache.Cache satisfies this with its Get method.
type Records interface {
	Get(ctx context.Context, key []byte) (record.StateRecord, error)
}

// Calculator weighs candidate states from a Records source.
type Calculator struct {
	coef    Coefficients
	records Records
}

// New returns a calculator reading statistics from records.
func New(coef Coefficients, records Records) *Calculator {
	return &Calculator{coef: coef, records: records}
}

// Weigh computes one weight per candidate in states, in the same order. Each
// candidate is serialized with playerIdx as the responsible player before
// its statistics are looked up, per the identity invariant (spec.md §3).
func Weigh[G any](ctx context.Context, c *Calculator, playerIdx int, states []G, serialize func(responsiblePlayer int, state G) []byte) ([]float32, error) {
	if len(states) == 0 {
		return nil, nil
	}

	recs := make([]record.StateRecord, len(states))
	var maxVisits int64
	for i, s := range states {
		r, err := c.records.Get(ctx, serialize(playerIdx, s))
		if err != nil {
			return nil, err
		}
		recs[i] = r
		if v := r.Visits(); v > maxVisits {
			maxVisits = v
		}
	}

	weights := make([]float32, len(states))
	for i, r := range recs {
		deficit := float32(maxVisits - r.Visits())
		weights[i] = c.coef.Draws*float32(r.Draws) +
			c.coef.Losses*float32(r.Losses) +
			c.coef.Wins*float32(r.Wins) +
			c.coef.VisitsDeficit*deficit
	}
	return weights, nil
}

// Rectify shifts every weight by the same additive constant so that the
// minimum becomes exactly 1, preserving ordering. It is a no-op if the
// minimum is already >= 1. Used only by the weighted-random turn-taker; the
// argmax turn-taker must not rectify (spec.md §4.6).
func Rectify(weights []float32) []float32 {
	if len(weights) == 0 {
		return weights
	}
	min := weights[0]
	for _, w := range weights[1:] {
		if w < min {
			min = w
		}
	}
	if min >= 1 {
		return weights
	}
	shift := 1 - min
	out := make([]float32, len(weights))
	for i, w := range weights {
		out[i] = w + shift
	}
	return out
}
