package main

import (
	"github.com/lox/alphaself/internal/config"
	"github.com/lox/alphaself/internal/weight"
)

// WeightFlags are the four weight-calculator coefficient overrides shared
// by simulate-games and interactive-game (spec.md §6).
type WeightFlags struct {
	DrawsWeight         *float64 `kong:"name='draws-weight',help='Override the draws coefficient (default 5)'"`
	LossesWeight        *float64 `kong:"name='losses-weight',help='Override the losses coefficient (default -10)'"`
	WinsWeight          *float64 `kong:"name='wins-weight',help='Override the wins coefficient (default 10)'"`
	VisitsDeficitWeight *float64 `kong:"name='visits-deficit-weight',help='Override the visit-deficit exploration coefficient (default 20)'"`
}

// Resolve layers the flags over the package defaults.
func (f WeightFlags) Resolve() weight.Coefficients {
	return config.ApplyFlagOverrides(config.DefaultWeights(), f.DrawsWeight, f.LossesWeight, f.WinsWeight, f.VisitsDeficitWeight)
}
