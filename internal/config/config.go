// Package config loads the weight-calculator coefficients (spec.md §4.6),
// mirroring the teacher's two-step HCL parse-then-decode pattern
// (internal/server's ServerConfig/LoadServerConfig) adapted to this
// module's single tunable block.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/alphaself/internal/weight"
)

// Weights is the HCL-decodable form of the weight calculator's
// coefficients; a nil field is unset and leaves the corresponding default
// coefficient unchanged (see applyOverrides).
type Weights struct {
	Draws         *float64 `hcl:"draws_weight,optional"`
	Losses        *float64 `hcl:"losses_weight,optional"`
	Wins          *float64 `hcl:"wins_weight,optional"`
	VisitsDeficit *float64 `hcl:"visits_deficit_weight,optional"`
}

// File is the top-level HCL document shape: a single top-level "weights"
// block.
type File struct {
	Weights Weights `hcl:"weights,block"`
}

// DefaultWeights returns the coefficients named in spec.md §4.6: (5, -10,
// 10, 20).
func DefaultWeights() weight.Coefficients {
	return weight.DefaultCoefficients()
}

// Load reads an HCL config file at path and returns its coefficients, with
// every unset field defaulted. A missing file is not an error: it yields
// DefaultWeights().
func Load(path string) (weight.Coefficients, error) {
	coef := DefaultWeights()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return coef, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return weight.Coefficients{}, fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return weight.Coefficients{}, fmt.Errorf("config: decode %s: %s", path, diags.Error())
	}

	return applyOverrides(coef, file.Weights), nil
}

// ApplyFlagOverrides layers CLI flag values (nil meaning "unset", so an
// explicit 0 is a real override) on top of coef, overriding only the fields
// whose pointer is non-nil.
func ApplyFlagOverrides(coef weight.Coefficients, draws, losses, wins, visitsDeficit *float64) weight.Coefficients {
	return applyOverrides(coef, Weights{
		Draws:         draws,
		Losses:        losses,
		Wins:          wins,
		VisitsDeficit: visitsDeficit,
	})
}

func applyOverrides(coef weight.Coefficients, w Weights) weight.Coefficients {
	if w.Draws != nil {
		coef.Draws = float32(*w.Draws)
	}
	if w.Losses != nil {
		coef.Losses = float32(*w.Losses)
	}
	if w.Wins != nil {
		coef.Wins = float32(*w.Wins)
	}
	if w.VisitsDeficit != nil {
		coef.VisitsDeficit = float32(*w.VisitsDeficit)
	}
	return coef
}
