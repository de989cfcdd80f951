package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	coef, err := Load(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), coef)
}

func TestLoadAppliesPartialOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
weights {
  wins_weight = 25
}
`), 0o644))

	coef, err := Load(path)
	require.NoError(t, err)

	defaults := DefaultWeights()
	assert.Equal(t, float32(25), coef.Wins)
	assert.Equal(t, defaults.Draws, coef.Draws)
	assert.Equal(t, defaults.Losses, coef.Losses)
	assert.Equal(t, defaults.VisitsDeficit, coef.VisitsDeficit)
}

func TestApplyFlagOverridesOnlyTouchesSetFields(t *testing.T) {
	defaults := DefaultWeights()
	wins := 99.0
	got := ApplyFlagOverrides(defaults, nil, nil, &wins, nil)

	assert.Equal(t, float32(99), got.Wins)
	assert.Equal(t, defaults.Draws, got.Draws)
	assert.Equal(t, defaults.Losses, got.Losses)
	assert.Equal(t, defaults.VisitsDeficit, got.VisitsDeficit)
}
