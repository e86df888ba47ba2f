package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsReachExactlyHundred(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.Equal(t, 100.0, w.MaxAttainable())
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Weights)
	}{
		{"negative cap", func(w *Weights) { w.Events.Cap = -1 }},
		{"negative weight", func(w *Weights) { w.CGPA.Weight = -0.5 }},
		{"exceeds ceiling", func(w *Weights) { w.Base.Cap = 30 }},
		{"zero divisor", func(w *Weights) { w.Rules.StreakDivisor = 0 }},
		{"zero github divisor", func(w *Weights) { w.GitHubBonusDivisor = 0 }},
		{"share out of range", func(w *Weights) { w.Rules.InterviewScoreShare = 1.5 }},
		{"neutral above scale", func(w *Weights) { w.Rules.NeutralCGPA = 11 }},
		{"nan neutral cgpa", func(w *Weights) { w.Rules.NeutralCGPA = math.NaN() }},
		{"nan share", func(w *Weights) { w.Rules.InterviewScoreShare = math.NaN() }},
		{"nan github divisor", func(w *Weights) { w.GitHubBonusDivisor = math.NaN() }},
		{"nan divisor", func(w *Weights) { w.Rules.CGPAScale = math.NaN() }},
		{"infinite project points", func(w *Weights) { w.Rules.ProjectPoints = math.Inf(1) }},
		{"negative leetcode cap", func(w *Weights) { w.Rules.LeetCodeCap = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(&w)
			assert.ErrorIs(t, w.Validate(), ErrInvalidWeights)
		})
	}
}

func TestLoadWeightsFile(t *testing.T) {
	dir := t.TempDir()

	w, err := LoadWeightsFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	w, err = LoadWeightsFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	valid := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("base:\n  cap: 20\n  weight: 1\ngithub_bonus_cap: 10\n"), 0o600))
	w, err = LoadWeightsFile(valid)
	require.NoError(t, err)
	assert.Equal(t, 20.0, w.Base.Cap)
	assert.Equal(t, 10.0, w.GitHubBonusCap)
	assert.Equal(t, DefaultWeights().Projects, w.Projects)

	tooHigh := filepath.Join(dir, "too-high.yaml")
	require.NoError(t, os.WriteFile(tooHigh, []byte("base:\n  cap: 40\n  weight: 1\n"), 0o600))
	_, err = LoadWeightsFile(tooHigh)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	notANumber := filepath.Join(dir, "nan.yaml")
	require.NoError(t, os.WriteFile(notANumber, []byte("rules:\n  neutral_cgpa: .nan\n"), 0o600))
	_, err = LoadWeightsFile(notANumber)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("base: [unclosed"), 0o600))
	_, err = LoadWeightsFile(broken)
	assert.Error(t, err)
}
