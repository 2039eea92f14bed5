package dse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticFmax models a toolchain whose achievable Fmax peaks at 200MHz
// when clock_period is 5ns, falling off linearly either side — a stand-in
// for a real synthesis run's timing report, used to check the optimizer
// converges toward the true peak without needing a real flow or subprocess.
func syntheticFmax(clockPeriod float64) float64 {
	return 200 - math.Abs(clockPeriod-5)*10
}

func TestFmaxOptimizerConvergesToKnownPeak(t *testing.T) {
	cfg := Config{MaxWorkers: 4}
	state := NewState(cfg, "synth", map[string]any{}, nil, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{
		InitFreqLow:  100,
		InitFreqHigh: 400,
		Resolution:   0.2,
		Seed:         1,
	})

	for i := 0; i < 10 && !opt.Done(); i++ {
		batch := opt.NextBatch()
		if len(batch) == 0 {
			break
		}
		for idx, cand := range batch {
			freq := syntheticFmax(cand.ClockPeriod)
			outcome := FlowOutcome{
				Settings: cand.Settings,
				Results:  map[string]any{"success": true},
				Freq:     freq,
				HasFreq:  true,
				Success:  true,
			}
			opt.ProcessOutcome(outcome, idx)
		}
	}

	require.NotNil(t, state.Best)
	assert.InDelta(t, 200.0, state.Best.Freq, 0.2)
}

func TestFmaxOptimizerTracksFailedFmaxWithoutSuccess(t *testing.T) {
	cfg := Config{MaxWorkers: 2}
	state := NewState(cfg, "synth", map[string]any{}, nil, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{
		InitFreqLow:  100,
		InitFreqHigh: 400,
		Resolution:   0.2,
		Seed:         2,
	})

	batch := opt.NextBatch()
	require.NotEmpty(t, batch)
	opt.ProcessOutcome(FlowOutcome{Freq: 150, HasFreq: true, Success: false}, 0)

	require.Nil(t, state.Best)
	require.NotNil(t, state.FailedFmax)
	assert.Equal(t, 150.0, *state.FailedFmax)
}

func TestFmaxOptimizerIgnoresOutcomeWithoutFreq(t *testing.T) {
	cfg := Config{MaxWorkers: 2}
	state := NewState(cfg, "synth", map[string]any{}, nil, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{InitFreqLow: 100, InitFreqHigh: 400, Resolution: 0.2})

	improved := opt.ProcessOutcome(FlowOutcome{Success: true}, 0)
	assert.False(t, improved)
	assert.Nil(t, state.Best)
}

func TestFmaxOptimizerRejectsOverLUTBudget(t *testing.T) {
	cfg := Config{MaxWorkers: 2}
	state := NewState(cfg, "synth", map[string]any{}, nil, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{
		InitFreqLow:  100,
		InitFreqHigh: 400,
		Resolution:   0.2,
		HasMaxLUTs:   true,
		MaxLUTs:      1000,
	})

	improved := opt.ProcessOutcome(FlowOutcome{
		Freq: 180, HasFreq: true, Success: true, LUTs: 5000, HasLUTs: true,
	}, 0)
	assert.False(t, improved)
	assert.Nil(t, state.Best)
}

func TestFmaxOptimizerPromotesVariationOnImprovement(t *testing.T) {
	cfg := Config{MaxWorkers: 2}
	variations := []Variation{{KeyPath: "strategy", Values: []any{"area", "speed", "balanced"}}}
	state := NewState(cfg, "synth", map[string]any{}, variations, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{InitFreqLow: 100, InitFreqHigh: 400, Resolution: 0.2})

	improved := opt.ProcessOutcome(FlowOutcome{
		Freq: 150, HasFreq: true, Success: true,
		Results: map[string]any{"_variation_idx": map[string]int{"strategy": 2}},
	}, 0)
	require.True(t, improved)
	assert.Equal(t, 2, state.VariationChoices["strategy"][0])
}

// valuesIndex finds target's position in values, mirroring how
// buildCandidate resolves a Values element from a VariationChoices entry.
func valuesIndex(values []any, target any) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func TestFmaxOptimizerVariationIdxSurvivesRepeatedPromotion(t *testing.T) {
	cfg := Config{MaxWorkers: 1}
	values := []any{"area", "speed", "balanced"}
	variations := []Variation{{KeyPath: "strategy", Values: values}}
	state := NewState(cfg, "synth", map[string]any{}, variations, 100, 400)
	opt := NewFmaxOptimizer(state, FmaxConfig{InitFreqLow: 100, InitFreqHigh: 400, Resolution: 0.2, Seed: 3})

	// Drive buildCandidate through NextBatch so VariationIdx is populated
	// the way a real trial produces it, rather than injected by hand. The
	// first promotion alone can't distinguish a Values index from an order
	// position, since VariationChoices still starts in identity order; a
	// second round, built against the now-permuted order, can.
	batch := opt.NextBatch()
	require.NotEmpty(t, batch)
	cand := batch[0]
	wantIdx := valuesIndex(values, cand.Settings["strategy"])
	improved := opt.ProcessOutcome(FlowOutcome{
		Freq: 150, HasFreq: true, Success: true,
		Results: map[string]any{"_variation_idx": cand.VariationIdx},
	}, 0)
	require.True(t, improved)
	require.Equal(t, wantIdx, state.VariationChoices["strategy"][0])

	batch = opt.NextBatch()
	require.NotEmpty(t, batch)
	cand = batch[0]
	wantIdx = valuesIndex(values, cand.Settings["strategy"])
	improved = opt.ProcessOutcome(FlowOutcome{
		Freq: 160, HasFreq: true, Success: true,
		Results: map[string]any{"_variation_idx": cand.VariationIdx},
	}, 0)
	require.True(t, improved)
	assert.Equal(t, wantIdx, state.VariationChoices["strategy"][0])
}

func TestNewStateSeedsIdentityVariationOrder(t *testing.T) {
	variations := []Variation{{KeyPath: "strategy", Values: []any{"a", "b", "c"}}}
	state := NewState(Config{MaxWorkers: 1}, "synth", nil, variations, 1, 2)
	assert.Equal(t, []int{0, 1, 2}, state.VariationChoices["strategy"])
}
