package dse

import (
	"math"
	"math/rand/v2"

	"github.com/xedahq/xeda/internal/hash"
)

// Candidate is one settings map NextBatch hands to the worker pool, along
// with the clock_period/freq it was generated from (kept alongside for
// logging and for ProcessOutcome's bookkeeping).
type Candidate struct {
	Settings    map[string]any
	Freq        float64
	ClockPeriod float64
	// VariationIdx records, per keypath, which Values index this candidate
	// used — ProcessOutcome passes these straight to promoteVariation to
	// move the winning value to the front of its axis's ordering.
	VariationIdx map[string]int
}

// Optimizer is the interface the Engine drives; FmaxOptimizer is the only
// implementation, but the Engine only depends on this interface so a
// constant-settings "replay" optimizer can back deterministic tests.
type Optimizer interface {
	NextBatch() []Candidate
	ProcessOutcome(outcome FlowOutcome, idx int) bool
	Done() bool
}

// FmaxConfig configures an FmaxOptimizer: the initial frequency bracket
// (MHz), the termination resolution (MHz), the minimum-improvement
// threshold below which num_variations grows, the per-iteration frequency
// step used when widening hi, and an optional max_luts constraint.
type FmaxConfig struct {
	InitFreqLow     float64
	InitFreqHigh    float64
	Resolution      float64
	VariationMinImprov float64
	FreqStep        float64
	MaxLUTs         int
	HasMaxLUTs      bool
	MaxVariations   int
	Seed            uint64
}

// FmaxOptimizer drives a clock-frequency binary-search-like bracket,
// generating clock periods derived from a candidate frequency range that
// narrows toward the best Fmax found so far.
type FmaxOptimizer struct {
	state *State
	cfg   FmaxConfig
	rng   *rand.Rand

	prevIterHadNoImprovement bool
	improvedThisIteration    bool
	lastImprovementDelta     float64
	improvedIdx              int
	noSuccessesEver           bool
	consecutiveAllFailure     int
	terminated                bool
}

// NewFmaxOptimizer builds an FmaxOptimizer over state, seeded
// deterministically from cfg.Seed (0 is a valid, reproducible seed — tests
// rely on this for repeatable trial schedules).
func NewFmaxOptimizer(state *State, cfg FmaxConfig) *FmaxOptimizer {
	if cfg.MaxVariations <= 0 {
		cfg.MaxVariations = 8
	}
	if cfg.VariationMinImprov <= 0 {
		cfg.VariationMinImprov = 0.5
	}
	if cfg.FreqStep <= 0 {
		cfg.FreqStep = 1.0
	}
	state.LoFreq = cfg.InitFreqLow
	state.HiFreq = cfg.InitFreqHigh
	return &FmaxOptimizer{
		state:         state,
		cfg:           cfg,
		rng:           rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		noSuccessesEver: true,
	}
}

// Done reports whether a termination condition has fired.
func (o *FmaxOptimizer) Done() bool { return o.terminated }

const delta = 1e-6

// NextBatch implements the bounds-update-then-generate algorithm.
func (o *FmaxOptimizer) NextBatch() []Candidate {
	if o.terminated {
		return nil
	}
	s := o.state

	if s.NumIterations > 0 {
		o.updateBounds()
		if o.terminated {
			return nil
		}
	}

	n := int(math.Ceil(float64(s.MaxWorkers) / float64(s.NumVariations)))
	if n < 1 {
		n = 1
	}

	freqs := linspace(s.LoFreq, s.HiFreq, n)

	var batch []Candidate
	const maxRetries = 24
	lo, hi := s.LoFreq, s.HiFreq
	for attempt := 0; attempt < maxRetries && len(batch) < s.MaxWorkers; attempt++ {
		for _, freq := range freqs {
			if len(batch) >= s.MaxWorkers {
				break
			}
			cand := o.buildCandidate(freq)
			h := hash.DeepHash(cand.Settings)
			if s.BatchHashes[h] {
				continue
			}
			s.BatchHashes[h] = true
			batch = append(batch, cand)
		}
		if len(batch) >= s.MaxWorkers || len(batch) >= n {
			break
		}
		// jitter lo/hi and regenerate the frequency list for another pass.
		jitter := (hi - lo) * 0.05
		lo += (o.rng.Float64()*2 - 1) * jitter
		hi += (o.rng.Float64()*2 - 1) * jitter
		if lo < 0 {
			lo = 0
		}
		if hi <= lo {
			hi = lo + o.cfg.Resolution
		}
		freqs = linspace(lo, hi, n)
	}

	s.NumIterations++
	o.improvedThisIteration = false
	o.improvedIdx = -1
	if len(batch) == 0 {
		o.terminated = true
		return nil
	}
	return batch
}

func (o *FmaxOptimizer) buildCandidate(freq float64) Candidate {
	s := o.state
	settingsMap := s.baseCopy()
	period := math.Round((1000.0/freq)*1000) / 1000

	settingsMap["clock_period"] = period

	idxByPath := make(map[string]int, len(s.Variations))
	for _, v := range s.Variations {
		if len(v.Values) == 0 {
			continue
		}
		order := s.VariationChoices[v.KeyPath]
		pick := pickBiasedIndex(o.rng, len(order))
		valueIdx := order[pick]
		setKeyPath(settingsMap, v.KeyPath, v.Values[valueIdx])
		idxByPath[v.KeyPath] = valueIdx
	}

	return Candidate{Settings: settingsMap, Freq: freq, ClockPeriod: period, VariationIdx: idxByPath}
}

// pickBiasedIndex picks an index in [0, n) biased toward 0: the already
// front-promoted (most recently successful) choices in a variation's
// ordering are tried more often than those further back.
func pickBiasedIndex(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	// Bias by squaring a uniform draw toward 0: index i is picked with
	// probability sqrt((i+1)/n) - sqrt(i/n).
	u := rng.Float64()
	biased := u * u
	idx := int(biased * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{(lo + hi) / 2}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = lo + step*float64(i)
	}
	return out
}

func setKeyPath(m map[string]any, keyPath string, value any) {
	m[keyPath] = value
}

// updateBounds implements step 1 of the algorithm: adjust lo/hi/num_variations
// based on the previous iteration's outcome, then check the terminate-on-
// narrow-bracket condition.
func (o *FmaxOptimizer) updateBounds() {
	s := o.state

	if (s.HiFreq-s.LoFreq) < o.cfg.Resolution && o.prevIterHadNoImprovement {
		o.terminated = true
		return
	}

	if s.Best != nil && (!o.improvedThisIteration || o.lastImprovementDelta < o.cfg.VariationMinImprov) {
		if s.NumVariations < o.cfg.MaxVariations {
			s.NumVariations++
		}
	} else if o.improvedThisIteration && (o.improvedIdx >= s.MaxWorkers/2 || o.lastImprovementDelta >= o.cfg.VariationMinImprov*2) {
		if s.NumVariations > 1 {
			s.NumVariations--
		}
	}

	if s.Best != nil {
		span := o.cfg.Resolution / float64(s.NumVariations+2)
		if span < delta {
			span = delta
		}
		eps := delta + o.rng.Float64()*span
		s.LoFreq = s.Best.Freq + eps
	}

	if !o.improvedThisIteration {
		o.prevIterHadNoImprovement = true
		s.NoImprovements++
		if s.Best != nil {
			s.HiFreq = (s.HiFreq+s.Best.Freq)/2 + delta
		} else {
			mid := (s.LoFreq + s.HiFreq) / 2
			s.LoFreq = (s.LoFreq + mid) / 2
			s.HiFreq = (s.HiFreq + mid) / 2
		}
		if s.HiFreq < o.cfg.Resolution && o.noSuccessesEver {
			o.terminated = true
			return
		}
	} else {
		o.prevIterHadNoImprovement = false
		s.NoImprovements = 0
		widen := math.Max(o.cfg.Resolution, o.cfg.FreqStep) * float64(s.MaxWorkers)
		if s.Best.Freq+widen > s.HiFreq {
			s.HiFreq = s.Best.Freq + widen
		}
	}

	if s.HiFreq <= s.LoFreq {
		s.HiFreq = s.LoFreq + o.cfg.Resolution
	}
}

// ProcessOutcome implements step 3 of the algorithm.
func (o *FmaxOptimizer) ProcessOutcome(outcome FlowOutcome, idx int) bool {
	s := o.state

	if !outcome.HasFreq {
		return false
	}

	if !outcome.Success {
		if o.state.FailedFmax == nil || outcome.Freq > *o.state.FailedFmax {
			s.FailedFmax = &outcome.Freq
		}
		o.consecutiveAllFailure++
		return false
	}
	o.noSuccessesEver = false
	o.consecutiveAllFailure = 0

	if o.cfg.HasMaxLUTs && outcome.HasLUTs && outcome.LUTs > o.cfg.MaxLUTs {
		return false
	}

	if s.Best == nil || outcome.Freq > s.Best.Freq {
		improvement := 0.0
		if s.Best != nil {
			improvement = outcome.Freq - s.Best.Freq
		}
		s.Best = &outcome
		s.BaseSettings = outcome.Settings
		o.improvedIdx = idx
		o.improvedThisIteration = true
		o.lastImprovementDelta = improvement

		if cand, ok := outcome.Results["_variation_idx"].(map[string]int); ok {
			for keyPath, chosenIdx := range cand {
				promoteVariation(s.VariationChoices[keyPath], chosenIdx)
			}
		}
		return true
	}
	return false
}

// promoteVariation moves the element equal to value (an index into a
// Variation's Values slice, not a position in order) to the front of order,
// LRU-style, in place.
func promoteVariation(order []int, value int) {
	pos := -1
	for i, v := range order {
		if v == value {
			pos = i
			break
		}
	}
	if pos <= 0 {
		return
	}
	copy(order[1:pos+1], order[0:pos])
	order[0] = value
}

// ConsecutiveAllFailureIterations reports the optimizer's consecutiveAllFailure
// counter: the number of failed outcomes recorded since the last successful
// one. The Engine keeps its own failure counts for termination and does not
// call this.
func (o *FmaxOptimizer) ConsecutiveAllFailureIterations() int {
	return o.consecutiveAllFailure
}
