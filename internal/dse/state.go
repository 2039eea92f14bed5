// Package dse implements the design-space exploration engine: a bounded
// worker pool that repeatedly asks an Optimizer for a batch of candidate
// flow settings, runs each through the flow runner, and feeds the results
// back until the optimizer declares victory or a termination condition
// fires.
package dse

// FlowOutcome is one completed (or failed) trial, as reported back to the
// Optimizer.
type FlowOutcome struct {
	Settings  map[string]any
	Results   map[string]any
	Timestamp string
	RunPath   string

	// Freq is the Fmax (MHz) extracted from Results, or 0 if absent.
	Freq float64
	// HasFreq reports whether Results actually carried an Fmax value;
	// Process outcome ignores outcomes without one entirely.
	HasFreq bool
	// Success mirrors Results["success"].
	Success bool
	// LUTs is the used-LUT count, if the flow reports one.
	LUTs    int
	HasLUTs bool
}

// NewFlowOutcome extracts Freq/Success/LUTs out of a raw results map
// produced by the flow runner.
func NewFlowOutcome(settingsMap, results map[string]any, timestamp, runPath string) FlowOutcome {
	o := FlowOutcome{Settings: settingsMap, Results: results, Timestamp: timestamp, RunPath: runPath}
	if v, ok := results["success"].(bool); ok {
		o.Success = v
	}
	if f, ok := asFloat(results["fmax_mhz"]); ok {
		o.Freq = f
		o.HasFreq = true
	}
	if l, ok := asFloat(results["luts"]); ok {
		o.LUTs = int(l)
		o.HasLUTs = true
	}
	return o
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// Variation is one named axis of candidate settings the optimizer picks
// between (e.g. a synthesis strategy, an effort level). Values are ordered
// front-to-back; ProcessOutcome promotes the winning index to the front,
// LRU-style, so that a variation that has already paid off is tried again
// sooner.
type Variation struct {
	KeyPath string
	Values  []any
}

// Config holds the DSE Engine's tuning knobs: max_workers,
// max_runtime_minutes, per-trial timeout, max_failed_iters,
// max_failed_iters_with_best, and keep_optimal_run_dirs.
type Config struct {
	MaxWorkers              int
	MaxRuntimeMinutes       float64
	TrialTimeoutSeconds     int
	MaxFailedIters          int
	MaxFailedItersWithBest  int
	KeepOptimalRunDirs      bool
}

// State is the DSE Engine's per-run mutable state, matching the DATA MODEL
// DSE state tuple: max_workers, base_settings, flow_class, variations,
// best, failed_fmax, num_iterations, no_improvements, lo_freq, hi_freq,
// num_variations, batch_hashes, variation_choices.
type State struct {
	MaxWorkers    int
	BaseSettings  map[string]any
	FlowName      string
	Variations    []Variation

	Best       *FlowOutcome
	FailedFmax *float64

	NumIterations  int
	NoImprovements int

	LoFreq float64
	HiFreq float64

	NumVariations int

	// BatchHashes deduplicates candidate settings within and across
	// batches; it only needs within-process stability, so it is keyed by
	// hash.DeepHash rather than the cross-process SemanticHash.
	BatchHashes map[uint64]bool

	// VariationChoices is the LRU-ordered index list per keypath: index 0
	// is tried first. It starts as the identity ordering of each
	// Variation's Values and is permuted by promoteVariation.
	VariationChoices map[string][]int
}

// NewState initializes a State ready for the first NextBatch call.
func NewState(cfg Config, flowName string, baseSettings map[string]any, variations []Variation, initFreqLow, initFreqHigh float64) *State {
	s := &State{
		MaxWorkers:       cfg.MaxWorkers,
		BaseSettings:     baseSettings,
		FlowName:         flowName,
		Variations:       variations,
		LoFreq:           initFreqLow,
		HiFreq:           initFreqHigh,
		NumVariations:    1,
		BatchHashes:      map[uint64]bool{},
		VariationChoices: map[string][]int{},
	}
	for _, v := range variations {
		idx := make([]int, len(v.Values))
		for i := range idx {
			idx[i] = i
		}
		s.VariationChoices[v.KeyPath] = idx
	}
	return s
}

// baseCopy returns a shallow copy of BaseSettings (top-level keys only), the
// starting point for each candidate's settings map.
func (s *State) baseCopy() map[string]any {
	out := make(map[string]any, len(s.BaseSettings))
	for k, v := range s.BaseSettings {
		out[k] = v
	}
	return out
}
