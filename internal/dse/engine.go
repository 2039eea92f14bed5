package dse

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/go-microbatch"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"

	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/flow"
)

// telemetryEvent is one per-trial fact the Engine hands to the telemetry
// batcher; flushes are logged as a single aggregated line rather than one
// log line per trial, keeping DSE logs readable at high worker counts.
type telemetryEvent struct {
	Iteration int
	Freq      float64
	Success   bool
	Improved  bool
}

// Engine drives the DSE iteration loop: repeatedly ask the Optimizer for a
// batch, run it through the flow runner via a bounded worker pool, feed
// outcomes back, and persist best.json on every improvement.
type Engine struct {
	Runner    *flow.Runner
	Design    *design.Design
	FlowName  string
	Cfg       Config
	Optimizer Optimizer
	State     *State
	OutDir    string
	Logger    zerolog.Logger

	RunID string

	pool      *Pool
	telemetry *microbatch.Batcher[telemetryEvent]
}

// NewEngine wires a Pool (bounded by cfg.MaxWorkers, falling back to
// DefaultMaxWorkers if unset) and a telemetry Batcher around runner/design/
// flowName/optimizer, ready for Run.
func NewEngine(runner *flow.Runner, d *design.Design, flowName string, cfg Config, optimizer Optimizer, state *State, outDir string, logger zerolog.Logger) *Engine {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = DefaultMaxWorkers()
	}

	e := &Engine{
		Runner:    runner,
		Design:    d,
		FlowName:  flowName,
		Cfg:       cfg,
		Optimizer: optimizer,
		State:     state,
		OutDir:    outDir,
		Logger:    logger,
		RunID:     uuid.NewString(),
	}

	e.telemetry = microbatch.NewBatcher[telemetryEvent](&microbatch.BatcherConfig{
		MaxSize:        cfg.MaxWorkers,
		FlushInterval:  500 * time.Millisecond,
		MaxConcurrency: 1,
	}, e.flushTelemetry)

	e.pool = NewPool(cfg.MaxWorkers, time.Duration(cfg.TrialTimeoutSeconds)*time.Second, e.runTrial)

	return e
}

// DefaultMaxWorkers picks a worker count from available system resources:
// one worker per 2GiB of RAM, capped by the number of logical CPUs, with a
// floor of 1 — synthesis/PnR toolchains are typically RAM-bound well
// before they saturate CPU count.
func DefaultMaxWorkers() int {
	ramWorkers := int(memory.TotalMemory() / (2 << 30))
	cpuWorkers := runtime.NumCPU()
	n := ramWorkers
	if cpuWorkers < n {
		n = cpuWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// flushTelemetry is the microbatch BatchProcessor: it summarizes one flush
// worth of trial events into a single aggregated log line.
func (e *Engine) flushTelemetry(_ context.Context, events []telemetryEvent) error {
	if len(events) == 0 {
		return nil
	}
	successes, improvements := 0, 0
	for _, ev := range events {
		if ev.Success {
			successes++
		}
		if ev.Improved {
			improvements++
		}
	}
	e.Logger.Info().
		Int("trials", len(events)).
		Int("successes", successes).
		Int("improvements", improvements).
		Msg("dse: batch telemetry flush")
	return nil
}

// runTrial adapts a Candidate into a flow.Runner invocation.
func (e *Engine) runTrial(ctx context.Context, cand Candidate) (*FlowOutcome, error) {
	outcome, err := e.Runner.Run(ctx, flow.Request{
		FlowName:          e.FlowName,
		Design:            e.Design,
		SettingsOverrides: cand.Settings,
	})
	if err != nil {
		return nil, err
	}
	fo := NewFlowOutcome(cand.Settings, outcome.Results, outcome.Timestamp, outcome.RunPath)
	if len(cand.VariationIdx) > 0 {
		fo.Results["_variation_idx"] = cand.VariationIdx
	}
	return &fo, nil
}

// Result is what Run returns: the final best.json contents plus whatever
// termination condition stopped the loop.
type Result struct {
	Best             BestRecord
	TerminationReason string
}

// Run drives the iteration loop until a termination condition fires,
// persisting best.json atomically on every improvement.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		_ = e.telemetry.Close()
	}()

	var successful []FlowOutcome
	consecutiveFailedIters := 0

	for {
		if elapsed := time.Since(start).Minutes(); e.Cfg.MaxRuntimeMinutes > 0 && elapsed > e.Cfg.MaxRuntimeMinutes {
			return e.finish(successful, start, "max_runtime_minutes exceeded")
		}
		if e.Optimizer.Done() {
			return e.finish(successful, start, "optimizer declared done")
		}

		iteration := e.State.NumIterations

		batch := e.Optimizer.NextBatch()
		if len(batch) == 0 {
			return e.finish(successful, start, "optimizer returned an empty batch")
		}

		anySuccess := false

		results := e.pool.RunBatch(ctx, batch)
		idx := 0
		for res := range results {
			idx++
			if res.Err != nil || res.Outcome == nil {
				continue
			}
			outcome := *res.Outcome
			improved := e.Optimizer.ProcessOutcome(outcome, idx-1)

			_, _ = e.telemetry.Submit(ctx, telemetryEvent{
				Iteration: iteration,
				Freq:      outcome.Freq,
				Success:   outcome.Success,
				Improved:  improved,
			})

			if outcome.Success {
				anySuccess = true
			}
			if improved {
				successful = append(successful, outcome)
				if err := e.persistBest(successful, start); err != nil {
					e.Logger.Warn().Err(err).Msg("dse: failed to persist best.json")
				}
			} else if e.Cfg.KeepOptimalRunDirs && iteration > 0 {
				_ = os.RemoveAll(outcome.RunPath)
			}
		}

		if anySuccess {
			consecutiveFailedIters = 0
		} else {
			consecutiveFailedIters++
		}

		threshold := e.Cfg.MaxFailedIters
		if e.State.Best != nil && e.Cfg.MaxFailedItersWithBest > 0 {
			threshold = e.Cfg.MaxFailedItersWithBest
		}
		if threshold > 0 && consecutiveFailedIters > threshold {
			return e.finish(successful, start, "consecutive failed iterations exceeded threshold")
		}

		select {
		case <-ctx.Done():
			return e.finish(successful, start, "cancelled")
		default:
		}
	}
}

func (e *Engine) persistBest(successful []FlowOutcome, start time.Time) error {
	return WriteBestAtomic(e.OutDir, e.buildRecord(successful, start), time.Now())
}

func (e *Engine) buildRecord(successful []FlowOutcome, start time.Time) BestRecord {
	rec := BestRecord{
		RunID:                    e.RunID,
		FlowName:                 e.FlowName,
		Best:                     e.State.Best,
		SuccessfulResults:        successful,
		CumulativeRuntimeSeconds: time.Since(start).Seconds(),
		NumIterations:            e.State.NumIterations,
		NoImprovements:           e.State.NoImprovements,
		LoFreq:                   e.State.LoFreq,
		HiFreq:                   e.State.HiFreq,
		NumVariations:            e.State.NumVariations,
	}
	if fo, ok := e.Optimizer.(*FmaxOptimizer); ok {
		rec.Seed = fo.cfg.Seed
	}
	return rec
}

func (e *Engine) finish(successful []FlowOutcome, start time.Time, reason string) (*Result, error) {
	rec := e.buildRecord(successful, start)
	if e.State.Best != nil {
		if err := WriteBestAtomic(e.OutDir, rec, time.Now()); err != nil {
			return nil, fmt.Errorf("write final best.json: %w", err)
		}
	}
	return &Result{Best: rec, TerminationReason: reason}, nil
}
