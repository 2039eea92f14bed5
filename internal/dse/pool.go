package dse

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/joeycumines/go-catrate"
)

// TrialFunc runs one candidate to completion (or until ctx is cancelled)
// and returns its outcome. When the per-trial deadline passes, ctx is
// cancelled and the function returns a nil outcome with a non-nil error.
type TrialFunc func(ctx context.Context, cand Candidate) (*FlowOutcome, error)

// Pool is the bounded worker pool driving DSE trials: at most maxWorkers
// goroutines run trials at once (each trial runs its toolchains as
// subprocesses), each given a per-trial hard timeout. launchRate throttles how frequently new trials
// are started, independent of the concurrency bound, so a large batch
// doesn't spawn dozens of toolchain processes in the same instant.
type Pool struct {
	maxWorkers  int
	trialTimeout time.Duration
	sem         *semaphore.Weighted
	launchRate  *catrate.Limiter
	trial       TrialFunc
}

// NewPool builds a Pool with maxWorkers concurrent slots and the given
// per-trial timeout. Launch are additionally throttled to maxWorkers starts
// per second, smoothing bursts when a batch completes all at once.
func NewPool(maxWorkers int, trialTimeout time.Duration, trial TrialFunc) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		maxWorkers:   maxWorkers,
		trialTimeout: trialTimeout,
		sem:          semaphore.NewWeighted(int64(maxWorkers)),
		launchRate:   catrate.NewLimiter(map[time.Duration]int{time.Second: maxWorkers}),
		trial:        trial,
	}
}

// TrialResult pairs a Candidate with what came of running it.
type TrialResult struct {
	Candidate Candidate
	Outcome   *FlowOutcome
	Err       error
}

// RunBatch launches one goroutine per candidate, bounded by the pool's
// semaphore, and streams results back on the returned channel as each
// trial completes — in completion order, not submission order, per the
// "results are consumed in completion order" scheduling guarantee.
// Cancelling ctx stops accepting new launches and cancels in-flight
// trials. RunBatch returns once every candidate has been launched or
// rejected; the channel is closed after every launched trial has finished
// or been cancelled.
func (p *Pool) RunBatch(ctx context.Context, batch []Candidate) <-chan TrialResult {
	out := make(chan TrialResult, len(batch))
	if len(batch) == 0 {
		close(out)
		return out
	}

	var wg sync.WaitGroup
	for _, cand := range batch {
		cand := cand
		if err := p.sem.Acquire(ctx, 1); err != nil {
			out <- TrialResult{Candidate: cand, Err: err}
			continue
		}
		if err := p.waitForLaunchSlot(ctx); err != nil {
			p.sem.Release(1)
			out <- TrialResult{Candidate: cand, Err: err}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.sem.Release(1)

			trialCtx := ctx
			var cancel context.CancelFunc
			if p.trialTimeout > 0 {
				trialCtx, cancel = context.WithTimeout(ctx, p.trialTimeout)
				defer cancel()
			}
			outcome, err := p.trial(trialCtx, cand)
			out <- TrialResult{Candidate: cand, Outcome: outcome, Err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// waitForLaunchSlot blocks until the launch-rate limiter admits another
// trial start, or ctx is cancelled.
func (p *Pool) waitForLaunchSlot(ctx context.Context) error {
	for {
		if _, ok := p.launchRate.Allow("trial"); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
