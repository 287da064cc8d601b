// Package batch evaluates independent jobs concurrently with a bounded
// number of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gowelch/internal"
)

// Result is the outcome of one job. Exactly one of Value and Err is meaningful.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Executor bounds how many jobs run at once.
type Executor struct {
	limit  int64
	sem    *semaphore.Weighted
	logger *internal.Logger
}

// NewExecutor creates an executor running at most concurrency jobs at a time.
// Values below 1 are treated as 1.
func NewExecutor(concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		limit:  int64(concurrency),
		sem:    semaphore.NewWeighted(int64(concurrency)),
		logger: internal.DefaultLogger.Named("Batch"),
	}
}

// Limit returns the maximum number of concurrent jobs.
func (e *Executor) Limit() int { return int(e.limit) }

// Run applies fn to every input and returns results in input order. A failing
// job records its error in its own Result and does not stop the others. The
// returned error is non-nil only when ctx ends before the batch completes:
// either a job was never started (it carries ctx.Err()) or a job failed with
// the context's error.
func Run[In, Out any](ctx context.Context, e *Executor, inputs []In, fn func(context.Context, In) (Out, error)) ([]Result[Out], error) {
	start := time.Now()
	results := make([]Result[Out], len(inputs))
	for i := range results {
		results[i].Index = i
	}

	var g errgroup.Group
	var stopErr error
	for i, in := range inputs {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			stopErr = err
			for j := i; j < len(inputs); j++ {
				results[j].Err = err
			}
			break
		}
		i, in := i, in
		g.Go(func() error {
			defer e.sem.Release(1)
			results[i].Value, results[i].Err = safeCall(ctx, fn, in)
			if err := ctx.Err(); err != nil && errors.Is(results[i].Err, err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && stopErr == nil {
		stopErr = err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Debug("%d jobs finished in %s (%d failed, limit %d)", len(inputs), time.Since(start), failed, e.limit)

	if stopErr != nil {
		return results, fmt.Errorf("batch interrupted: %w", stopErr)
	}
	return results, nil
}

// safeCall turns a panic in fn into an error for that job alone.
func safeCall[In, Out any](ctx context.Context, fn func(context.Context, In) (Out, error), in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx, in)
}
