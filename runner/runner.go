// Package runner executes indexed batches of work sequentially or on a
// bounded worker pool, keeping results in input order.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task produces the result for the item at index.
type Task[T any] func(ctx context.Context, index int) T

// PanicHandler turns a panic recovered from the task at index into a result.
type PanicHandler[T any] func(index int, err error) T

// Runner executes batches of tasks.
type Runner[T any] struct {
	maxConcurrency int
	onPanic        PanicHandler[T]
}

// New creates a runner. A maxConcurrency of one or less runs tasks
// sequentially. A nil onPanic leaves the zero value in place of a panicking task.
func New[T any](maxConcurrency int, onPanic PanicHandler[T]) *Runner[T] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Runner[T]{maxConcurrency: maxConcurrency, onPanic: onPanic}
}

// Concurrency returns the worker limit.
func (r *Runner[T]) Concurrency() int {
	return r.maxConcurrency
}

// Run executes task for every index in [0, n) and returns the results in
// index order. One task failing or panicking never stops the others.
func (r *Runner[T]) Run(ctx context.Context, n int, task Task[T]) []T {
	results := make([]T, n)
	if n <= 0 {
		return results
	}
	if r.maxConcurrency == 1 {
		for i := 0; i < n; i++ {
			results[i] = r.safe(ctx, i, task)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(r.maxConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = r.safe(ctx, i, task)
			return nil
		})
	}
	_ = g.Wait() // failures are carried in the results
	return results
}

func (r *Runner[T]) safe(ctx context.Context, index int, task Task[T]) (out T) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			out = zero
			if r.onPanic != nil {
				out = r.onPanic(index, fmt.Errorf("panic in task %d: %v", index, rec))
			}
		}
	}()
	return task(ctx, index)
}
