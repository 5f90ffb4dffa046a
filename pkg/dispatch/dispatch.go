// verdict
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package dispatch runs a batch of homogeneous tasks on a bounded pool of
// workers and gathers their results in completion order.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/caas-team/verdict/internal/logger"
)

// DefaultWorkers is the pool size used when no WithWorkers option is given
const DefaultWorkers = 4

// Task is one unit of work of a dispatch batch.
type Task[T any] func(ctx context.Context) (T, error)

// Observer is notified after every finished task.
// It is called from worker goroutines and must be safe for concurrent use.
type Observer func(err error)

type options struct {
	workers  int
	tolerant bool
	observer Observer
}

// Option configures a dispatch call.
type Option func(*options)

// WithWorkers sets the number of concurrent workers.
// Values below one fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPartialTolerance keeps running the batch after a task failed.
// Dispatch then returns all successful results together with the joined errors.
func WithPartialTolerance() Option {
	return func(o *options) {
		o.tolerant = true
	}
}

// WithObserver registers a callback invoked for every finished task.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// TaskError is returned when a task of a batch failed.
type TaskError struct {
	// Index is the submission index of the failed task
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.Index, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// ErrTaskPanic is wrapped by the TaskError of a task that panicked
var ErrTaskPanic = errors.New("task panicked")

// Dispatch runs all tasks with bounded parallelism and blocks until the batch is done.
//
// The returned slice is in completion order, not submission order. By default the
// first failing task cancels the batch: tasks that have not started yet are not run
// and the first error is returned. With WithPartialTolerance every task runs and
// the successful results are returned alongside the joined errors.
//
// All worker goroutines have returned when Dispatch returns.
func Dispatch[T any](ctx context.Context, tasks []Task[T], opts ...Option) ([]T, error) {
	o := options{workers: DefaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.FromContext(ctx)
	if len(tasks) == 0 {
		return nil, nil
	}

	var (
		g    *errgroup.Group
		gctx = ctx
	)
	if o.tolerant {
		g = &errgroup.Group{}
	} else {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.SetLimit(o.workers)

	cResult := make(chan T, len(tasks))
	cErr := make(chan error, len(tasks))

	log.DebugContext(ctx, "Dispatching batch", "tasks", len(tasks), "workers", o.workers, "tolerant", o.tolerant)
	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := runTask(gctx, i, task)
			if o.observer != nil {
				o.observer(err)
			}
			if err != nil {
				if o.tolerant {
					cErr <- err
					return nil
				}
				return err
			}
			cResult <- res
			return nil
		})
	}

	err := g.Wait()
	close(cResult)
	close(cErr)

	results := make([]T, 0, len(tasks))
	for r := range cResult {
		results = append(results, r)
	}

	if o.tolerant {
		var errs []error
		for e := range cErr {
			errs = append(errs, e)
		}
		err = errors.Join(errs...)
	}
	if err == nil && ctx.Err() != nil && len(results) < len(tasks) {
		err = ctx.Err()
	}
	if err != nil {
		log.DebugContext(ctx, "Batch finished with errors", "succeeded", len(results), "error", err)
		return results, err
	}
	return results, nil
}

// runTask executes a single task and converts a panic into an error
func runTask[T any](ctx context.Context, index int, task Task[T]) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Index: index, Err: fmt.Errorf("%w: %v", ErrTaskPanic, r)}
		}
	}()
	res, err = task(ctx)
	if err != nil {
		return res, &TaskError{Index: index, Err: err}
	}
	return res, nil
}

// Sum adds up numeric task results.
func Sum[T int | int64 | float64](results []T) T {
	var total T
	for _, r := range results {
		total += r
	}
	return total
}

// Indexed pairs a task result with the submission index of its task.
type Indexed[T any] struct {
	Index int
	Value T
}

// WithIndex wraps tasks so their results carry the submission index.
// Use Ordered on the results to restore submission order.
func WithIndex[T any](tasks []Task[T]) []Task[Indexed[T]] {
	wrapped := make([]Task[Indexed[T]], len(tasks))
	for i, task := range tasks {
		wrapped[i] = func(ctx context.Context) (Indexed[T], error) {
			v, err := task(ctx)
			return Indexed[T]{Index: i, Value: v}, err
		}
	}
	return wrapped
}

// Ordered returns the values of indexed results in submission order.
// Missing indices are left at the zero value.
func Ordered[T any](results []Indexed[T], n int) []T {
	out := make([]T, n)
	for _, r := range results {
		if r.Index >= 0 && r.Index < n {
			out[r.Index] = r.Value
		}
	}
	return out
}
