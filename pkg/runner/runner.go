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

// Package runner executes the probes of a single category.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
)

// ErrProbeTimeout is returned when a probe exceeds its wall clock budget
var ErrProbeTimeout = errors.New("probe exceeded its time budget")

// ErrUnserializable is returned when a probe outcome cannot be written to the report
var ErrUnserializable = errors.New("probe outcome cannot be serialized")

// Recorder receives every outcome as soon as it is produced.
type Recorder interface {
	Record(outcome checks.Outcome)
}

// Hook is notified about every recorded outcome, e.g. to update metrics.
type Hook func(category checks.Category, outcome checks.Outcome)

// Runner executes the probes of one category strictly one after another.
type Runner struct {
	// Timeout is the wall clock budget of a single probe, zero disables it.
	// A probe exceeding it is abandoned: its context is canceled, but it may
	// still be running while the next probe starts.
	Timeout time.Duration
	// Validate rejects outcomes that could not be persisted, nil accepts all
	Validate func(checks.Outcome) error
	hooks    []Hook
}

// New creates a Runner. A timeout of zero disables the probe budget.
func New(timeout time.Duration, hooks ...Hook) *Runner {
	return &Runner{Timeout: timeout, hooks: hooks}
}

// Run executes the probes in the given order and records one outcome per probe.
// A probe that errors or panics is recorded as a failing outcome and the
// category continues with the next probe. Returns the number of recorded outcomes.
func (r *Runner) Run(ctx context.Context, category checks.Category, probes []checks.Probe, env checks.Env, rec Recorder) int {
	log := logger.FromContext(ctx).With("category", category)

	for _, p := range probes {
		outcome := r.runProbe(ctx, p, forProbe(env))
		rec.Record(outcome)
		for _, h := range r.hooks {
			h(category, outcome)
		}
		log.InfoContext(ctx, fmt.Sprintf("Test Result: %s", outcome),
			"probe", outcome.Name(), "status", outcome.Status(), "duration", outcome.Duration().Seconds())
	}
	return len(probes)
}

// forProbe derives a private random source for a single probe, so a probe's
// inputs do not depend on how much randomness earlier probes consumed
func forProbe(env checks.Env) checks.Env {
	if env.Rand != nil {
		env.Rand = checks.NewRand(env.Rand.Uint64())
	}
	return env
}

type probeResult struct {
	outcome checks.Outcome
	err     error
}

// runProbe runs a single probe and never fails: errors, panics and
// budget violations are turned into failing outcomes
func (r *Runner) runProbe(ctx context.Context, p checks.Probe, env checks.Env) checks.Outcome {
	log := logger.FromContext(ctx).With("probe", p.Name())
	if err := ctx.Err(); err != nil {
		return checks.Skip(p.Name(), fmt.Sprintf("run canceled: %v", err))
	}
	start := time.Now()

	if r.Timeout <= 0 {
		res := call(ctx, p, env)
		return r.finalize(ctx, p.Name(), res, time.Since(start))
	}

	pctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cRes := make(chan probeResult, 1)
	go func() {
		cRes <- call(pctx, p, env)
	}()

	select {
	case res := <-cRes:
		return r.finalize(ctx, p.Name(), res, time.Since(start))
	case <-pctx.Done():
		log.WarnContext(ctx, "Probe exceeded its time budget", "timeout", r.Timeout)
		return checks.Failed(p.Name(), time.Since(start), fmt.Errorf("%w of %s", ErrProbeTimeout, r.Timeout))
	}
}

// call invokes the probe and recovers a panic into an error
func call(ctx context.Context, p checks.Probe, env checks.Env) (res probeResult) {
	defer func() {
		if v := recover(); v != nil {
			res = probeResult{err: checks.ErrPanic{Probe: p.Name(), Value: v}}
		}
	}()
	out, err := p.Run(ctx, env)
	return probeResult{outcome: out, err: err}
}

// finalize turns the probe result into the outcome to record.
// An outcome that could not be persisted fails on its own so the rest of the run still gets written.
func (r *Runner) finalize(ctx context.Context, name string, res probeResult, elapsed time.Duration) checks.Outcome {
	log := logger.FromContext(ctx).With("probe", name)
	if res.err != nil {
		log.ErrorContext(ctx, "Probe failed", "error", res.err)
		return checks.Failed(name, elapsed, res.err)
	}
	out := res.outcome
	if !out.Status().Valid() {
		return checks.Failed(name, elapsed, checks.ErrInvalidStatus{Value: string(out.Status())})
	}
	if out.Name() == "" {
		out = checks.NewOutcome(name, out.Status(), out.Duration(), out.Message(), out.Details())
	}
	if r.Validate != nil {
		if err := r.Validate(out); err != nil {
			log.ErrorContext(ctx, "Probe outcome cannot be persisted", "error", err)
			return checks.Failed(name, out.Duration(), fmt.Errorf("%w: %w", ErrUnserializable, err))
		}
	}
	return out
}
