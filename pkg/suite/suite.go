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

// Package suite sequences the probe categories of a run, collects their
// outcomes and emits the report.
package suite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/db"
	"github.com/caas-team/verdict/pkg/dispatch"
	"github.com/caas-team/verdict/pkg/metrics"
	"github.com/caas-team/verdict/pkg/report"
	"github.com/caas-team/verdict/pkg/runner"
)

// PassThreshold is the minimum success rate in percent for a run to pass
const PassThreshold = 80.0

// Exit codes of a run
const (
	ExitPassed      = 0
	ExitTestsFailed = 1
	ExitNotSaved    = 2
)

// Suite runs all categories of a registry in the fixed category order.
type Suite struct {
	registry *checks.Registry
	emitter  report.Emitter
	metrics  metrics.Metrics
	timeout  time.Duration
	seed     uint64
	dispatch []dispatch.Option
}

// Option configures a Suite
type Option func(*Suite)

// WithMetrics records every outcome and dispatcher task in m
func WithMetrics(m metrics.Metrics) Option {
	return func(s *Suite) {
		s.metrics = m
	}
}

// WithProbeTimeout sets the wall clock budget of a single probe
func WithProbeTimeout(d time.Duration) Option {
	return func(s *Suite) {
		s.timeout = d
	}
}

// WithSeed seeds the random inputs of all probes
func WithSeed(seed uint64) Option {
	return func(s *Suite) {
		s.seed = seed
	}
}

// WithDispatchOptions sets the options probes use for their dispatch batches
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(s *Suite) {
		s.dispatch = append(s.dispatch, opts...)
	}
}

// New creates a Suite for the given registry and report emitter
func New(registry *checks.Registry, emitter report.Emitter, opts ...Option) *Suite {
	s := &Suite{
		registry: registry,
		emitter:  emitter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is what a run produced
type Result struct {
	RunID   string
	Seed    uint64
	Summary db.RunSummary
	Report  report.Report
}

// Passed reports whether the run met the success rate policy
func (r Result) Passed() bool {
	return r.Summary.SuccessRate >= PassThreshold
}

// Run executes every category exactly once, in order, and emits the report.
//
// A persistence failure is returned as *ErrPersist together with a valid Result.
func (s *Suite) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	ctx, cancel := logger.NewContextWithLogger(ctx, "run", runID)
	defer cancel()
	log := logger.FromContext(ctx)

	results := db.NewInMemory()
	env := s.newEnv()
	r := runner.New(s.timeout, s.hooks()...)
	if v, ok := s.emitter.(report.OutcomeValidator); ok {
		r.Validate = v.Validate
	}

	log.InfoContext(ctx, "Starting test suite", "probes", s.registry.Len(), "seed", s.seed)
	state := StatePerformance
	for state != StateDone {
		category, _ := state.Category()
		log.InfoContext(ctx, "Running category", "category", category, "state", state)
		r.Run(ctx, category, s.registry.Probes(category), env, results)
		state = state.Next()
	}

	summary := results.Summary()
	if s.metrics != nil {
		s.metrics.ObserveRun(summary, time.Now())
	}
	log.InfoContext(ctx, "Generating test report",
		"total", summary.Total, "passed", summary.Passed, "failed", summary.Failed, "successRate", summary.SuccessRate)

	res := Result{RunID: runID, Seed: s.seed, Summary: summary}
	rep, err := s.emitter.Emit(ctx, results)
	res.Report = rep
	if err != nil {
		return res, &ErrPersist{Err: err}
	}
	return res, nil
}

func (s *Suite) newEnv() checks.Env {
	opts := append([]dispatch.Option(nil), s.dispatch...)
	if s.metrics != nil {
		opts = append(opts, dispatch.WithObserver(s.metrics.ObserveTask))
	}
	return checks.NewEnv(s.seed, opts...)
}

func (s *Suite) hooks() []runner.Hook {
	if s.metrics == nil {
		return nil
	}
	return []runner.Hook{s.metrics.ObserveOutcome}
}

// ExitCode maps the result of a run to the process exit code
func ExitCode(res Result, err error) int {
	var pErr *ErrPersist
	if errors.As(err, &pErr) {
		return ExitNotSaved
	}
	if err != nil || !res.Passed() {
		return ExitTestsFailed
	}
	return ExitPassed
}
