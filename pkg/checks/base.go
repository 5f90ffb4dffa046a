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

package checks

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/caas-team/verdict/pkg/dispatch"
)

// Probe is a single check producing one Outcome.
//
// Implementations measure their own duration. Returning a non-nil error
// instead of an outcome is allowed: the category runner turns it into a
// failing outcome and continues with the next probe.
type Probe interface {
	// Name returns the human-readable name of the probe, unique within a run.
	Name() string
	// Run executes the probe once.
	Run(ctx context.Context, env Env) (Outcome, error)
}

// Env holds everything a probe may depend on besides its own configuration.
// A new Env is built for every run so probes never share state across runs.
type Env struct {
	// Rand is the seeded source for all randomized probe inputs.
	// It must not be shared with goroutines, derive a new source per task instead.
	Rand *rand.Rand
	// Dispatch holds the options probes pass to the concurrent dispatcher.
	Dispatch []dispatch.Option
	// Now returns the current time, defaults to time.Now.
	Now func() time.Time
}

// NewEnv creates an Env with a deterministic random source for the given seed.
func NewEnv(seed uint64, opts ...dispatch.Option) Env {
	return Env{
		Rand:     NewRand(seed),
		Dispatch: opts,
		Now:      time.Now,
	}
}

// NewRand returns a PCG source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // inputs are not security relevant
}

// Since returns the time elapsed since start using the env clock.
func (e Env) Since(start time.Time) time.Duration {
	if e.Now == nil {
		return time.Since(start)
	}
	return e.Now().Sub(start)
}

// Start returns the current time using the env clock.
func (e Env) Start() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// ProbeFunc adapts a plain function into a Probe.
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context, env Env) (Outcome, error)
}

// NewProbe creates a Probe from a function.
func NewProbe(name string, fn func(ctx context.Context, env Env) (Outcome, error)) Probe {
	return &ProbeFunc{ProbeName: name, Fn: fn}
}

// Name returns the probe name.
func (p *ProbeFunc) Name() string {
	return p.ProbeName
}

// Run calls the wrapped function.
func (p *ProbeFunc) Run(ctx context.Context, env Env) (Outcome, error) {
	return p.Fn(ctx, env)
}
