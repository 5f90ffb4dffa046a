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

package db

import (
	"sync"
	"time"

	"github.com/caas-team/verdict/pkg/checks"
)

// DB is the result log of a single run.
type DB interface {
	// Record appends an outcome to the log. Every outcome is accepted.
	Record(outcome checks.Outcome)
	// Summary derives the run statistics from the current log.
	Summary() RunSummary
	// List returns a copy of the log in insertion order.
	List() []checks.Outcome
}

var _ DB = (*InMemory)(nil)

// InMemory is an append-only, ordered result log.
// Create one per run; it owns nothing but the in-memory slice.
type InMemory struct {
	mu       sync.RWMutex
	outcomes []checks.Outcome
}

// NewInMemory creates a new in-memory result log
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Record appends the outcome. Safe for concurrent use.
func (i *InMemory) Record(outcome checks.Outcome) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.outcomes = append(i.outcomes, outcome)
}

// Summary recomputes the statistics from the log without side effects.
func (i *InMemory) Summary() RunSummary {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return Summarize(i.outcomes)
}

// Returns a copy of the log
func (i *InMemory) List() []checks.Outcome {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]checks.Outcome(nil), i.outcomes...)
}

// RunSummary holds the derived statistics of a run.
type RunSummary struct {
	Total       int           `json:"total_tests" yaml:"total_tests"`
	Passed      int           `json:"passed" yaml:"passed"`
	Failed      int           `json:"failed" yaml:"failed"`
	Skipped     int           `json:"skipped" yaml:"skipped"`
	SuccessRate float64       `json:"success_rate" yaml:"success_rate"`
	Duration    time.Duration `json:"-" yaml:"-"`
}

// Summarize computes the statistics of the given outcomes.
// Outcomes with an unknown status count towards Total as skipped
// so that Total always equals Passed + Failed + Skipped.
func Summarize(outcomes []checks.Outcome) RunSummary {
	var s RunSummary
	for _, o := range outcomes {
		s.Total++
		switch o.Status() {
		case checks.StatusPass:
			s.Passed++
		case checks.StatusSkip:
			s.Skipped++
		default:
			// only the zero Outcome lacks a valid status, it never counts as passed
			s.Failed++
		}
		s.Duration += o.Duration()
	}
	s.SuccessRate = successRate(s.Passed, s.Total)
	return s
}

func successRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}
