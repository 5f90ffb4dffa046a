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

// Package performance contains the probes of the performance category.
package performance

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
)

const (
	MemoryProbeName = "Memory Usage Test"
	memoryObjects   = 1000
	memoryValues    = 100
)

var _ checks.Probe = (*Memory)(nil)

// Memory allocates a batch of records and fails if the heap grew more than the budget.
type Memory struct {
	// Budget is the number of bytes the allocation may cost
	Budget uint64
	// RSS reads the resident set size of the process, nil disables it
	RSS func(ctx context.Context) (uint64, error)
}

// NewMemory creates the memory probe with the given budget
func NewMemory(budget uint64) *Memory {
	return &Memory{Budget: budget, RSS: processRSS}
}

type record struct {
	id      int
	data    []float64
	created time.Time
}

func (*Memory) Name() string {
	return MemoryProbeName
}

func (m *Memory) Run(ctx context.Context, env checks.Env) (checks.Outcome, error) {
	log := logger.FromContext(ctx)
	start := env.Start()

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	records := make([]record, 0, memoryObjects)
	for i := 0; i < memoryObjects; i++ {
		data := make([]float64, memoryValues)
		for j := range data {
			data[j] = env.Rand.Float64()
		}
		records = append(records, record{id: i, data: data, created: env.Start()})
	}

	runtime.ReadMemStats(&after)
	runtime.KeepAlive(records)
	growth := after.TotalAlloc - before.TotalAlloc

	details := map[string]any{
		"memory_usage": growth,
		"objects":      len(records),
		"budget":       m.Budget,
	}
	if m.RSS != nil {
		rss, err := m.RSS(ctx)
		if err != nil {
			log.DebugContext(ctx, "Could not read process memory", "error", err)
		} else {
			details["rss"] = rss
		}
	}

	duration := env.Since(start)
	if growth > m.Budget {
		return checks.Fail(MemoryProbeName, duration,
			fmt.Sprintf("High memory usage: %d bytes (budget %d)", growth, m.Budget), details), nil
	}
	return checks.Pass(MemoryProbeName, duration, fmt.Sprintf("Memory usage: %d bytes", growth), details), nil
}

// processRSS returns the resident set size of the current process
func processRSS(ctx context.Context) (uint64, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())) //nolint:gosec // pids fit into int32
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
