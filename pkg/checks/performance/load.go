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

package performance

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/dispatch"
)

const (
	LoadProbeName = "Load Performance Test"
	// minimum generated blocks per second
	minThroughput = 1000
)

var blockTypes = []string{"grass", "stone", "dirt", "wood"}

// Block is a generated world block
type Block struct {
	Type     string
	X, Y, Z  int
	Solid    bool
	Hardness float64
}

var _ checks.Probe = (*Load)(nil)

// Load generates blocks concurrently on the dispatcher and checks the throughput.
type Load struct {
	Tasks  int
	Blocks int
}

// NewLoad creates the load probe with 10 tasks of 1000 blocks each
func NewLoad() *Load {
	return &Load{Tasks: 10, Blocks: 1000}
}

func (*Load) Name() string {
	return LoadProbeName
}

func (l *Load) Run(ctx context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	tasks := make([]dispatch.Task[int], l.Tasks)
	for i := range tasks {
		// every task owns its random source, env.Rand is not safe for concurrent use
		rng := checks.NewRand(env.Rand.Uint64())
		tasks[i] = func(ctx context.Context) (int, error) {
			return len(GenerateBlocks(ctx, rng, l.Blocks)), ctx.Err()
		}
	}

	counts, err := dispatch.Dispatch(ctx, tasks, env.Dispatch...)
	duration := env.Since(start)
	if err != nil {
		return checks.Fail(LoadProbeName, duration, fmt.Sprintf("Block generation failed: %v", err), nil), nil
	}

	total := dispatch.Sum(counts)
	var throughput float64
	if duration > 0 {
		throughput = float64(total) / duration.Seconds()
	}

	want := l.Tasks * l.Blocks
	switch {
	case total != want:
		return checks.Fail(LoadProbeName, duration, fmt.Sprintf("Generated %d blocks, expected %d", total, want), nil), nil
	case throughput <= minThroughput:
		return checks.Fail(LoadProbeName, duration, fmt.Sprintf("Low performance: %.1f blocks/sec", throughput), nil), nil
	}
	return checks.Pass(LoadProbeName, duration,
		fmt.Sprintf("Generated %d blocks in %.1f blocks/sec", total, throughput),
		map[string]any{"total_blocks": total, "blocks_per_second": throughput}), nil
}

// GenerateBlocks creates a row of n blocks with random types and hardness.
// It stops early if the context is canceled.
func GenerateBlocks(ctx context.Context, rng *rand.Rand, n int) []Block {
	blocks := make([]Block, 0, n)
	for i := 0; i < n; i++ {
		if i%256 == 0 && ctx.Err() != nil {
			break
		}
		blocks = append(blocks, Block{
			Type:     blockTypes[rng.IntN(len(blockTypes))],
			X:        i,
			Solid:    true,
			Hardness: 0.5 + rng.Float64()*1.5,
		})
	}
	return blocks
}
