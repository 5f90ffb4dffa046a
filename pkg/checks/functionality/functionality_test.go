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

package functionality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/verdict/pkg/checks"
)

func TestProbes(t *testing.T) {
	for _, p := range Probes() {
		t.Run(p.Name(), func(t *testing.T) {
			out, err := p.Run(context.Background(), checks.NewEnv(99))
			require.NoError(t, err)
			assert.Equal(t, p.Name(), out.Name())
			assert.Equal(t, checks.StatusPass, out.Status(), out.Message())
			assert.NotEmpty(t, out.Message())
		})
	}
}

func TestPhysics_LandsNearAnalyticTime(t *testing.T) {
	out, err := Physics(context.Background(), checks.NewEnv(1))
	require.NoError(t, err)

	d := out.Details()
	assert.Equal(t, 127, d["frames_simulated"])
	assert.LessOrEqual(t, d["final_position"], 0.0)
	assert.InDelta(t, d["expected_time"], d["flight_time"], timeStep)
}

func TestBlock_Deterministic(t *testing.T) {
	a, err := Block(context.Background(), checks.NewEnv(5))
	require.NoError(t, err)
	b, err := Block(context.Background(), checks.NewEnv(5))
	require.NoError(t, err)
	assert.Equal(t, a.Details(), b.Details())
}

func TestInventory(t *testing.T) {
	out, err := Inventory(context.Background(), checks.NewEnv(1))
	require.NoError(t, err)
	assert.Equal(t, 118, out.Details()["total_items"])
	assert.Equal(t, map[string]int{"grass": 22, "dirt": 64, "stone": 32}, out.Details()["inventory"])
}

func TestDayNight(t *testing.T) {
	out, err := DayNight(context.Background(), checks.NewEnv(1))
	require.NoError(t, err)
	steps, ok := out.Details()["time_steps"].([]float64)
	require.True(t, ok)
	assert.Len(t, steps, 10)
	assert.InDelta(t, 0.5, steps[0], 1e-9)
}
