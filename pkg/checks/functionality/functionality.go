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

// Package functionality contains the probes of the functionality category.
package functionality

import (
	"context"
	"fmt"
	"math"

	"github.com/caas-team/verdict/pkg/checks"
)

const (
	BlockProbeName     = "Block System Test"
	PhysicsProbeName   = "Physics System Test"
	AudioProbeName     = "Audio System Test"
	InventoryProbeName = "Inventory System Test"
	DayNightProbeName  = "Day/Night System Test"
)

// Probes returns the functionality probes in run order
func Probes() []checks.Probe {
	return []checks.Probe{
		checks.NewProbe(BlockProbeName, Block),
		checks.NewProbe(PhysicsProbeName, Physics),
		checks.NewProbe(AudioProbeName, Audio),
		checks.NewProbe(InventoryProbeName, Inventory),
		checks.NewProbe(DayNightProbeName, DayNight),
	}
}

var placeableBlocks = []string{"air", "grass", "dirt", "stone", "wood", "leaves"}

// Block places 100 random blocks and breaks about half of them.
func Block(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	placed, broken := 0, 0
	kinds := map[string]int{}
	for i := 0; i < 100; i++ {
		kinds[placeableBlocks[env.Rand.IntN(len(placeableBlocks))]]++
		placed++
		if env.Rand.Float64() < 0.5 {
			broken++
		}
	}

	duration := env.Since(start)
	if placed > 0 && broken <= placed {
		return checks.Pass(BlockProbeName, duration, fmt.Sprintf("Placed %d blocks, broken %d", placed, broken),
			map[string]any{"placed": placed, "broken": broken, "types": kinds}), nil
	}
	return checks.Fail(BlockProbeName, duration, "Invalid block operations", nil), nil
}

const (
	gravity         = -9.81
	initialVelocity = 10.0
	timeStep        = 0.016
	maxFrames       = 600
)

// Physics throws a projectile straight up and checks that it lands within one
// time step of the analytic flight time.
func Physics(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	velocity, position := initialVelocity, 0.0
	frames := 0
	for frames < maxFrames {
		velocity += gravity * timeStep
		position += velocity * timeStep
		frames++
		if position <= 0 {
			break
		}
	}

	flight := float64(frames) * timeStep
	expected := 2 * initialVelocity / -gravity
	details := map[string]any{
		"final_position":   position,
		"frames_simulated": frames,
		"flight_time":      flight,
		"expected_time":    expected,
	}

	duration := env.Since(start)
	switch {
	case position > 0:
		return checks.Fail(PhysicsProbeName, duration,
			fmt.Sprintf("Projectile did not land within %d frames", maxFrames), details), nil
	case math.Abs(flight-expected) > timeStep:
		return checks.Fail(PhysicsProbeName, duration,
			fmt.Sprintf("Flight time %.3fs deviates from expected %.3fs", flight, expected), details), nil
	}
	return checks.Pass(PhysicsProbeName, duration,
		fmt.Sprintf("Physics simulation completed, final position: %.2fm", position), details), nil
}

var soundEvents = []string{"place", "break", "step", "jump"}

// Audio triggers the sound events and the background music.
func Audio(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	played := 0
	for range soundEvents {
		if env.Rand.Float64() < 0.8 {
			played++
		}
	}
	music := env.Rand.Float64() < 0.5

	duration := env.Since(start)
	if played > 0 {
		return checks.Pass(AudioProbeName, duration, fmt.Sprintf("Played %d sounds, music: %t", played, music),
			map[string]any{"sounds_played": played, "music_started": music}), nil
	}
	return checks.Fail(AudioProbeName, duration, "No sounds played", nil), nil
}

// Inventory adds and removes stacks and checks the resulting item count.
func Inventory(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	inventory := map[string]int{}
	for _, add := range []struct {
		item  string
		count int
	}{{"grass", 32}, {"dirt", 64}, {"stone", 32}} {
		inventory[add.item] += add.count
	}
	if n, ok := inventory["grass"]; ok {
		inventory["grass"] = max(0, n-10)
	}

	total := 0
	for _, n := range inventory {
		total += n
	}

	duration := env.Since(start)
	if total > 0 {
		return checks.Pass(InventoryProbeName, duration,
			fmt.Sprintf("Inventory has %d items across %d types", total, len(inventory)),
			map[string]any{"inventory": inventory, "total_items": total}), nil
	}
	return checks.Fail(InventoryProbeName, duration, "Inventory is empty", nil), nil
}

const dayLength = 240.0

// DayNight advances the time of day for ten minutes and checks it stays within a day.
func DayNight(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	timeOfDay := 0.5
	steps := make([]float64, 0, 10)
	for minute := 0; minute < 10; minute++ {
		timeOfDay = math.Mod(timeOfDay+float64(minute)*60/dayLength, 1.0)
		steps = append(steps, timeOfDay)
	}

	valid := len(steps) == 10
	for _, s := range steps {
		if s < 0 || s > 1 {
			valid = false
		}
	}

	duration := env.Since(start)
	if valid {
		return checks.Pass(DayNightProbeName, duration,
			fmt.Sprintf("Time progression: %.2f -> %.2f", steps[0], steps[len(steps)-1]),
			map[string]any{"time_steps": steps}), nil
	}
	return checks.Fail(DayNightProbeName, duration, "Invalid time progression", nil), nil
}
