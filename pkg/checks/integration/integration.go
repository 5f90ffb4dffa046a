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

// Package integration contains the probes of the integration category.
//
// The engine, UI and mobile probes simulate their subsystems with the run's
// random source. Endpoint probes perform real HTTP requests against
// configured targets.
package integration

import (
	"context"
	"fmt"

	"github.com/caas-team/verdict/pkg/checks"
)

const (
	EngineProbeName = "Game Engine Integration Test"
	UIProbeName     = "UI Integration Test"
	MobileProbeName = "Mobile Integration Test"
)

// Probes returns the simulated integration probes in run order
func Probes() []checks.Probe {
	return []checks.Probe{
		checks.NewProbe(EngineProbeName, Engine),
		checks.NewProbe(UIProbeName, UI),
		checks.NewProbe(MobileProbeName, Mobile),
	}
}

var (
	engineSystems  = []string{"block", "physics", "audio", "inventory", "dayNight"}
	uiElements     = []string{"menu", "inventory", "settings", "hotbar", "crosshair"}
	mobileFeatures = []string{"touch_controls", "responsive_design", "mobile_ui", "performance"}
)

// Engine initializes every engine subsystem and requires 80% of them to come up.
func Engine(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()
	status, ok := flip(env, engineSystems)
	duration := env.Since(start)

	if float64(ok) >= float64(len(engineSystems))*0.8 {
		return checks.Pass(EngineProbeName, duration,
			fmt.Sprintf("%d/%d systems initialized", ok, len(engineSystems)),
			map[string]any{"system_status": status}), nil
	}
	return checks.Fail(EngineProbeName, duration,
		fmt.Sprintf("Only %d/%d systems initialized", ok, len(engineSystems)), nil), nil
}

// UI requires 80% of the UI elements to respond within 50ms.
func UI(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	responses := make(map[string]bool, len(uiElements))
	good := 0
	for _, el := range uiElements {
		// response times between 10ms and 100ms
		rt := 0.01 + env.Rand.Float64()*0.09
		responses[el] = rt < 0.05
		if responses[el] {
			good++
		}
	}
	duration := env.Since(start)

	if float64(good) >= float64(len(uiElements))*0.8 {
		return checks.Pass(UIProbeName, duration,
			fmt.Sprintf("%d/%d UI elements responsive", good, len(uiElements)),
			map[string]any{"ui_responses": responses}), nil
	}
	return checks.Fail(UIProbeName, duration,
		fmt.Sprintf("Only %d/%d UI elements responsive", good, len(uiElements)), nil), nil
}

// Mobile requires 75% of the mobile features to be compatible.
func Mobile(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()
	compat, ok := flip(env, mobileFeatures)
	duration := env.Since(start)

	if float64(ok) >= float64(len(mobileFeatures))*0.75 {
		return checks.Pass(MobileProbeName, duration,
			fmt.Sprintf("%d/%d mobile features compatible", ok, len(mobileFeatures)),
			map[string]any{"mobile_compatibility": compat}), nil
	}
	return checks.Fail(MobileProbeName, duration,
		fmt.Sprintf("Only %d/%d mobile features compatible", ok, len(mobileFeatures)), nil), nil
}

// flip assigns a fair coin to every key and counts the heads
func flip(env checks.Env, keys []string) (map[string]bool, int) {
	res := make(map[string]bool, len(keys))
	n := 0
	for _, k := range keys {
		res[k] = env.Rand.IntN(2) == 1
		if res[k] {
			n++
		}
	}
	return res, n
}
