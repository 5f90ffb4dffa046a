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

package suite

import "github.com/caas-team/verdict/pkg/checks"

// State is a step of a suite run.
type State int

const (
	StatePerformance State = iota
	StateFunctionality
	StateIntegration
	StateSecurity
	StateDone
)

var stateNames = map[State]string{
	StatePerformance:   "PERFORMANCE",
	StateFunctionality: "FUNCTIONALITY",
	StateIntegration:   "INTEGRATION",
	StateSecurity:      "SECURITY",
	StateDone:          "DONE",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Next returns the following state. StateDone is terminal.
func (s State) Next() State {
	if s >= StateDone || s < StatePerformance {
		return StateDone
	}
	return s + 1
}

// Category returns the category run in this state.
// The second return value is false for StateDone.
func (s State) Category() (checks.Category, bool) {
	switch s {
	case StatePerformance:
		return checks.CategoryPerformance, true
	case StateFunctionality:
		return checks.CategoryFunctionality, true
	case StateIntegration:
		return checks.CategoryIntegration, true
	case StateSecurity:
		return checks.CategorySecurity, true
	default:
		return "", false
	}
}
