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

package register

import (
	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/checks/functionality"
	"github.com/caas-team/verdict/pkg/checks/integration"
	"github.com/caas-team/verdict/pkg/checks/performance"
	"github.com/caas-team/verdict/pkg/checks/security"
	"github.com/caas-team/verdict/pkg/config"
)

// Default builds the registry of the default probe battery.
// Endpoint probes from the configuration run after the simulated integration probes.
func Default(cfg *config.Config) (*checks.Registry, error) {
	budget := cfg.Probes.MemoryBudget
	if budget == 0 {
		budget = config.DefaultMemoryBudget
	}

	battery := map[checks.Category][]checks.Probe{
		checks.CategoryPerformance: {
			performance.NewMemory(budget),
			performance.NewFrames(),
			performance.NewLoad(),
			performance.NewBundle(),
		},
		checks.CategoryFunctionality: functionality.Probes(),
		checks.CategoryIntegration: append(integration.Probes(),
			integration.EndpointProbes(cfg.Probes.Endpoints)...),
		checks.CategorySecurity: security.Probes(),
	}

	reg := checks.NewRegistry()
	for _, c := range checks.Categories() {
		if err := reg.Register(c, battery[c]...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
