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

package config

import (
	"time"

	"github.com/caas-team/verdict/internal/helper"
)

const (
	// DefaultReportPath is where the report is written when no path is configured
	DefaultReportPath = "test_report.json"
	// DefaultWorkers is the default size of the dispatcher pool
	DefaultWorkers = 4
	// DefaultMemoryBudget is the default heap growth allowed for the memory probe
	DefaultMemoryBudget = 16 << 20
	// DefaultApiAddress is the default listening address of the report API
	DefaultApiAddress = ":8080"
)

// Report formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Dispatch DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`
	Probes   ProbesConfig   `yaml:"probes" mapstructure:"probes"`
	Api      ApiConfig      `yaml:"api" mapstructure:"api"`
}

// ReportConfig is the configuration of the report emitter
type ReportConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig is the configuration of the metrics textfile
type MetricsConfig struct {
	// File is the path of the prometheus textfile, empty disables it
	File string `yaml:"file" mapstructure:"file"`
}

// DispatchConfig is the configuration of the concurrent dispatcher
type DispatchConfig struct {
	Workers          int  `yaml:"workers" mapstructure:"workers"`
	PartialTolerance bool `yaml:"partialTolerance" mapstructure:"partialTolerance"`
}

// ProbesConfig is the configuration shared by the probe battery
type ProbesConfig struct {
	// Timeout is the wall clock budget of a single probe, zero disables it
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Seed seeds the random inputs of the probes, zero picks a random seed
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
	// MemoryBudget is the heap growth in bytes the memory probe tolerates
	MemoryBudget uint64 `yaml:"memoryBudget" mapstructure:"memoryBudget"`
	// Endpoints are additional HTTP endpoints checked by the integration category
	Endpoints []EndpointConfig `yaml:"endpoints" mapstructure:"endpoints"`
}

// EndpointConfig configures a single HTTP endpoint probe
type EndpointConfig struct {
	Name           string             `yaml:"name" mapstructure:"name"`
	URL            string             `yaml:"url" mapstructure:"url"`
	ExpectedStatus int                `yaml:"expectedStatus" mapstructure:"expectedStatus"`
	Timeout        time.Duration      `yaml:"timeout" mapstructure:"timeout"`
	Retry          helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApiConfig is the configuration for the report API
type ApiConfig struct {
	ListeningAddress string `yaml:"address" mapstructure:"address"`
}

// NewConfig creates a new Config with defaults applied
func NewConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Path:   DefaultReportPath,
			Format: FormatJSON,
		},
		Dispatch: DispatchConfig{
			Workers: DefaultWorkers,
		},
		Probes: ProbesConfig{
			MemoryBudget: DefaultMemoryBudget,
		},
		Api: ApiConfig{
			ListeningAddress: DefaultApiAddress,
		},
	}
}

// SetEndpoints decodes the loosely typed endpoint list read from a config source
// and applies defaults to every entry
func (c *Config) SetEndpoints(raw any) error {
	endpoints, err := helper.Decode[[]EndpointConfig](raw)
	if err != nil {
		return err
	}
	for i := range endpoints {
		if endpoints[i].ExpectedStatus == 0 {
			endpoints[i].ExpectedStatus = 200
		}
		if endpoints[i].Timeout == 0 {
			endpoints[i].Timeout = 5 * time.Second
		}
	}
	c.Probes.Endpoints = endpoints
	return nil
}

// HasMetricsFile returns true if a metrics textfile should be written
func (c *Config) HasMetricsFile() bool {
	return c.Metrics.File != ""
}
