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

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/caas-team/verdict/pkg/config"
)

// loadConfig builds the config from the config file, the environment and the flags
func loadConfig() (*config.Config, error) {
	if file := viper.GetString(flagConfigFile.Config); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := config.NewConfig()
	cfg.Report.Path = viper.GetString(flagReportPath.Config)
	cfg.Report.Format = strings.ToLower(viper.GetString(flagReportFormat.Config))
	if cfg.Report.Format == config.FormatYAML && cfg.Report.Path == config.DefaultReportPath {
		cfg.Report.Path = strings.TrimSuffix(config.DefaultReportPath, filepath.Ext(config.DefaultReportPath)) + ".yaml"
	}
	cfg.Metrics.File = viper.GetString(flagMetricsFile.Config)
	cfg.Dispatch.Workers = viper.GetInt(flagWorkers.Config)
	cfg.Dispatch.PartialTolerance = viper.GetBool(flagPartialTolerance.Config)
	cfg.Probes.Timeout = viper.GetDuration(flagProbeTimeout.Config)
	cfg.Probes.Seed = viper.GetUint64(flagSeed.Config)
	cfg.Probes.MemoryBudget = viper.GetUint64(flagMemoryBudget.Config)
	if viper.IsSet(flagApiAddress.Config) {
		cfg.Api.ListeningAddress = viper.GetString(flagApiAddress.Config)
	}

	if err := cfg.SetEndpoints(viper.Get("probes.endpoints")); err != nil {
		return nil, fmt.Errorf("failed to decode endpoints: %w", err)
	}
	return cfg, nil
}
