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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/verdict/pkg/config"
)

var (
	flagConfigFile       = NewFlag("config", "config")
	flagReportPath       = NewFlag("report.path", "report-path")
	flagReportFormat     = NewFlag("report.format", "report-format")
	flagMetricsFile      = NewFlag("metrics.file", "metrics-file")
	flagWorkers          = NewFlag("dispatch.workers", "workers")
	flagPartialTolerance = NewFlag("dispatch.partialTolerance", "partial-tolerance")
	flagProbeTimeout     = NewFlag("probes.timeout", "probe-timeout")
	flagSeed             = NewFlag("probes.seed", "seed")
	flagMemoryBudget     = NewFlag("probes.memoryBudget", "memory-budget")
	flagApiAddress       = NewFlag("api.address", "api-address")
)

// NewCmdRoot creates a new root command.
// Without a subcommand it runs the test suite and stores the process exit code in code.
func NewCmdRoot(version string, code *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "verdict",
		Short: "Verdict, the release gate test harness",
		Long: "Verdict runs a fixed battery of performance, functionality, integration and security probes,\n" +
			"writes a JSON report and exits non-zero if the success rate is below the release threshold.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSuite(code),
	}

	flagConfigFile.StringP("c").Bind(rootCmd, "", "path to a YAML config file, flags and VERDICT_* environment variables take precedence")
	flagReportPath.String().Bind(rootCmd, config.DefaultReportPath, "path of the report file")
	flagReportFormat.String().Bind(rootCmd, config.FormatJSON, "format of the report file, json or yaml")
	flagMetricsFile.String().Bind(rootCmd, "", "write the run metrics in the prometheus textfile format to this path")
	flagWorkers.Int().Bind(rootCmd, config.DefaultWorkers, "number of concurrent workers of the dispatcher")
	flagPartialTolerance.Bool().Bind(rootCmd, false, "keep dispatch batches running after a task failed")
	flagProbeTimeout.Duration().Bind(rootCmd, 0, "wall clock budget of a single probe, 0 disables it")
	flagSeed.Uint64().Bind(rootCmd, 0, "seed of the randomized probe inputs, 0 picks a random seed")
	flagMemoryBudget.Uint64().Bind(rootCmd, config.DefaultMemoryBudget, "heap growth in bytes the memory probe tolerates")
	flagApiAddress.String().Bind(rootCmd, config.DefaultApiAddress, "api: The address the server is listening on")

	cobra.OnInitialize(initConfig)
	return rootCmd
}

// initConfig wires the environment and the optional config file into viper
func initConfig() {
	viper.SetEnvPrefix("VERDICT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Execute adds all child commands to the root command,
// executes the cmd tree and returns the process exit code
func Execute(version string) int {
	code := 0
	cmd := NewCmdRoot(version, &code)
	cmd.AddCommand(NewCmdServe())
	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdHealthcheck())
	cmd.AddCommand(NewCmdGenDocs(cmd))

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return code
}
