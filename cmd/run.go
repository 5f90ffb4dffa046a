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
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caas-team/verdict/internal/httpclient"
	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks/register"
	"github.com/caas-team/verdict/pkg/config"
	"github.com/caas-team/verdict/pkg/dispatch"
	"github.com/caas-team/verdict/pkg/metrics"
	"github.com/caas-team/verdict/pkg/report"
	"github.com/caas-team/verdict/pkg/suite"
)

// runSuite is the entry point of a test run
func runSuite(code *int) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logger.NewLogger()
		ctx = logger.IntoContext(ctx, log)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err = cfg.Validate(ctx); err != nil {
			log.Error("Error while validating the config", "error", err)
			return err
		}
		if cfg.Probes.Seed == 0 {
			cfg.Probes.Seed = rand.Uint64() //nolint:gosec // only seeds simulated inputs
		}

		registry, err := register.Default(cfg)
		if err != nil {
			return err
		}
		enc, err := report.EncoderFor(cfg.Report.Format)
		if err != nil {
			return err
		}

		m := metrics.NewMetrics()
		s := suite.New(registry, report.NewFileEmitter(cfg.Report.Path, enc),
			suite.WithMetrics(m),
			suite.WithSeed(cfg.Probes.Seed),
			suite.WithProbeTimeout(cfg.Probes.Timeout),
			suite.WithDispatchOptions(dispatchOptions(cfg)...),
		)

		// one client for all endpoint probes, timeouts are applied per request
		ctx = httpclient.IntoContext(ctx, &http.Client{})
		log.Info("Running verdict", "probes", registry.Len(), "seed", cfg.Probes.Seed, "report", cfg.Report.Path)
		res, err := s.Run(ctx)
		if err != nil {
			log.Error("Test run finished with an error", "error", err)
		}

		if cfg.HasMetricsFile() {
			if mErr := m.WriteTextfile(cfg.Metrics.File); mErr != nil {
				log.Warn("Failed to write metrics textfile", "path", cfg.Metrics.File, "error", mErr)
			}
		}

		out := cmd.OutOrStdout()
		if pErr := report.PrintSummary(out, res.Summary); pErr != nil {
			log.Warn("Failed to print summary", "error", pErr)
		}
		*code = suite.ExitCode(res, err)
		fmt.Fprintln(out, verdictLine(*code, res))
		return nil
	}
}

func dispatchOptions(cfg *config.Config) []dispatch.Option {
	opts := []dispatch.Option{dispatch.WithWorkers(cfg.Dispatch.Workers)}
	if cfg.Dispatch.PartialTolerance {
		opts = append(opts, dispatch.WithPartialTolerance())
	}
	return opts
}

func verdictLine(code int, res suite.Result) string {
	switch code {
	case suite.ExitPassed:
		return "\nAll tests passed! Ready for deployment."
	case suite.ExitNotSaved:
		return "\nThe test report could not be saved. Deployment blocked."
	default:
		return fmt.Sprintf("\n%d tests failed. Please fix issues before deployment.", res.Summary.Failed)
	}
}
