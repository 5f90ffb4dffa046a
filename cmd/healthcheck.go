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
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/healthz"
	"github.com/caas-team/verdict/pkg/report"
)

// ErrUnhealthy is returned by the healthcheck command if the report API is not healthy
var ErrUnhealthy = errors.New("report api is unhealthy")

const healthcheckTimeout = 5 * time.Second

// NewCmdHealthcheck creates a new healthcheck command
func NewCmdHealthcheck() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check a running report API",
		Long: `Exits non-zero unless the report API listening on the api address serves its metrics,
the summary and every result of the saved report. Meant as a container health check of "verdict serve".`,
		Args: cobra.NoArgs,
		RunE: runHealthcheck,
	}
}

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, healthcheckTimeout)
	defer cancel()
	log := logger.NewLogger()
	ctx = logger.IntoContext(ctx, log)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var probes []string
	if rep, lErr := report.Load(cfg.Report.Path); lErr == nil {
		for _, o := range rep.Results {
			probes = append(probes, o.Name())
		}
	} else {
		log.Debug("No local report, checking the summary only", "path", cfg.Report.Path, "error", lErr)
	}

	if !healthz.New(cfg.Api.ListeningAddress, &http.Client{}).CheckOverallHealth(ctx, probes) {
		return ErrUnhealthy
	}
	log.Info("Report API is healthy", "address", cfg.Api.ListeningAddress, "results", len(probes))
	return nil
}
