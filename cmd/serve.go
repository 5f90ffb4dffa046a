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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/api"
	"github.com/caas-team/verdict/pkg/metrics"
	"github.com/caas-team/verdict/pkg/report"
)

// NewCmdServe creates a new serve command
func NewCmdServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the last test report",
		Long:  `Serves the report written by the last run over HTTP until interrupted`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// runServe is the entry point to serve the report api
func runServe(cmd *cobra.Command, _ []string) error {
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
	if err = cfg.ValidateApi(); err != nil {
		log.Error("Error while validating the config", "error", err)
		return err
	}

	m := metrics.NewMetrics().WithRuntimeCollectors()
	if rep, lErr := report.Load(cfg.Report.Path); lErr == nil {
		m.ObserveRun(rep.Summary, rep.Timestamp)
	} else {
		log.Warn("No report to serve yet", "path", cfg.Report.Path, "error", lErr)
	}

	a := api.New(cfg.Api)
	h := api.NewHandlers(api.FileSource(cfg.Report.Path), m.GetRegistry())
	if err = a.RegisterRoutes(ctx, h.Routes()...); err != nil {
		return err
	}

	err = a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("Shutting down report api")
		return a.Shutdown(context.Background())
	}
	return err
}
