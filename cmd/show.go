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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/verdict/pkg/db"
	"github.com/caas-team/verdict/pkg/report"
)

// NewCmdShow creates a new show command
func NewCmdShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show [report]",
		Short: "Print a saved test report",
		Long:  `Prints the results and the summary of a report file, by default the configured report path`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString(flagReportPath.Config)
			if len(args) == 1 {
				path = args[0]
			}
			return show(cmd, path)
		},
	}
}

func show(cmd *cobra.Command, path string) error {
	rep, err := report.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Report of %s\n", rep.Timestamp.Format(time.DateTime)); err != nil {
		return err
	}
	if err := report.PrintResults(out, rep); err != nil {
		return err
	}
	// durations are not part of the persisted summary
	return report.PrintSummary(out, db.Summarize(rep.Results))
}
