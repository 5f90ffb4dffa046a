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

package report

import (
	"fmt"
	"io"

	"github.com/caas-team/verdict/pkg/db"
)

// PrintSummary writes the human-readable summary block of a run.
func PrintSummary(w io.Writer, s db.RunSummary) error {
	_, err := fmt.Fprintf(w, "\nFinal Test Summary:\n"+
		"  Total Tests: %d\n"+
		"  Passed: %d\n"+
		"  Failed: %d\n"+
		"  Skipped: %d\n"+
		"  Success Rate: %.1f%%\n"+
		"  Duration: %.2fs\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.SuccessRate, s.Duration.Seconds())
	return err
}

// PrintResults writes one line per outcome in report order.
func PrintResults(w io.Writer, r Report) error {
	for _, o := range r.Results {
		line := fmt.Sprintf("  [%s] %s (%.3fs)", o.Status(), o.Name(), o.Duration().Seconds())
		if o.Message() != "" {
			line += ": " + o.Message()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
