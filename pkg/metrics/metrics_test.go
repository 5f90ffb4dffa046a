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

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/db"
)

func TestPrometheusMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveOutcome(checks.CategorySecurity, checks.Pass("a", time.Millisecond, "", nil))
	m.ObserveOutcome(checks.CategorySecurity, checks.Fail("b", time.Millisecond, "", nil))
	m.ObserveOutcome(checks.CategorySecurity, checks.Pass("c", time.Millisecond, "", nil))
	m.ObserveTask(nil)
	m.ObserveTask(errors.New("failed"))
	m.ObserveRun(db.RunSummary{Total: 3, Passed: 2, Failed: 1, SuccessRate: 66.6}, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("security", "PASS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("security", "FAIL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.outcomes.WithLabelValues("performance", "PASS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasks.WithLabelValues("error")))
	assert.Equal(t, 66.6, testutil.ToFloat64(m.successRate))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastRun))
}

func TestPrometheusMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveOutcome(checks.CategoryPerformance, checks.Pass("a", time.Second, "", nil))

	path := filepath.Join(t.TempDir(), "verdict.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `verdict_outcomes_total{category="performance",status="PASS"} 1`), string(b))

	assert.Error(t, m.WriteTextfile(""))
}

func TestPrometheusMetrics_WithRuntimeCollectors(t *testing.T) {
	m := NewMetrics().WithRuntimeCollectors()

	families, err := m.GetRegistry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["verdict_success_rate"])
}
