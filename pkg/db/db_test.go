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

package db

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/verdict/pkg/checks"
)

func TestInMemory_Record(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []checks.Outcome
		want     RunSummary
	}{
		{
			name: "empty log",
			want: RunSummary{},
		},
		{
			name: "mixed statuses",
			outcomes: []checks.Outcome{
				checks.Pass("a", time.Second, "", nil),
				checks.Fail("b", 2*time.Second, "", nil),
				checks.Skip("c", "not run"),
				checks.Pass("d", time.Second, "", nil),
			},
			want: RunSummary{Total: 4, Passed: 2, Failed: 1, Skipped: 1, SuccessRate: 50, Duration: 4 * time.Second},
		},
		{
			name: "all passed",
			outcomes: []checks.Outcome{
				checks.Pass("a", 0, "", nil),
				checks.Pass("b", 0, "", nil),
			},
			want: RunSummary{Total: 2, Passed: 2, SuccessRate: 100},
		},
		{
			name: "unknown status counts as failed",
			outcomes: []checks.Outcome{
				checks.NewOutcome("a", checks.Status("MAYBE"), 0, "", nil),
				checks.Pass("b", 0, "", nil),
				{},
			},
			want: RunSummary{Total: 3, Passed: 1, Failed: 2, SuccessRate: 1.0 / 3.0 * 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewInMemory()
			for _, o := range tt.outcomes {
				i.Record(o)
			}

			got := i.Summary()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Passed+got.Failed+got.Skipped)
			assert.Equal(t, tt.outcomes, nilIfEmpty(i.List()))
		})
	}
}

func nilIfEmpty(o []checks.Outcome) []checks.Outcome {
	if len(o) == 0 {
		return nil
	}
	return o
}

func TestInMemory_IncrementalTotals(t *testing.T) {
	i := NewInMemory()
	statuses := []checks.Status{checks.StatusPass, checks.StatusFail, checks.StatusSkip, checks.StatusPass, checks.StatusFail}

	for n, s := range statuses {
		before := i.Summary()
		i.Record(checks.NewOutcome(fmt.Sprintf("probe-%d", n), s, time.Millisecond, "", nil))
		after := i.Summary()

		assert.Equal(t, before.Total+1, after.Total)
		assert.Equal(t, before.Passed+boolInt(s == checks.StatusPass), after.Passed)
		assert.Equal(t, before.Failed+boolInt(s == checks.StatusFail), after.Failed)
		assert.Equal(t, before.Skipped+boolInt(s == checks.StatusSkip), after.Skipped)
		assert.Equal(t, before.Duration+time.Millisecond, after.Duration)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestInMemory_SummaryIsPure(t *testing.T) {
	i := NewInMemory()
	i.Record(checks.Pass("a", time.Second, "", nil))
	i.Record(checks.Fail("b", time.Second, "", nil))

	first := i.Summary()
	second := i.Summary()
	assert.Equal(t, first, second)
	assert.Len(t, i.List(), 2)
}

func TestInMemory_ListIsCopy(t *testing.T) {
	i := NewInMemory()
	i.Record(checks.Pass("a", 0, "", nil))

	l := i.List()
	l[0] = checks.Fail("tampered", 0, "", nil)
	assert.Equal(t, "a", i.List()[0].Name())
}

func TestInMemory_ConcurrentRecord(t *testing.T) {
	i := NewInMemory()
	var wg sync.WaitGroup
	for n := 0; n < 100; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			i.Record(checks.Pass(fmt.Sprintf("p%d", n), 0, "", nil))
		}()
	}
	wg.Wait()

	s := i.Summary()
	require.Equal(t, 100, s.Total)
	assert.InDelta(t, 100.0, s.SuccessRate, 1e-9)
}
