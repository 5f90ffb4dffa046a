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

package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(n int) Task[int] {
	return func(context.Context) (int, error) {
		return n, nil
	}
}

func TestDispatch_Sum(t *testing.T) {
	for _, k := range []int{0, 1, 1000} {
		tasks := make([]Task[int], 10)
		for i := range tasks {
			tasks[i] = constant(k)
		}

		res, err := Dispatch(context.Background(), tasks, WithWorkers(4))
		require.NoError(t, err)
		assert.Len(t, res, 10)
		assert.Equal(t, 10*k, Sum(res))
	}
}

func TestDispatch_Empty(t *testing.T) {
	res, err := Dispatch[int](context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, res)
}

func TestDispatch_BoundedWorkers(t *testing.T) {
	var running, peak atomic.Int32
	tasks := make([]Task[int], 20)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return 1, nil
		}
	}

	res, err := Dispatch(context.Background(), tasks, WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, 20, Sum(res))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestDispatch_FailFast(t *testing.T) {
	boom := errors.New("boom")
	var started atomic.Int32

	tasks := make([]Task[int], 50)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			started.Add(1)
			if i == 0 {
				return 0, boom
			}
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(20 * time.Millisecond):
				return 1, nil
			}
		}
	}

	_, err := Dispatch(context.Background(), tasks, WithWorkers(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.Index)
	assert.Equal(t, int32(1), started.Load(), "tasks after the failure must not start")
}

func TestDispatch_PartialTolerance(t *testing.T) {
	tasks := []Task[int]{
		constant(1),
		func(context.Context) (int, error) { return 0, errors.New("first") },
		constant(2),
		func(context.Context) (int, error) { return 0, errors.New("second") },
		constant(3),
	}

	res, err := Dispatch(context.Background(), tasks, WithPartialTolerance())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.ElementsMatch(t, []int{1, 2, 3}, res)
}

func TestDispatch_Panic(t *testing.T) {
	tasks := []Task[int]{
		func(context.Context) (int, error) { panic("kaputt") },
	}

	_, err := Dispatch(context.Background(), tasks)
	assert.ErrorIs(t, err, ErrTaskPanic)
}

func TestDispatch_CanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Dispatch(ctx, []Task[int]{constant(1), constant(2)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, len(res), 2)
}

func TestDispatch_Observer(t *testing.T) {
	var ok, failed atomic.Int32
	obs := func(err error) {
		if err != nil {
			failed.Add(1)
			return
		}
		ok.Add(1)
	}
	tasks := []Task[int]{
		constant(1),
		constant(1),
		func(context.Context) (int, error) { return 0, errors.New("no") },
	}

	_, err := Dispatch(context.Background(), tasks, WithPartialTolerance(), WithObserver(obs))
	require.Error(t, err)
	assert.Equal(t, int32(2), ok.Load())
	assert.Equal(t, int32(1), failed.Load())
}

func TestOrdered(t *testing.T) {
	tasks := make([]Task[int], 8)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			// later tasks finish first
			time.Sleep(time.Duration(8-i) * time.Millisecond)
			return i * 10, nil
		}
	}

	res, err := Dispatch(context.Background(), WithIndex(tasks), WithWorkers(8))
	require.NoError(t, err)

	idx := make([]int, 0, len(res))
	for _, r := range res {
		idx = append(idx, r.Index)
	}
	sort.Ints(idx)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, idx)
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70}, Ordered(res, len(tasks)))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0, Sum([]int{}))
	assert.InDelta(t, 3.5, Sum([]float64{1.5, 2}), 1e-9)
	assert.Equal(t, int64(6), Sum([]int64{1, 2, 3}))
}
