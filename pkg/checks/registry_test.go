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

package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(name string) Probe {
	return NewProbe(name, func(context.Context, Env) (Outcome, error) {
		return Pass(name, 0, "", nil), nil
	})
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(CategorySecurity, stub("b1")))
	require.NoError(t, r.Register(CategoryPerformance, stub("a1"), stub("a2")))

	got := r.Probes(CategoryPerformance)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].Name())
	assert.Equal(t, "a2", got[1].Name())
	assert.Equal(t, 3, r.Len())
	assert.Empty(t, r.Probes(CategoryIntegration))
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(CategoryPerformance, stub("a")))

	err := r.Register(CategorySecurity, stub("a"))
	assert.True(t, errors.Is(err, ErrDuplicateProbe))

	err = r.Register(Category("ui"), stub("b"))
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	assert.Panics(t, func() { r.MustRegister(CategoryPerformance, stub("a")) })
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ProbesIsCopy(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(CategoryPerformance, stub("a"))

	p := r.Probes(CategoryPerformance)
	p[0] = stub("x")
	assert.Equal(t, "a", r.Probes(CategoryPerformance)[0].Name())
}

func TestEnv_Deterministic(t *testing.T) {
	a, b := NewEnv(7), NewEnv(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand.Uint64(), b.Rand.Uint64())
	}
	assert.NotEqual(t, NewEnv(7).Rand.Uint64(), NewEnv(8).Rand.Uint64())
}
