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
	"fmt"
)

// Registry holds the probes of a suite per category in registration order.
type Registry struct {
	probes map[Category][]Probe
	names  map[string]Category
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[Category][]Probe),
		names:  make(map[string]Category),
	}
}

// Register appends a probe to the given category.
// Returns an error if the category is unknown or the name is already taken.
func (r *Registry) Register(category Category, probes ...Probe) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	for _, p := range probes {
		if existing, ok := r.names[p.Name()]; ok {
			return fmt.Errorf("%w: %q in category %s", ErrDuplicateProbe, p.Name(), existing)
		}
		r.names[p.Name()] = category
		r.probes[category] = append(r.probes[category], p)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(category Category, probes ...Probe) {
	if err := r.Register(category, probes...); err != nil {
		panic(err)
	}
}

// Probes returns the probes of a category in registration order.
func (r *Registry) Probes(category Category) []Probe {
	return append([]Probe(nil), r.probes[category]...)
}

// Len returns the number of registered probes across all categories.
func (r *Registry) Len() int {
	return len(r.names)
}
