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
	"errors"
	"fmt"
)

var (
	// ErrDuplicateProbe is returned when a probe name is registered twice
	ErrDuplicateProbe = errors.New("probe already registered")
	// ErrUnknownCategory is returned for categories outside the fixed set
	ErrUnknownCategory = errors.New("unknown category")
)

// ErrInvalidStatus is returned when a status value is not part of the enumeration
type ErrInvalidStatus struct {
	Value string
}

func (e ErrInvalidStatus) Error() string {
	return fmt.Sprintf("invalid status %q: expected one of %s, %s, %s", e.Value, StatusPass, StatusFail, StatusSkip)
}

// ErrPanic is returned when a probe panics instead of returning
type ErrPanic struct {
	Probe string
	Value any
}

func (e ErrPanic) Error() string {
	return fmt.Sprintf("probe %q panicked: %v", e.Probe, e.Value)
}
