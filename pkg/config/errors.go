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

package config

import "errors"

var (
	// ErrInvalidReportPath is returned when the report path is empty
	ErrInvalidReportPath = errors.New("invalid report path")
	// ErrInvalidReportFormat is returned when the report format is unknown
	ErrInvalidReportFormat = errors.New("invalid report format")
	// ErrInvalidWorkers is returned when the dispatcher pool size is not positive
	ErrInvalidWorkers = errors.New("invalid dispatcher worker count")
	// ErrInvalidProbeTimeout is returned when the probe timeout is negative
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout")
	// ErrInvalidEndpoint is returned when an endpoint probe is misconfigured
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrInvalidApiAddress is returned when the api address is empty
	ErrInvalidApiAddress = errors.New("invalid api address")
)
