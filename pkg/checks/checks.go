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

// Package checks defines the result contract shared by every probe of a
// verdict run: the closed Status enumeration, the immutable Outcome record,
// the probe categories and the Probe interface itself.
package checks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Status is the outcome of a single probe.
type Status string

const (
	// StatusPass marks a probe whose assertion held
	StatusPass Status = "PASS"
	// StatusFail marks a probe whose assertion was violated or which errored
	StatusFail Status = "FAIL"
	// StatusSkip marks a probe that did not run
	StatusSkip Status = "SKIP"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusSkip:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// UnmarshalJSON rejects every value outside the status enumeration.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return s.set(raw)
}

// UnmarshalYAML rejects every value outside the status enumeration.
func (s *Status) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return s.set(raw)
}

func (s *Status) set(raw string) error {
	st := Status(strings.ToUpper(raw))
	if !st.Valid() {
		return ErrInvalidStatus{Value: raw}
	}
	*s = st
	return nil
}

// Category groups probes that run together.
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategoryFunctionality Category = "functionality"
	CategoryIntegration   Category = "integration"
	CategorySecurity      Category = "security"
)

// Categories returns all categories in the order a suite runs them.
func Categories() []Category {
	return []Category{
		CategoryPerformance,
		CategoryFunctionality,
		CategoryIntegration,
		CategorySecurity,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Outcome is the immutable record a probe produces.
// The zero value is not useful, use one of the constructors.
type Outcome struct {
	name     string
	status   Status
	duration time.Duration
	message  string
	details  map[string]any
}

// NewOutcome creates an outcome. Negative durations are clamped to zero and
// the details map is copied so the caller may reuse it.
// A status outside the enumeration turns the outcome into a failure.
func NewOutcome(name string, status Status, duration time.Duration, message string, details map[string]any) Outcome {
	if duration < 0 {
		duration = 0
	}
	if !status.Valid() {
		reason := ErrInvalidStatus{Value: string(status)}.Error()
		if message != "" {
			reason = fmt.Sprintf("%s: %s", reason, message)
		}
		status, message = StatusFail, reason
	}
	return Outcome{
		name:     name,
		status:   status,
		duration: duration,
		message:  message,
		details:  copyDetails(details),
	}
}

// Pass creates a passing outcome.
func Pass(name string, duration time.Duration, message string, details map[string]any) Outcome {
	return NewOutcome(name, StatusPass, duration, message, details)
}

// Fail creates a failing outcome.
func Fail(name string, duration time.Duration, message string, details map[string]any) Outcome {
	return NewOutcome(name, StatusFail, duration, message, details)
}

// Skip creates a skipped outcome.
func Skip(name, reason string) Outcome {
	return NewOutcome(name, StatusSkip, 0, reason, nil)
}

// Failed creates the failing outcome for a probe that returned an error
// instead of an outcome. The message is never empty.
func Failed(name string, duration time.Duration, err error) Outcome {
	msg := "probe failed without a reason"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return NewOutcome(name, StatusFail, duration, msg, map[string]any{"error": msg})
}

// Name returns the probe name the outcome belongs to.
func (o Outcome) Name() string { return o.name }

// Status returns the outcome status.
func (o Outcome) Status() Status { return o.status }

// Duration returns the elapsed time measured by the probe.
func (o Outcome) Duration() time.Duration { return o.duration }

// Message returns the free-text summary.
func (o Outcome) Message() string { return o.message }

// Details returns a copy of the structured payload, nil if absent.
func (o Outcome) Details() map[string]any { return copyDetails(o.details) }

// WithDuration returns a copy of the outcome with the given duration.
func (o Outcome) WithDuration(d time.Duration) Outcome {
	return NewOutcome(o.name, o.status, d, o.message, o.details)
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s - %s (%.3fs)", o.name, o.status, o.duration.Seconds())
}

// outcomeDTO is the wire shape of an outcome inside a report.
type outcomeDTO struct {
	Name     string         `json:"test_name" yaml:"test_name"`
	Status   Status         `json:"status" yaml:"status"`
	Duration float64        `json:"duration" yaml:"duration"`
	Message  string         `json:"message" yaml:"message"`
	Details  map[string]any `json:"details" yaml:"details"`
}

func (o Outcome) dto() outcomeDTO {
	return outcomeDTO{
		Name:     o.name,
		Status:   o.status,
		Duration: o.duration.Seconds(),
		Message:  o.message,
		Details:  o.details,
	}
}

func (d outcomeDTO) outcome() (Outcome, error) {
	if !d.Status.Valid() {
		return Outcome{}, ErrInvalidStatus{Value: string(d.Status)}
	}
	if d.Duration < 0 {
		return Outcome{}, fmt.Errorf("outcome %q: negative duration %v", d.Name, d.Duration)
	}
	dur := time.Duration(d.Duration * float64(time.Second))
	return NewOutcome(d.Name, d.Status, dur, d.Message, d.Details), nil
}

// MarshalJSON encodes the outcome as a report result entry.
// Markup in messages and details is written as is.
func (o Outcome) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o.dto()); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes a report result entry.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var d outcomeDTO
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	out, err := d.outcome()
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// MarshalYAML encodes the outcome as a report result entry.
func (o Outcome) MarshalYAML() (any, error) {
	return o.dto(), nil
}

// UnmarshalYAML decodes a report result entry.
func (o *Outcome) UnmarshalYAML(node *yaml.Node) error {
	var d outcomeDTO
	if err := node.Decode(&d); err != nil {
		return err
	}
	out, err := d.outcome()
	if err != nil {
		return err
	}
	*o = out
	return nil
}

func copyDetails(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyDetails(val)
	case []any:
		s := make([]any, len(val))
		for i := range val {
			s[i] = copyValue(val[i])
		}
		return s
	case map[string]bool:
		m := make(map[string]bool, len(val))
		for k, b := range val {
			m[k] = b
		}
		return m
	case map[string]int:
		m := make(map[string]int, len(val))
		for k, n := range val {
			m[k] = n
		}
		return m
	case []float64:
		return append([]float64(nil), val...)
	default:
		return v
	}
}
