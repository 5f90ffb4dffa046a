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

// Package security contains the probes of the security category.
package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/caas-team/verdict/pkg/checks"
)

const (
	XSSProbeName          = "XSS Prevention Test"
	ValidationProbeName   = "Input Validation Test"
	SanitizationProbeName = "Data Sanitization Test"
)

// Probes returns the security probes in run order
func Probes() []checks.Probe {
	return []checks.Probe{
		checks.NewProbe(XSSProbeName, XSS),
		checks.NewProbe(ValidationProbeName, Validation),
		checks.NewProbe(SanitizationProbeName, Sanitization),
	}
}

var maliciousInputs = []string{
	"<script>alert('xss')</script>",
	"javascript:alert('xss')",
	"<img src=x onerror=alert('xss')>",
	"'; DROP TABLE users; --",
}

// markup first, then SQL injection; matched case-insensitively
var blockedPatterns = []string{"<", ">", "javascript:", "script", "';", "--", "drop table"}

// Malicious reports whether the input looks like a script or SQL injection attempt.
func Malicious(input string) bool {
	lower := strings.ToLower(input)
	for _, p := range blockedPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// XSS feeds known attack strings through the detector. Every attempt must be blocked.
func XSS(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	blocked := 0
	for _, in := range maliciousInputs {
		if Malicious(in) {
			blocked++
		}
	}
	duration := env.Since(start)

	if blocked == len(maliciousInputs) {
		return checks.Pass(XSSProbeName, duration,
			fmt.Sprintf("Blocked %d/%d XSS attempts", blocked, len(maliciousInputs)),
			map[string]any{"blocked_attempts": blocked, "total_attempts": len(maliciousInputs)}), nil
	}
	return checks.Fail(XSSProbeName, duration,
		fmt.Sprintf("Only blocked %d/%d attempts", blocked, len(maliciousInputs)), nil), nil
}

const maxInputLength = 100

var validationInputs = []string{
	"valid_input",
	"",
	strings.Repeat("a", 1000),
	"null",
	"undefined",
	"0",
	"999999",
}

// ValidInput accepts inputs up to 100 characters that are not null-like literals.
func ValidInput(input string) bool {
	return len(input) <= maxInputLength && input != "null" && input != "undefined"
}

// Validation requires at least half of the sample inputs to be accepted.
func Validation(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	valid := 0
	for _, in := range validationInputs {
		if ValidInput(in) {
			valid++
		}
	}
	duration := env.Since(start)

	if float64(valid) >= float64(len(validationInputs))*0.5 {
		return checks.Pass(ValidationProbeName, duration,
			fmt.Sprintf("Validated %d/%d inputs", valid, len(validationInputs)),
			map[string]any{"valid_inputs": valid, "total_inputs": len(validationInputs)}), nil
	}
	return checks.Fail(ValidationProbeName, duration,
		fmt.Sprintf("Only validated %d/%d inputs", valid, len(validationInputs)), nil), nil
}

// Record is a name/value pair as received from user input.
// Value is either a number or a string.
type Record struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

var dirtyRecords = []Record{
	{Name: "   trim spaces   ", Value: 123},
	{Name: "<script>alert('xss')</script>", Value: -1},
	{Name: "null", Value: "null"},
	{Name: "valid_name", Value: 456},
}

// Sanitize trims the name and replaces null-like or negative sentinel values with zero.
func Sanitize(r Record) Record {
	clean := Record{Name: strings.TrimSpace(r.Name), Value: r.Value}
	switch v := r.Value.(type) {
	case string:
		if v == "null" {
			clean.Value = 0
		}
	case int:
		if v == -1 {
			clean.Value = 0
		}
	}
	return clean
}

// Clean reports whether a record has a non-empty name without markup and a
// non-negative numeric value.
func Clean(r Record) bool {
	if r.Name == "" || strings.ContainsAny(r.Name, "<>") || strings.Contains(r.Name, "script") {
		return false
	}
	switch v := r.Value.(type) {
	case int:
		return v >= 0
	case float64:
		return v >= 0
	default:
		return false
	}
}

// Sanitization requires 75% of the sample records to be clean after sanitizing.
func Sanitization(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	cleaned := make([]Record, 0, len(dirtyRecords))
	ok := 0
	for _, r := range dirtyRecords {
		c := Sanitize(r)
		cleaned = append(cleaned, c)
		if Clean(c) {
			ok++
		}
	}
	duration := env.Since(start)

	if float64(ok) >= float64(len(dirtyRecords))*0.75 {
		return checks.Pass(SanitizationProbeName, duration,
			fmt.Sprintf("Sanitized %d/%d items", ok, len(dirtyRecords)),
			map[string]any{"clean_data": cleaned}), nil
	}
	return checks.Fail(SanitizationProbeName, duration,
		fmt.Sprintf("Only sanitized %d/%d items", ok, len(dirtyRecords)), nil), nil
}
