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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStatus_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pass", input: `"PASS"`, want: StatusPass},
		{name: "lower case fail", input: `"fail"`, want: StatusFail},
		{name: "skip", input: `"SKIP"`, want: StatusSkip},
		{name: "unknown", input: `"ERROR"`, wantErr: true},
		{name: "not a string", input: `1`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Status
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestStatus_UnmarshalYAML(t *testing.T) {
	var s Status
	require.NoError(t, yaml.Unmarshal([]byte("pass"), &s))
	assert.Equal(t, StatusPass, s)

	err := yaml.Unmarshal([]byte("broken"), &s)
	var invalid ErrInvalidStatus
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "broken", invalid.Value)
}

func TestNewOutcome(t *testing.T) {
	details := map[string]any{"nested": map[string]any{"n": 1}, "list": []any{1, 2}}
	o := NewOutcome("probe", StatusPass, -time.Second, "ok", details)

	assert.Equal(t, time.Duration(0), o.Duration(), "negative durations are clamped")

	details["nested"].(map[string]any)["n"] = 2
	details["list"].([]any)[0] = 9
	details["added"] = true
	assert.Equal(t, map[string]any{"nested": map[string]any{"n": 1}, "list": []any{1, 2}}, o.Details())

	got := o.Details()
	got["added"] = true
	assert.NotContains(t, o.Details(), "added")
}

func TestNewOutcome_InvalidStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		message string
		want    string
	}{
		{name: "unknown", status: Status("BOGUS"), want: `invalid status "BOGUS": expected one of PASS, FAIL, SKIP`},
		{name: "empty keeps message", status: "", message: "half done", want: `invalid status "": expected one of PASS, FAIL, SKIP: half done`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOutcome("a", tt.status, time.Second, tt.message, nil)
			assert.Equal(t, StatusFail, o.Status())
			assert.Equal(t, tt.want, o.Message())

			b, err := json.Marshal(o)
			require.NoError(t, err)
			var back Outcome
			require.NoError(t, json.Unmarshal(b, &back), "a written outcome must be readable again")
			assert.Equal(t, StatusFail, back.Status())
		})
	}
}

func TestOutcome_MarshalJSON_NoHTMLEscape(t *testing.T) {
	o := Fail("XSS Prevention Test", 0, "<broken> & bad", map[string]any{"input": "<script>alert('xss')</script>"})

	b, err := o.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"<broken> & bad"`)
	assert.Contains(t, string(b), `<script>alert('xss')</script>`)
	assert.NotContains(t, string(b), `\u003c`)
	assert.NotEqual(t, byte('\n'), b[len(b)-1])
}

func TestFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "error message", err: errors.New("boom"), want: "boom"},
		{name: "empty message", err: errors.New(""), want: "probe failed without a reason"},
		{name: "nil error", err: nil, want: "probe failed without a reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Failed("p", time.Second, tt.err)
			assert.Equal(t, StatusFail, o.Status())
			assert.Equal(t, tt.want, o.Message())
			assert.Equal(t, tt.want, o.Details()["error"])
		})
	}
}

func TestOutcome_JSON(t *testing.T) {
	o := Pass("Memory Usage Test", 1500*time.Millisecond, "Memory usage: 1024 bytes", map[string]any{"objects": 1000})

	b, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	want := map[string]any{
		"test_name": "Memory Usage Test",
		"status":    "PASS",
		"duration":  1.5,
		"message":   "Memory usage: 1024 bytes",
		"details":   map[string]any{"objects": float64(1000)},
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("json shape mismatch (-want +got):\n%s", diff)
	}

	var back Outcome
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, o.Name(), back.Name())
	assert.Equal(t, o.Status(), back.Status())
	assert.Equal(t, o.Duration(), back.Duration())
}

func TestOutcome_JSONNullDetails(t *testing.T) {
	b, err := json.Marshal(Fail("p", 0, "no", nil))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"details":null`)
}

func TestOutcome_UnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown status", input: `{"test_name":"p","status":"OK","duration":0}`},
		{name: "negative duration", input: `{"test_name":"p","status":"PASS","duration":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Outcome
			assert.Error(t, json.Unmarshal([]byte(tt.input), &o))
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Bundle Size Test - FAIL (0.250s)", Fail("Bundle Size Test", 250*time.Millisecond, "", nil).String())
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("ui").Valid())
	assert.Equal(t, []Category{CategoryPerformance, CategoryFunctionality, CategoryIntegration, CategorySecurity}, Categories())
}
