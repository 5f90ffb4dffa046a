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

package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/verdict/pkg/config"
	"github.com/caas-team/verdict/pkg/report"
	"github.com/caas-team/verdict/pkg/suite"
)

func TestLoadConfig_File(t *testing.T) {
	viper.Reset()
	code := 0
	root := NewCmdRoot("test", &code)

	file := filepath.Join(t.TempDir(), "verdict.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
report:
  path: out/report.json
dispatch:
  workers: 8
probes:
  timeout: 2s
  seed: 42
  endpoints:
    - name: api
      url: https://api.test/health
      retry:
        count: 2
        delay: 100ms
`), 0o600))
	require.NoError(t, root.ParseFlags([]string{"--config", file, "--workers", "2"}))

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "out/report.json", cfg.Report.Path)
	assert.Equal(t, 2, cfg.Dispatch.Workers, "flags take precedence over the file")
	assert.Equal(t, 2*time.Second, cfg.Probes.Timeout)
	assert.Equal(t, uint64(42), cfg.Probes.Seed)
	require.Len(t, cfg.Probes.Endpoints, 1)
	assert.Equal(t, config.EndpointConfig{
		Name:           "api",
		URL:            "https://api.test/health",
		ExpectedStatus: 200,
		Timeout:        5 * time.Second,
		Retry:          cfg.Probes.Endpoints[0].Retry,
	}, cfg.Probes.Endpoints[0])
	assert.Equal(t, 2, cfg.Probes.Endpoints[0].Retry.Count)
	assert.Equal(t, 100*time.Millisecond, cfg.Probes.Endpoints[0].Retry.Delay)
}

func TestLoadConfig_YAMLReportPath(t *testing.T) {
	viper.Reset()
	code := 0
	root := NewCmdRoot("test", &code)
	require.NoError(t, root.ParseFlags([]string{"--report-format", "YAML"}))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.FormatYAML, cfg.Report.Format)
	assert.Equal(t, "test_report.yaml", cfg.Report.Path)
}

func TestRoot_RunsSuite(t *testing.T) {
	viper.Reset()
	code := -1
	root := NewCmdRoot("test", &code)
	path := filepath.Join(t.TempDir(), "test_report.json")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--report-path", path, "--seed", "1"})
	require.NoError(t, root.Execute())

	assert.Equal(t, suite.ExitPassed, code)
	assert.Contains(t, out.String(), "Final Test Summary")
	assert.Contains(t, out.String(), "Ready for deployment")

	rep, err := report.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15, rep.Summary.Total)
}

func TestRoot_ReportNotSaved(t *testing.T) {
	viper.Reset()
	code := -1
	root := NewCmdRoot("test", &code)
	path := filepath.Join(t.TempDir(), "missing", "test_report.json")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--report-path", path, "--seed", "1"})
	require.NoError(t, root.Execute())

	assert.Equal(t, suite.ExitNotSaved, code)
	assert.Contains(t, out.String(), "could not be saved")
}

func TestRoot_InvalidConfig(t *testing.T) {
	viper.Reset()
	code := 0
	root := NewCmdRoot("test", &code)
	root.SetArgs([]string{"--workers", "0"})

	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidWorkers)
}

func TestShow(t *testing.T) {
	viper.Reset()
	code := -1
	root := NewCmdRoot("test", &code)
	root.AddCommand(NewCmdShow())
	path := filepath.Join(t.TempDir(), "test_report.json")

	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--report-path", path, "--seed", "3"})
	require.NoError(t, root.Execute())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "XSS Prevention Test")
	assert.Contains(t, out.String(), "Total Tests: 15")
}

func TestHealthcheck(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	tests := []struct {
		name    string
		addr    string
		wantErr error
	}{
		{name: "healthy", addr: healthy.Listener.Addr().String()},
		{name: "down", addr: down.Listener.Addr().String(), wantErr: ErrUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			mu.Lock()
			paths = nil
			mu.Unlock()
			code := 0
			root := NewCmdRoot("test", &code)
			root.AddCommand(NewCmdHealthcheck())
			root.SetArgs([]string{"healthcheck", "--report-path", filepath.Join(t.TempDir(), "missing.json"), "--api-address", tt.addr})

			err := root.Execute()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "/metrics,/v1/summary", strings.Join(paths, ","))
		})
	}
}
