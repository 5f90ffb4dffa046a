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

package integration

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caas-team/verdict/internal/helper"
	"github.com/caas-team/verdict/internal/httpclient"
	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/config"
)

var _ checks.Probe = (*Endpoint)(nil)

// Endpoint checks that an HTTP endpoint answers a GET request with the expected status
type Endpoint struct {
	cfg    config.EndpointConfig
	client *http.Client
}

// NewEndpoint creates an endpoint probe.
// With a nil client the probe uses the client carried by the run context.
func NewEndpoint(cfg config.EndpointConfig, client *http.Client) *Endpoint {
	return &Endpoint{cfg: cfg, client: client}
}

// EndpointProbes creates one probe per configured endpoint
func EndpointProbes(endpoints []config.EndpointConfig) []checks.Probe {
	probes := make([]checks.Probe, 0, len(endpoints))
	for _, ep := range endpoints {
		probes = append(probes, NewEndpoint(ep, nil))
	}
	return probes
}

// Name returns the name of the probe
func (e *Endpoint) Name() string {
	return fmt.Sprintf("Endpoint Test: %s", e.cfg.Name)
}

// Run requests the endpoint, retrying as configured
func (e *Endpoint) Run(ctx context.Context, env checks.Env) (checks.Outcome, error) {
	log := logger.FromContext(ctx).With("endpoint", e.cfg.Name, "url", e.cfg.URL)
	start := env.Start()

	attempts := 0
	var status int
	request := helper.Retry(func(ctx context.Context) error {
		attempts++
		var err error
		status, err = e.get(ctx)
		return err
	}, e.cfg.Retry)

	err := request(ctx)
	duration := env.Since(start)
	details := map[string]any{"url": e.cfg.URL, "attempts": attempts, "status_code": status}
	if err != nil {
		log.WarnContext(ctx, "Endpoint check failed", "attempts", attempts, "error", err)
		return checks.Fail(e.Name(), duration, fmt.Sprintf("Endpoint unavailable: %v", err), details), nil
	}

	return checks.Pass(e.Name(), duration,
		fmt.Sprintf("Endpoint answered with status %d", status), details), nil
}

// get performs one GET request and fails if the status is not the expected one
func (e *Endpoint) get(ctx context.Context) (int, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.URL, http.NoBody)
	if err != nil {
		return 0, err
	}

	client := e.client
	if client == nil {
		client = httpclient.FromContext(ctx)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != e.cfg.ExpectedStatus {
		return resp.StatusCode, fmt.Errorf("unexpected status %s, want %d", resp.Status, e.cfg.ExpectedStatus)
	}
	return resp.StatusCode, nil
}
