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
package healthz

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/caas-team/verdict/internal/logger"
)

//go:generate moq -out checker_moq.go . Checker
type Checker interface {
	// CheckOverallHealth reports whether the report API serves its metrics,
	// the run summary and the result of every named probe
	CheckOverallHealth(ctx context.Context, probes []string) bool
}

// checker is used to check the health of the report API
type checker struct {
	addr   string
	client *http.Client
}

// New creates a new healthz checker
// address is the address of the API
func New(address string, client *http.Client) Checker {
	if client == nil {
		client = &http.Client{}
	}
	return &checker{
		addr:   formatAddress(address),
		client: client,
	}
}

func (c *checker) CheckOverallHealth(ctx context.Context, probes []string) bool {
	return c.isHealthy(ctx, "/metrics") && c.isHealthy(ctx, "/v1/summary") && c.areResultsHealthy(ctx, probes)
}

// areResultsHealthy checks if every probe has a served result
func (c *checker) areResultsHealthy(ctx context.Context, probes []string) bool {
	for _, name := range probes {
		if !c.isHealthy(ctx, "/v1/results/"+url.PathEscape(name)) {
			logger.FromContext(ctx).Warn("Result is not served", "probe", name)
			return false
		}
	}

	return true
}

// isHealthy checks if a single path of the API answers with 200
func (c *checker) isHealthy(ctx context.Context, path string) bool {
	log := logger.FromContext(ctx).With("path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s%s", c.addr, path), http.NoBody)
	if err != nil {
		log.Error("Failed to create request", "error", err)
		return false
	}

	resp, err := c.client.Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		log.Error("Failed to send request", "error", err)
		return false
	}
	defer func(b io.ReadCloser) {
		err = b.Close()
		if err != nil {
			log.Error("Failed to close response body", "error", err)
		}
	}(resp.Body)

	return resp.StatusCode == http.StatusOK
}

// formatAddress formats the listen address of the API into one to dial
func formatAddress(addr string) string {
	if addr == "localhost" || addr == "127.0.0.1" || addr == net.IPv6loopback.String() {
		return addr
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort("localhost", "8080")
	}

	return net.JoinHostPort("localhost", port)
}
