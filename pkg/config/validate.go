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

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/caas-team/verdict/internal/logger"
)

// Validate validates the config and returns all violations joined together
func (c *Config) Validate(ctx context.Context) (err error) {
	ctx, cancel := logger.NewContextWithLogger(ctx, "scope", "configValidation")
	defer cancel()
	log := logger.FromContext(ctx)

	if c.Report.Path == "" {
		log.ErrorContext(ctx, "The report path must not be empty")
		err = errors.Join(err, ErrInvalidReportPath)
	}
	switch c.Report.Format {
	case FormatJSON, FormatYAML:
	default:
		log.ErrorContext(ctx, "The report format is not supported", "format", c.Report.Format)
		err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidReportFormat, c.Report.Format))
	}
	if c.Dispatch.Workers < 1 {
		log.ErrorContext(ctx, "The dispatcher needs at least one worker", "workers", c.Dispatch.Workers)
		err = errors.Join(err, ErrInvalidWorkers)
	}
	if c.Probes.Timeout < 0 {
		log.ErrorContext(ctx, "The probe timeout must not be negative", "timeout", c.Probes.Timeout)
		err = errors.Join(err, ErrInvalidProbeTimeout)
	}

	names := map[string]struct{}{}
	for i, e := range c.Probes.Endpoints {
		if e.Name == "" {
			err = errors.Join(err, fmt.Errorf("%w: endpoint %d has no name", ErrInvalidEndpoint, i))
		}
		if _, ok := names[e.Name]; ok {
			err = errors.Join(err, fmt.Errorf("%w: duplicate name %q", ErrInvalidEndpoint, e.Name))
		}
		names[e.Name] = struct{}{}
		if u, uErr := url.ParseRequestURI(e.URL); uErr != nil || u.Host == "" {
			log.ErrorContext(ctx, "The endpoint url is not a valid url", "endpoint", e.Name, "url", e.URL)
			err = errors.Join(err, fmt.Errorf("%w: %q has an invalid url", ErrInvalidEndpoint, e.Name))
		}
		if e.Retry.Count < 0 || e.Retry.Count > 5 {
			log.ErrorContext(ctx, "The amount of endpoint retries should be between 0 and 5", "endpoint", e.Name, "retries", e.Retry.Count)
			err = errors.Join(err, fmt.Errorf("%w: %q has an invalid retry count", ErrInvalidEndpoint, e.Name))
		}
	}

	return err
}

// ValidateApi validates the configuration needed to serve the report API
func (c *Config) ValidateApi() error {
	if c.Api.ListeningAddress == "" {
		return ErrInvalidApiAddress
	}
	if c.Report.Path == "" {
		return ErrInvalidReportPath
	}
	return nil
}
