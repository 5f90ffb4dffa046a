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

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/db"
)

const namespace = "verdict"

// Metrics collects the prometheus metrics of a single run
type Metrics interface {
	// GetRegistry returns the prometheus registry instance
	// containing the registered prometheus collectors
	GetRegistry() *prometheus.Registry
	// ObserveOutcome records a finished probe
	ObserveOutcome(category checks.Category, outcome checks.Outcome)
	// ObserveTask records a finished dispatcher task
	ObserveTask(err error)
	// ObserveRun records the final summary of the run
	ObserveRun(summary db.RunSummary, finished time.Time)
	// WriteTextfile writes all metrics in the textfile collector format
	WriteTextfile(path string) error
}

var _ Metrics = (*PrometheusMetrics)(nil)

type PrometheusMetrics struct {
	registry    *prometheus.Registry
	outcomes    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	tasks       *prometheus.CounterVec
	successRate prometheus.Gauge
	lastRun     prometheus.Gauge
}

// NewMetrics initializes the metrics of a run and registers them
// with a fresh registry
func NewMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Number of probe outcomes by category and status",
		}, []string{"category", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of the probes by category",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"category"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_tasks_total",
			Help:      "Number of finished dispatcher tasks by result",
		}, []string{"result"}),
		successRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "success_rate",
			Help:      "Percentage of passed probes of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.outcomes, m.durations, m.tasks, m.successRate, m.lastRun)
	// pre-initialize so that every series shows up in the output, even with a zero value
	for _, c := range checks.Categories() {
		for _, s := range []checks.Status{checks.StatusPass, checks.StatusFail, checks.StatusSkip} {
			m.outcomes.WithLabelValues(string(c), string(s))
		}
	}
	m.tasks.WithLabelValues("success")
	m.tasks.WithLabelValues("error")
	return m
}

// WithRuntimeCollectors adds the go runtime and process collectors.
// Only long running processes like the report API need them.
func (m *PrometheusMetrics) WithRuntimeCollectors() *PrometheusMetrics {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// GetRegistry returns the registry to register prometheus metrics
func (m *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

// ObserveOutcome records a finished probe
func (m *PrometheusMetrics) ObserveOutcome(category checks.Category, outcome checks.Outcome) {
	m.outcomes.WithLabelValues(string(category), string(outcome.Status())).Inc()
	m.durations.WithLabelValues(string(category)).Observe(outcome.Duration().Seconds())
}

// ObserveTask records a finished dispatcher task
func (m *PrometheusMetrics) ObserveTask(err error) {
	if err != nil {
		m.tasks.WithLabelValues("error").Inc()
		return
	}
	m.tasks.WithLabelValues("success").Inc()
}

// ObserveRun records the final summary of the run
func (m *PrometheusMetrics) ObserveRun(summary db.RunSummary, finished time.Time) {
	m.successRate.Set(summary.SuccessRate)
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes all metrics to path, e.g. for the node exporter textfile collector
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("no metrics file configured")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
