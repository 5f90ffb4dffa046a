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

package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/report"
)

const urlParamProbeName = "name"

// Source returns the report to serve
type Source func() (report.Report, error)

// FileSource serves the report stored at path, re-read on every request
// so that a new run is picked up without restarting the server
func FileSource(path string) Source {
	return func() (report.Report, error) {
		return report.Load(path)
	}
}

// Handlers serves a report
type Handlers struct {
	source   Source
	registry *prometheus.Registry
}

// NewHandlers creates the report handlers. The registry is exposed on /metrics.
func NewHandlers(source Source, registry *prometheus.Registry) *Handlers {
	return &Handlers{source: source, registry: registry}
}

// Routes returns all routes of the report api
func (h *Handlers) Routes() []Route {
	return []Route{
		{Path: "/v1/report", Method: http.MethodGet, Handler: h.handleReport},
		{Path: "/v1/summary", Method: http.MethodGet, Handler: h.handleSummary},
		{Path: "/v1/results/{name}", Method: http.MethodGet, Handler: h.handleResult},
		{Path: "/openapi", Method: http.MethodGet, Handler: h.handleOpenAPI},
		{
			Path:   "/metrics",
			Method: "Handle",
			Handler: promhttp.HandlerFor(
				h.registry,
				promhttp.HandlerOpts{Registry: h.registry},
			).ServeHTTP,
		},
	}
}

func (h *Handlers) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, rep)
}

func (h *Handlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, rep.Summary)
}

func (h *Handlers) handleResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, urlParamProbeName)
	if name == "" {
		writeStatus(w, r, http.StatusBadRequest)
		return
	}
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	for _, o := range rep.Results {
		if o.Name() == name {
			writeJSON(w, r, o)
			return
		}
	}
	writeStatus(w, r, http.StatusNotFound)
}

type encoder interface {
	Encode(v any) error
}

func (h *Handlers) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	oapi, err := OpenAPI(r.Context())
	if err != nil {
		log.Error("Failed to create openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}

	// the document only knows its JSON form, yaml is rendered from that
	raw, err := oapi.MarshalJSON()
	if err != nil {
		log.Error("Failed to marshal openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}

	var marshaler encoder
	var doc any = json.RawMessage(raw)
	switch r.Header.Get("Accept") {
	case "application/json":
		w.Header().Add("Content-Type", "application/json")
		marshaler = json.NewEncoder(w)
	default:
		w.Header().Add("Content-Type", "text/yaml")
		marshaler = yaml.NewEncoder(w)
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			log.Error("Failed to convert openapi to yaml", "error", err)
			writeStatus(w, r, http.StatusInternalServerError)
			return
		}
		doc = tree
	}

	if err := marshaler.Encode(doc); err != nil {
		log.Error("Failed to marshal openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
	}
}

// load reads the report and answers the request itself if that fails
func (h *Handlers) load(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	rep, err := h.source()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeStatus(w, r, http.StatusNotFound)
			return report.Report{}, false
		}
		logger.FromContext(r.Context()).Error("Failed to load report", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return report.Report{}, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to encode response", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		logger.FromContext(r.Context()).Error("Failed to write response", "error", err)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(http.StatusText(status))); err != nil {
		logger.FromContext(r.Context()).Error("Failed to write response", "error", err)
	}
}
