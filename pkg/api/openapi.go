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
	"context"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/db"
)

// resultSchema mirrors the encoded form of a single outcome.
// Outcomes only expose their fields through accessors, which schema generation cannot see.
type resultSchema struct {
	TestName string         `json:"test_name"`
	Status   string         `json:"status"`
	Duration float64        `json:"duration"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details"`
}

type reportSchema struct {
	Timestamp time.Time      `json:"timestamp"`
	Summary   db.RunSummary  `json:"summary"`
	Results   []resultSchema `json:"test_results"`
}

// customizeSchema adds what the struct tags cannot express
func customizeSchema(_ string, _ reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	switch tag.Get("json") {
	case "details":
		schema.Nullable = true
	case "status":
		schema.Enum = []any{string(checks.StatusPass), string(checks.StatusFail), string(checks.StatusSkip)}
	}
	return nil
}

// OpenAPI generates the OpenAPI document of the report api
func OpenAPI(ctx context.Context) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Verdict Report API",
			Description: "Serves the report of the last verdict run",
			Version:     "v1",
		},
		Paths: make(openapi3.Paths),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	schemas := []struct {
		name  string
		path  string
		desc  string
		value any
	}{
		{name: "report", path: "/v1/report", desc: "Returns the complete report of the last run", value: reportSchema{}},
		{name: "summary", path: "/v1/summary", desc: "Returns the summary of the last run", value: db.RunSummary{}},
		{name: "result", path: "/v1/results/{name}", desc: "Returns the result of a single probe", value: resultSchema{}},
	}
	for _, s := range schemas {
		ref, err := openapi3gen.NewSchemaRefForValue(s.value, doc.Components.Schemas, openapi3gen.SchemaCustomizer(customizeSchema))
		if err != nil {
			log.Error("Failed to generate schema", "name", s.name, "error", err)
			return openapi3.T{}, &ErrCreateOpenapiSchema{name: s.name, err: err}
		}

		okDesc := fmt.Sprintf("The %s", s.name)
		op := &openapi3.Operation{
			Description: s.desc,
			Tags:        []string{"Report"},
			Responses: openapi3.Responses{
				fmt.Sprint(http.StatusOK): &openapi3.ResponseRef{
					Value: &openapi3.Response{
						Description: &okDesc,
						Content:     openapi3.NewContentWithJSONSchemaRef(ref),
					},
				},
				fmt.Sprint(http.StatusNotFound): &openapi3.ResponseRef{
					Value: openapi3.NewResponse().WithDescription("No report or no such probe"),
				},
			},
		}
		if s.name == "result" {
			op.Parameters = openapi3.Parameters{
				&openapi3.ParameterRef{Value: openapi3.NewPathParameter("name").
					WithDescription("Name of the probe").
					WithSchema(openapi3.NewStringSchema())},
			}
		}
		doc.Paths[s.path] = &openapi3.PathItem{Description: s.name, Get: op}
	}

	return doc, nil
}
