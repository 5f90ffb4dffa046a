package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/spf13/viper"

	"github.com/caas-team/verdict/cmd"
)

const defaultAddress = "localhost:18080"

var _ Runner = (*E2E)(nil)

// E2E is an end-to-end test.
// It runs the suite once and then serves the written report until the context is canceled.
type E2E struct {
	t       *testing.T
	dir     string
	addr    string
	args    []string
	stdout  bytes.Buffer
	code    int
	mu      sync.Mutex
	running bool
}

// WithArgs adds cli arguments to the suite run.
func (t *E2E) WithArgs(args ...string) *E2E {
	t.args = append(t.args, args...)
	return t
}

// ReportPath returns the path the suite writes its report to.
func (t *E2E) ReportPath() string {
	return filepath.Join(t.dir, "test_report.json")
}

// URL returns the url of the given path on the report api.
func (t *E2E) URL(path string) string {
	return "http://" + t.addr + path
}

// Run runs the suite and serves its report.
// Runs indefinitely until the context is canceled.
func (t *E2E) Run(ctx context.Context) error {
	if t.isRunning() {
		t.t.Fatal("E2E.Run must be called once")
	}
	viper.Reset()

	root := cmd.NewCmdRoot("e2e", &t.code)
	root.AddCommand(cmd.NewCmdServe())
	root.SetOut(&t.stdout)

	root.SetArgs(append([]string{"--report-path", t.ReportPath()}, t.args...))
	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("suite run failed: %w", err)
	}
	t.t.Logf("Suite finished with exit code %d", t.code)

	t.mu.Lock()
	t.running = true
	t.mu.Unlock()

	root.SetArgs([]string{"serve", "--report-path", t.ReportPath(), "--api-address", t.addr})
	return root.ExecuteContext(ctx)
}

// Healthcheck runs the healthcheck command against the served report.
//
// Must be called after [E2E.AwaitStartup].
func (t *E2E) Healthcheck(ctx context.Context) error {
	var code int
	root := cmd.NewCmdRoot("e2e", &code)
	root.AddCommand(cmd.NewCmdHealthcheck())
	root.SetArgs([]string{"healthcheck", "--report-path", t.ReportPath(), "--api-address", t.addr})
	return root.ExecuteContext(ctx)
}

// ExitCode returns the exit code of the suite run.
func (t *E2E) ExitCode() int {
	return t.code
}

// Stdout returns what the suite run printed.
func (t *E2E) Stdout() string {
	return t.stdout.String()
}

// AwaitStartup waits for the provided URL to be ready.
//
// Must be called after the e2e test started with [E2E.Run].
func (t *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	t.t.Helper()
	const retryInterval = 100 * time.Millisecond
	start := time.Now()
	deadline := start.Add(failureTimeout)

	for {
		if t.isRunning() {
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
			if err != nil {
				t.t.Fatalf("Failed to create request: %v", err)
				return t
			}
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					t.t.Logf("%s is ready after %v", u, time.Since(start))
					return t
				}
			}
		}

		if time.Now().After(deadline) {
			t.t.Fatalf("%s is not ready after %v", u, failureTimeout)
			return t
		}
		<-time.After(retryInterval)
	}
}

// isRunning returns true once the report is served.
func (t *E2E) isRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// e2eHttpAsserter is an HTTP asserter for end-to-end tests.
type e2eHttpAsserter struct {
	e2e      *E2E
	url      string
	asserter func(body any) error
	schema   *openapi3.T
	router   routers.Router
}

// HttpAssertion creates a new HTTP assertion for the given URL.
func (t *E2E) HttpAssertion(u string) *e2eHttpAsserter {
	return &e2eHttpAsserter{e2e: t, url: u}
}

// WithBody sets a function validating the decoded JSON response body.
func (a *e2eHttpAsserter) WithBody(fn func(body any) error) *e2eHttpAsserter {
	a.asserter = fn
	return a
}

// Assert asserts the status code and optional validations against the response.
// Optional validations must be set before calling this method.
//
// Must be called after the e2e test started with [E2E.Run].
func (a *e2eHttpAsserter) Assert(status int) {
	a.e2e.t.Helper()
	if !a.e2e.isRunning() {
		a.e2e.t.Fatal("e2eHttpAsserter.Assert must be called after E2E.Run")
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, a.url, http.NoBody)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create request: %v", err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.e2e.t.Errorf("Failed to get %s: %v", a.url, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != status {
		a.e2e.t.Errorf("Want status code %d for %s, got %d", status, a.url, resp.StatusCode)
		return
	}
	a.e2e.t.Logf("Got status code %d for %s", resp.StatusCode, a.url)
	if status != http.StatusOK || (a.schema == nil && a.asserter == nil) {
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.e2e.t.Errorf("Failed to read response body: %v", err)
		return
	}
	var body any
	if err = json.Unmarshal(data, &body); err != nil {
		a.e2e.t.Errorf("Failed to unmarshal response body: %v", err)
		return
	}

	if a.schema != nil && a.router != nil {
		if err = a.assertSchema(req, resp.StatusCode, body); err != nil {
			a.e2e.t.Errorf("Response from %q does not match schema: %v", a.url, err)
			return
		}
	}
	if a.asserter != nil {
		if err = a.asserter(body); err != nil {
			a.e2e.t.Errorf("Failed to assert response: %v", err)
		}
	}
}

// WithSchema fetches the OpenAPI schema and validates the response against it.
func (a *e2eHttpAsserter) WithSchema() *e2eHttpAsserter {
	a.e2e.t.Helper()
	schema, err := a.fetchSchema()
	if err != nil {
		a.e2e.t.Fatalf("Failed to fetch OpenAPI schema: %v", err)
	}

	router, err := gorillamux.NewRouter(schema)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create router from OpenAPI schema: %v", err)
	}

	a.schema = schema
	a.router = router
	return a
}

// fetchSchema fetches the OpenAPI schema from the server.
func (a *e2eHttpAsserter) fetchSchema() (*openapi3.T, error) {
	ctx := context.Background()
	u, err := url.Parse(a.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.Path = "/openapi"
	u.RawPath = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET OpenAPI schema: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI schema: %w", err)
	}

	loader := openapi3.NewLoader()
	schema, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}
	if err = schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI schema validation error: %w", err)
	}
	return schema, nil
}

// assertSchema asserts the response body against the OpenAPI schema.
func (a *e2eHttpAsserter) assertSchema(req *http.Request, status int, body any) error {
	route, _, err := a.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("failed to find route: %w", err)
	}

	responseRef := route.Operation.Responses.Get(status)
	if responseRef == nil || responseRef.Value == nil {
		return fmt.Errorf("no response defined in OpenAPI schema for status code %d", status)
	}
	mediaType := responseRef.Value.Content.Get("application/json")
	if mediaType == nil {
		return errors.New("no media type defined in OpenAPI schema for Content-Type 'application/json'")
	}

	if err = mediaType.Schema.Value.VisitJSON(body); err != nil {
		return fmt.Errorf("response body does not match schema: %w", err)
	}
	return nil
}
