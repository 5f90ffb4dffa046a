package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/caas-team/verdict/pkg/suite"
	"github.com/caas-team/verdict/test"
)

const startupTimeout = 10 * time.Second

func TestE2E_Verdict_RunAndServe(t *testing.T) {
	framework := test.NewFramework(t)
	e2e := framework.E2E(t).WithArgs("--seed", "7", "--workers", "2")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	finish := make(chan error, 1)
	go func() {
		finish <- e2e.Run(ctx)
	}()
	e2e.AwaitStartup(e2e.URL("/"), startupTimeout)

	if e2e.ExitCode() != suite.ExitPassed {
		t.Errorf("Want exit code %d, got %d:\n%s", suite.ExitPassed, e2e.ExitCode(), e2e.Stdout())
	}

	e2e.HttpAssertion(e2e.URL("/v1/report")).WithSchema().WithBody(func(body any) error {
		results, _ := body.(map[string]any)["test_results"].([]any)
		if len(results) != 15 {
			return fmt.Errorf("want 15 results, got %d", len(results))
		}
		return nil
	}).Assert(http.StatusOK)
	e2e.HttpAssertion(e2e.URL("/v1/summary")).WithSchema().WithBody(func(body any) error {
		summary, _ := body.(map[string]any)
		if summary["total_tests"] != float64(15) {
			return fmt.Errorf("want 15 tests, got %v", summary["total_tests"])
		}
		return nil
	}).Assert(http.StatusOK)
	e2e.HttpAssertion(e2e.URL("/v1/results/Physics%20System%20Test")).WithSchema().WithBody(func(body any) error {
		result, _ := body.(map[string]any)
		if result["status"] != "PASS" {
			return fmt.Errorf("want physics to pass, got %v: %v", result["status"], result["message"])
		}
		return nil
	}).Assert(http.StatusOK)
	e2e.HttpAssertion(e2e.URL("/v1/results/unknown")).Assert(http.StatusNotFound)
	e2e.HttpAssertion(e2e.URL("/metrics")).Assert(http.StatusOK)

	if err := e2e.Healthcheck(ctx); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}

	cancel()
	<-finish
}
