package test

import (
	"context"
	"testing"
)

// Runner is a test runner.
type Runner interface {
	// Run runs the test.
	Run(ctx context.Context) error
}

// Framework is a test framework.
// It provides a way to run various tests.
type Framework struct {
	t *testing.T
}

// NewFramework creates a new test framework.
func NewFramework(t *testing.T) *Framework {
	t.Helper()
	return &Framework{t: t}
}

// E2E creates a new end-to-end test running the verdict binary's commands in process.
// If the test is run in short mode, it will be skipped.
func (f *Framework) E2E(t *testing.T) *E2E {
	MarkAsLong(f.t)
	return &E2E{
		t:    t,
		dir:  t.TempDir(),
		addr: defaultAddress,
		code: -1,
	}
}
