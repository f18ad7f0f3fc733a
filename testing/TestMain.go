// Package testing is blank-imported by every test package. It flags the process
// as a test run and points Redis at an unreachable address so liasse caching
// stays disabled unless a test wires miniredis itself.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var setup sync.Once

func markTestRun() {
	setup.Do(func() {
		_ = os.Setenv("LMNP_TEST_MODE", "1")
		if os.Getenv("REDIS_ADDR") == "" {
			_ = os.Setenv("REDIS_ADDR", "127.0.0.1:0")
		}
	})
}

func init() {
	markTestRun()
}

// TestMain applies the test run environment before m runs.
func TestMain(m *stdtesting.M) {
	markTestRun()
	os.Exit(m.Run())
}
