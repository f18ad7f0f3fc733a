package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// testModeEnv is exported by the root testing package for every test binary.
const testModeEnv = "LMNP_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode is true under go test. Entrypoints then return before connecting to
// anything, and the router drops request logging.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads LMNP_TEST_MODE, for tests that toggle it with t.Setenv.
func RefreshTestMode() {
	detectTestMode()
}
