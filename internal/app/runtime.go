package app

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether binaries should skip network side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	testModeOnce.Do(func() {})
	detectTestMode()
}

// SkipStartup logs and reports true when component must not start because
// test mode is active.
func SkipStartup(component string) bool {
	if !InTestMode() {
		return false
	}
	slog.Default().Info("test mode detected, skipping startup", slog.String("component", component))
	return true
}
