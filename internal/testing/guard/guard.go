// Package guard switches binaries into test mode when blank-imported from
// tests, so main() returns before dialing the ERP or Redis.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

var defaults = map[string]string{
	"ODYSSEY_TEST_MODE": "1",
	"FRAPPE_URL":        "http://127.0.0.1:0",
	"GOTENBERG_URL":     "http://127.0.0.1:0",
	"REDIS_ADDR":        "127.0.0.1:0",
}

func init() {
	once.Do(func() {
		for key, value := range defaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}
