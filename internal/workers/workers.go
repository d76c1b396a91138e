package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Effective resolves the worker count for the encode pool.
//
// maxProcesses is the configured limit from config.toml; 0 (or negative)
// means "auto", which uses every available execution unit. Configured
// values above the available count are clamped down. The DARKROOM_WORKERS
// environment variable, when set to a positive integer, takes precedence
// over the configured value but is clamped the same way.
func Effective(maxProcesses int) int {
	// GOMAXPROCS is automatically set to the container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)
	if available < 1 {
		available = 1
	}

	if override := os.Getenv("DARKROOM_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			maxProcesses = count
		}
	}

	if maxProcesses <= 0 || maxProcesses > available {
		return available
	}
	return maxProcesses
}
