package sqlite

import (
	"runtime"
)

// suggestConnectionCount returns the read-only pool size: the CPU count clamped to 2..4.
// Chunked databases open one pool per chunk, so the ceiling stays low.
func suggestConnectionCount() int {
	cpuCount := runtime.NumCPU()
	switch {
	case cpuCount < 2:
		return 2
	case cpuCount > 4:
		return 4
	default:
		return cpuCount
	}
}
