package memlimit

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/flox1an/nostube-imgproxy/internal/logging"
)

// DefaultRatio is the fraction of the container memory limit reserved
// for the Go heap. The rest is left for libvips image buffers and
// ffmpeg subprocess memory, neither of which is tracked by the Go
// runtime's limiter.
const DefaultRatio = 0.70

const (
	sourceGOMEMLIMIT  = "GOMEMLIMIT"
	sourceMEMORYLIMIT = "MEMORY_LIMIT"
	sourceNone        = "none"
)

// Result reports how the memory limit was configured.
type Result struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from the container memory limit.
// Call this early in main, before any significant allocation.
//
// Environment variables:
//   - GOMEMLIMIT: if set, takes precedence (standard Go runtime var).
//   - MEMORY_LIMIT: container memory limit in bytes (e.g. from the
//     Kubernetes Downward API).
//   - MEMORY_RATIO: fraction of MEMORY_LIMIT to reserve for the Go
//     heap, default DefaultRatio.
func ConfigureFromEnv() Result {
	result := Result{}

	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = sourceGOMEMLIMIT
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		result.Source = sourceNone
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil {
		logging.Warn("failed to parse MEMORY_LIMIT %q: %v", memLimitStr, err)
		result.Source = sourceNone
		return result
	}
	result.ContainerLimit = memLimit

	ratio := DefaultRatio
	if ratioStr := os.Getenv("MEMORY_RATIO"); ratioStr != "" {
		if parsed, err := strconv.ParseFloat(ratioStr, 64); err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("MEMORY_RATIO %q invalid, using default %.2f", ratioStr, DefaultRatio)
		}
	}
	result.Ratio = ratio

	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = sourceMEMORYLIMIT
	result.GoMemLimit = goMemLimit

	logging.Info("configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		formatBytes(goMemLimit), ratio*100, formatBytes(memLimit))

	return result
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
