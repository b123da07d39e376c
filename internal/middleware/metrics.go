package middleware

import (
	"net/http"
	"strings"

	"github.com/flox1an/nostube-imgproxy/internal/metrics"
)

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/healthz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for certain paths
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			finish := metrics.HTTPRequestStarted(r.Method, normalizePath(r.URL.Path))

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			finish(wrapped.statusCode)
		})
	}
}

// normalizePath collapses the variable directive/source-url segments of
// an /insecure/ request into a fixed route label to avoid a distinct
// metrics series per request.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/insecure/") {
		return "/insecure/{directives}"
	}
	return path
}
