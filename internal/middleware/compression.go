package middleware

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strings"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression
	// is applied.
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to
	// gzip.BestCompression).
	Level int
	// CompressibleTypes is the list of content types eligible for
	// compression.
	CompressibleTypes []string
}

// DefaultCompressionConfig returns defaults sized for this proxy's only
// compressible surface: JSON error/health bodies and the Prometheus
// text exposition format served at /metrics. Binary image/video
// responses from /insecure are never listed here, since compressing
// already-encoded media wastes CPU for no size benefit.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 256,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// bufferingResponseWriter captures a handler's full response body so
// Compression can decide whether to gzip once the handler is done,
// rather than guessing partway through a stream. Every response on
// this proxy's compressible surface is small enough to hold in memory
// whole.
type bufferingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	buf        bytes.Buffer
}

func (b *bufferingResponseWriter) WriteHeader(statusCode int) {
	b.statusCode = statusCode
}

func (b *bufferingResponseWriter) Write(data []byte) (int, error) {
	return b.buf.Write(data)
}

// Compression returns middleware that gzips small JSON/text responses
// when the client advertises support for it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			bw := &bufferingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(bw, r)

			body := bw.buf.Bytes()
			if !shouldCompress(bw.Header(), body, config) {
				w.WriteHeader(bw.statusCode)
				w.Write(body)
				return
			}

			w.Header().Del("Content-Length")
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			w.WriteHeader(bw.statusCode)

			gz, err := gzip.NewWriterLevel(w, config.Level)
			if err != nil {
				gz = gzip.NewWriter(w)
			}
			gz.Write(body)
			gz.Close()
		})
	}
}

func shouldCompress(header http.Header, body []byte, config CompressionConfig) bool {
	if len(body) < config.MinSize {
		return false
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(header.Get("Content-Type"), ";")[0]))
	for _, compressible := range config.CompressibleTypes {
		if mediaType == compressible {
			return true
		}
	}
	return false
}
