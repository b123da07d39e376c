package frameextract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// extractPermitsInUse reads the current value of the package-level
// imgproxy_extract_permits_in_use gauge straight from the default
// registry, since it's only reachable through internal/metrics's
// package-level setter, not a value Extractor exposes directly.
func extractPermitsInUse(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "imgproxy_extract_permits_in_use" {
			continue
		}
		metrics := mf.GetMetric()
		if len(metrics) != 1 {
			t.Fatalf("expected exactly one imgproxy_extract_permits_in_use metric, got %d", len(metrics))
		}
		return metrics[0].GetGauge().GetValue()
	}
	t.Fatal("imgproxy_extract_permits_in_use metric not found")
	return 0
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, f.err
}

// withMockFFmpeg installs a shell script named ffmpeg on PATH for the
// duration of the test, so subprocess invocations can be exercised
// without a real ffmpeg binary.
func withMockFFmpeg(t *testing.T, script string) {
	t.Helper()
	tmpDir := t.TempDir()
	mock := filepath.Join(tmpDir, "ffmpeg")
	if err := os.WriteFile(mock, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write mock ffmpeg: %v", err)
	}

	oldPath := os.Getenv("PATH")
	t.Cleanup(func() { os.Setenv("PATH", oldPath) })
	os.Setenv("PATH", tmpDir+":"+oldPath)
}

func TestExtractSuccess(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\nprintf 'webpbytes'\n")

	e := New(fakeFetcher{data: []byte("video")}, 4)
	out, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(out) != "webpbytes" {
		t.Errorf("Extract() = %q, want %q", out, "webpbytes")
	}
}

func TestExtractFetchFailurePropagates(t *testing.T) {
	wantErr := errors.New("boom")
	e := New(fakeFetcher{err: wantErr}, 4)
	_, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Extract() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestExtractFFmpegFailure(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\necho failure >&2\nexit 1\n")

	e := New(fakeFetcher{data: []byte("video")}, 4)
	_, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
	if err == nil {
		t.Fatal("Extract() expected error, got nil")
	}
}

func TestExtractFFmpegEmptyOutput(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\nexit 0\n")

	e := New(fakeFetcher{data: []byte("video")}, 4)
	_, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
	if err == nil {
		t.Fatal("Extract() expected error for empty output, got nil")
	}
}

func TestExtractReleasesPermitGaugeAfterCompletion(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\nprintf 'webpbytes'\n")

	e := New(fakeFetcher{data: []byte("video")}, 2)
	if _, err := e.Extract(context.Background(), "https://example.com/clip.mp4"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := extractPermitsInUse(t); got != 0 {
		t.Errorf("permits in use after completion = %v, want 0", got)
	}
}

func TestExtractPermitBoundsConcurrency(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\nprintf 'webpbytes'\n")

	e := New(fakeFetcher{data: []byte("video")}, 2)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Errorf("Extract() error = %v", err)
		}
	}
}

func TestExtractPermitGaugeTracksConcurrentHolders(t *testing.T) {
	withMockFFmpeg(t, "#!/bin/sh\nsleep 0.2\nprintf 'webpbytes'\n")

	e := New(fakeFetcher{data: []byte("video")}, 2)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := e.Extract(context.Background(), "https://example.com/clip.mp4")
			done <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for extractPermitsInUse(t) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := extractPermitsInUse(t); got != 2 {
		t.Errorf("permits in use while both extractions run = %v, want 2", got)
	}

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Errorf("Extract() error = %v", err)
		}
	}
	if got := extractPermitsInUse(t); got != 0 {
		t.Errorf("permits in use after both complete = %v, want 0", got)
	}
}
