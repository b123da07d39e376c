package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
)

// Fetcher performs bounded HTTP GETs against source media URLs.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// New returns a Fetcher enforcing the given total request timeout and
// maximum response body size.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{},
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

// Fetch retrieves url, enforcing the configured timeout and size cap.
// A response whose declared Content-Length exceeds the cap is rejected
// without reading the body; a response with no declared length is
// streamed and aborted once the cap is crossed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "build fetch request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.Timeout, "fetch timed out", err)
		}
		return nil, apperr.Wrap(apperr.Upstream, "fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.New(apperr.Upstream, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}

	if resp.ContentLength > 0 && resp.ContentLength > f.maxBytes {
		return nil, apperr.New(apperr.TooLarge, "source exceeds maximum size")
	}

	limited := io.LimitReader(resp.Body, f.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.Timeout, "fetch timed out", err)
		}
		return nil, apperr.Wrap(apperr.Upstream, "fetch read failed", err)
	}

	if int64(len(data)) > f.maxBytes {
		return nil, apperr.New(apperr.TooLarge, "source exceeds maximum size")
	}

	return data, nil
}
