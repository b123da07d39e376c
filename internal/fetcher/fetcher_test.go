package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := New(time.Second, 1024)
	data, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch() data = %q, want %q", data, "payload")
	}
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(time.Second, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	if apperr.KindOf(err) != apperr.Upstream {
		t.Fatalf("Fetch() error kind = %v, want Upstream", apperr.KindOf(err))
	}
}

func TestFetchContentLengthTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2000")
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	f := New(time.Second, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	if apperr.KindOf(err) != apperr.TooLarge {
		t.Fatalf("Fetch() error kind = %v, want TooLarge", apperr.KindOf(err))
	}
}

func TestFetchStreamedTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Del("Content-Length")
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 20; i++ {
			w.Write([]byte(strings.Repeat("x", 200)))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	f := New(time.Second, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	if apperr.KindOf(err) != apperr.TooLarge {
		t.Fatalf("Fetch() error kind = %v, want TooLarge", apperr.KindOf(err))
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("too slow"))
	}))
	defer srv.Close()

	f := New(5*time.Millisecond, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	if apperr.KindOf(err) != apperr.Timeout {
		t.Fatalf("Fetch() error kind = %v, want Timeout", apperr.KindOf(err))
	}
}
