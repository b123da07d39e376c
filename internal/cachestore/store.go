package cachestore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
	"github.com/flox1an/nostube-imgproxy/internal/logging"
)

// Store is a single keyed blob store on disk, rooted at dir, with
// write-temp-then-rename installation and TTL-based eviction.
type Store struct {
	dir string
	ttl time.Duration
}

// New creates (if necessary) the store directory and returns a Store
// rooted there with the given entry TTL.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create cache directory", err)
	}
	return &Store{dir: dir, ttl: ttl}, nil
}

// Key returns the SHA-256 hex digest of input, used to name cache entries.
func Key(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(key, ext string) string {
	return filepath.Join(s.dir, key+ext)
}

// Lookup reads the entry for key (with optional extension, pass "" for
// none). It returns ok == false if the entry is absent or has expired;
// an expired entry encountered here is opportunistically removed, but a
// failure to remove it is not an error — the next sweep will catch it.
func (s *Store) Lookup(key, ext string) (data []byte, ok bool, err error) {
	p := s.path(key, ext)

	info, statErr := os.Stat(p)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, false, nil
		}
		logging.Warn("cachestore: stat %s failed: %v", p, statErr)
		return nil, false, nil
	}

	if s.expired(info.ModTime()) {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Debug("cachestore: opportunistic eviction of %s failed: %v", p, err)
		}
		return nil, false, nil
	}

	data, err = os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, apperr.Wrap(apperr.Internal, "read cache entry", err)
	}
	return data, true, nil
}

// Install atomically writes data under key (with optional extension).
// It writes to a process-unique temporary name in the same directory
// and renames it onto the final name, so concurrent readers never
// observe a partial file. Concurrent installs of the same key race
// harmlessly: both complete, and the last rename wins.
func (s *Store) Install(key, ext string, data []byte) error {
	final := s.path(key, ext)

	tmp, err := s.writeTemp(key, data)
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return apperr.Wrap(apperr.Internal, "install cache entry", err)
	}
	return nil
}

func (s *Store) writeTemp(key string, data []byte) (string, error) {
	tmp := s.path(key, ".tmp-"+tempToken())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "create temp cache file", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", apperr.Wrap(apperr.Internal, "write temp cache file", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", apperr.Wrap(apperr.Internal, "close temp cache file", err)
	}

	return tmp, nil
}

// Sweep removes every regular file in the store older than the TTL. It
// tolerates files disappearing concurrently (from Lookup's opportunistic
// eviction or a racing Sweep) and does not abort on a single stat/remove
// failure.
func (s *Store) Sweep() (removed int, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "read cache directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Debug("cachestore: sweep stat %s failed: %v", entry.Name(), err)
			continue
		}

		if !s.expired(info.ModTime()) {
			continue
		}

		p := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn("cachestore: sweep remove %s failed: %v", p, err)
			continue
		}
		removed++
	}

	return removed, nil
}

func (s *Store) expired(mtime time.Time) bool {
	return time.Since(mtime) > s.ttl
}

func tempToken() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}
