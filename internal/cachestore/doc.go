// Package cachestore implements the two-tier filesystem cache: a keyed
// blob store rooted at a single directory, with atomic write-then-rename
// installation and TTL-based sweeping.
//
// A Store knows nothing about what its keys mean; the original and
// processed caches are two Store instances rooted at different
// directories, keyed respectively by source-URL digest and by
// full-request-path digest (internal/pipeline owns that distinction).
package cachestore
