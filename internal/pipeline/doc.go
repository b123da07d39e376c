// Package pipeline wires the directive parser, cache store, fetcher,
// frame extractor, and transformer into the end-to-end request flow
// described in the component design's Pipeline Orchestrator: parse,
// processed lookup (keyed by the canonical rendered path, not the raw
// request path), original lookup, fetch-or-extract, transform, install,
// serve.
package pipeline
