// Command mediaproxy wires the transformation pipeline to an HTTP
// listener: configuration, cache stores, fetcher, frame extractor, the
// /insecure/ and /healthz routes, the middleware chain, a background
// janitor, and graceful shutdown.
package main
