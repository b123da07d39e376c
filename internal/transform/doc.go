// Package transform implements the decode -> resize-geometry ->
// resample -> encode pipeline stage. It has no knowledge of caching,
// fetching, or request parsing; it takes source image bytes and a
// directive.Request and returns encoded output bytes.
package transform
