// Package buildinfo holds version metadata injected at link time via
// -ldflags and exposes it for the healthz endpoint and the app-info metric.
package buildinfo
