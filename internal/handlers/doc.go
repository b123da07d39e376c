// Package handlers implements the HTTP surface around internal/pipeline:
// the /insecure/ transformation route and the operational /healthz
// endpoint, wired together in cmd/mediaproxy against a gorilla/mux
// router.
package handlers
