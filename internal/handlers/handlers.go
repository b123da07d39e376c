package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
	"github.com/flox1an/nostube-imgproxy/internal/logging"
	"github.com/flox1an/nostube-imgproxy/internal/pipeline"
)

// orchestrator is the pipeline.Orchestrator contract this package needs.
type orchestrator interface {
	Serve(ctx context.Context, pathSuffix string) (*pipeline.Result, error)
}

// Handlers holds the collaborators the HTTP layer dispatches into.
type Handlers struct {
	pipeline orchestrator
}

// New returns a Handlers wired against pipeline.
func New(pipeline orchestrator) *Handlers {
	return &Handlers{pipeline: pipeline}
}

// ServeMedia handles GET /insecure/{directives:.*}, the single core route
// of this proxy. The directive/source-url path suffix is handed to the
// pipeline orchestrator verbatim; the result's cache status is surfaced
// as an X-Cache response header for observability.
func (h *Handlers) ServeMedia(w http.ResponseWriter, r *http.Request) {
	pathSuffix := mux.Vars(r)["directives"]

	result, err := h.pipeline.Serve(r.Context(), pathSuffix)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-Cache", string(result.Cache))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		logging.Error("handlers: write response body failed: %v", err)
	}
}

// writeError maps a classified pipeline error onto its HTTP status and a
// caller-safe JSON body. Unclassified errors are treated as Internal,
// matching apperr.KindOf's fallback.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	logging.Warn("handlers: request failed: kind=%s status=%d err=%v", kind, status, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, map[string]string{
		"error": errorMessage(err),
		"kind":  kind.String(),
	})
}

// errorMessage returns the classified error's caller-safe message when
// available, falling back to a generic message for unclassified errors
// so internal details are never leaked to the response body.
func errorMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
