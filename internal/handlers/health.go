package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/buildinfo"
)

const statusHealthy = "healthy"

var startTime = time.Now()

// HealthResponse is the JSON body returned by HealthCheck.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Uptime       string `json:"uptime"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports process liveness and build information. There is
// no readiness phase that holds traffic back: once the process is
// serving requests it is healthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()

	response := HealthResponse{
		Status:       statusHealthy,
		Version:      info.Version,
		Commit:       info.Commit,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}
