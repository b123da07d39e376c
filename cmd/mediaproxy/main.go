package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/flox1an/nostube-imgproxy/internal/buildinfo"
	"github.com/flox1an/nostube-imgproxy/internal/cachestore"
	"github.com/flox1an/nostube-imgproxy/internal/config"
	"github.com/flox1an/nostube-imgproxy/internal/fetcher"
	"github.com/flox1an/nostube-imgproxy/internal/frameextract"
	"github.com/flox1an/nostube-imgproxy/internal/handlers"
	"github.com/flox1an/nostube-imgproxy/internal/logging"
	"github.com/flox1an/nostube-imgproxy/internal/memlimit"
	"github.com/flox1an/nostube-imgproxy/internal/metrics"
	"github.com/flox1an/nostube-imgproxy/internal/middleware"
	"github.com/flox1an/nostube-imgproxy/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// janitorInterval is the fixed sweep period for both cache stores.
const janitorInterval = 60 * time.Second

func main() {
	startTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal("configuration error: %v", err)
	}

	memlimit.ConfigureFromEnv()

	info := buildinfo.Get()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)

	original, err := cachestore.New(cfg.OriginalCacheDir, cfg.CacheTTL)
	if err != nil {
		logging.Fatal("failed to initialize original cache store: %v", err)
	}
	processed, err := cachestore.New(cfg.ProcessedCacheDir, cfg.CacheTTL)
	if err != nil {
		logging.Fatal("failed to initialize processed cache store: %v", err)
	}

	fetch := fetcher.New(cfg.FetchTimeout, cfg.MaxImageBytes)
	extractor := frameextract.New(fetch, cfg.MaxFFmpegJobs)

	orch := pipeline.New(original, processed, fetch, extractor, metrics.NewPipeline())
	h := handlers.New(orch)

	router := setupRouter(h, cfg.MetricsEnabled)
	logRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggedHandler := middleware.Logger(loggingConfig)(router)

	metricsConfig := middleware.DefaultMetricsConfig()
	observedHandler := middleware.Metrics(metricsConfig)(loggedHandler)

	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(observedHandler)

	srv := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go runJanitor(janitorCtx, original, processed)

	go handleShutdown(srv, stopJanitor)

	logging.Info("server starting on %s (startup took %v)", cfg.BindAddr, time.Since(startTime))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Fatal("server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/insecure/{directives:.*}", h.ServeMedia).Methods(http.MethodGet)

	return r
}

// runJanitor sweeps both cache stores on a fixed interval, per spec.md
// §4.7, reporting each sweep's eviction count to the metrics collector.
func runJanitor(ctx context.Context, original, processed *cachestore.Store) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepStore("original", original)
			sweepStore("processed", processed)
		}
	}
}

func sweepStore(name string, store *cachestore.Store) {
	removed, err := store.Sweep()
	if err != nil {
		logging.Warn("janitor: sweep of %s cache failed: %v", name, err)
		return
	}
	metrics.JanitorSweep(name, removed)
	if removed > 0 {
		logging.Debug("janitor: removed %d expired entries from %s cache", removed, name)
	}
}

func handleShutdown(srv *http.Server, stopJanitor context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("shutdown initiated: signal=%s", sig.String())

	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("server shutdown error: %v", err)
	} else {
		logging.Info("server stopped cleanly")
	}
}
