package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgproxy_cache_lookups_total",
		Help: "Total cache lookups by store and result.",
	}, []string{"store", "result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imgproxy_fetch_duration_seconds",
		Help:    "Duration of origin fetches via the Fetcher.",
		Buckets: prometheus.DefBuckets,
	})

	extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imgproxy_extract_duration_seconds",
		Help:    "Duration of video frame extraction, including the ffmpeg subprocess.",
		Buckets: prometheus.DefBuckets,
	})

	transformDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imgproxy_transform_duration_seconds",
		Help:    "Duration of decode+resize+encode for a single request.",
		Buckets: prometheus.DefBuckets,
	})

	janitorSweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgproxy_janitor_sweeps_total",
		Help: "Total janitor sweep runs by store.",
	}, []string{"store"})

	janitorEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgproxy_janitor_evictions_total",
		Help: "Total cache entries removed by the janitor, by store.",
	}, []string{"store"})

	extractPermitsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "imgproxy_extract_permits_in_use",
		Help: "Current number of ffmpeg extraction permits held.",
	})

	appInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "imgproxy_app_info",
		Help: "Static build information; value is always 1, labels carry version/commit.",
	}, []string{"version", "commit", "go_version"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgproxy_http_requests_total",
		Help: "Total HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imgproxy_http_request_duration_seconds",
		Help:    "Duration of HTTP requests by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "imgproxy_http_requests_in_flight",
		Help: "Current number of HTTP requests being served.",
	})
)

// Noop implements the pipeline.Metrics contract with methods that do
// nothing, so callers that don't want metrics never have to guard a nil
// interface themselves.
type Noop struct{}

func (Noop) CacheLookup(store string, hit bool) {}
func (Noop) FetchDuration(d time.Duration)      {}
func (Noop) ExtractDuration(d time.Duration)    {}
func (Noop) TransformDuration(d time.Duration)  {}

// Pipeline adapts the package-level collectors to the pipeline.Metrics
// contract so the orchestrator never imports prometheus directly.
type Pipeline struct{}

// NewPipeline returns a Pipeline metrics recorder.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (*Pipeline) CacheLookup(store string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(store, result).Inc()
}

func (*Pipeline) FetchDuration(d time.Duration) {
	fetchDuration.Observe(d.Seconds())
}

func (*Pipeline) ExtractDuration(d time.Duration) {
	extractDuration.Observe(d.Seconds())
}

func (*Pipeline) TransformDuration(d time.Duration) {
	transformDuration.Observe(d.Seconds())
}

// JanitorSweep records one completed sweep of store, which removed n
// expired entries.
func JanitorSweep(store string, n int) {
	janitorSweepsTotal.WithLabelValues(store).Inc()
	if n > 0 {
		janitorEvictionsTotal.WithLabelValues(store).Add(float64(n))
	}
}

// ExtractPermitsInUse sets the current number of held extraction
// permits, for gauging saturation of MAX_FFMPEG_CONCURRENT.
func ExtractPermitsInUse(n int) {
	extractPermitsInUse.Set(float64(n))
}

// SetAppInfo records build metadata as gauge labels: a constant-1
// gauge carrying version strings as labels rather than as the metric
// value itself.
func SetAppInfo(version, commit, goVersion string) {
	appInfo.Reset()
	appInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// HTTPRequestStarted increments the in-flight request gauge and
// returns a func that records the completed request's outcome.
func HTTPRequestStarted(method, route string) (finish func(statusCode int)) {
	httpRequestsInFlight.Inc()
	start := time.Now()
	return func(statusCode int) {
		httpRequestsInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
