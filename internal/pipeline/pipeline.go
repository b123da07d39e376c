package pipeline

import (
	"context"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/cachestore"
	"github.com/flox1an/nostube-imgproxy/internal/directive"
	"github.com/flox1an/nostube-imgproxy/internal/logging"
	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
	"github.com/flox1an/nostube-imgproxy/internal/metrics"
	"github.com/flox1an/nostube-imgproxy/internal/transform"
	"github.com/flox1an/nostube-imgproxy/internal/workers"
)

// CacheStatus reports whether a Result was served from the processed
// cache or freshly computed.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
)

// Result is what a served request returns to the HTTP collaborator.
type Result struct {
	Data        []byte
	ContentType string
	Cache       CacheStatus
}

// sourceFetcher is the Fetcher contract the orchestrator needs.
type sourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// frameExtractor is the Frame Extractor contract the orchestrator needs.
type frameExtractor interface {
	Extract(ctx context.Context, sourceURL string) ([]byte, error)
}

// Metrics receives pipeline-internal observations. A nil Metrics passed
// to New is valid; New substitutes metrics.Noop so every method call
// inside the orchestrator is unconditionally safe to make.
type Metrics interface {
	CacheLookup(store string, hit bool)
	FetchDuration(d time.Duration)
	ExtractDuration(d time.Duration)
	TransformDuration(d time.Duration)
}

// Orchestrator implements the end-to-end request flow in section 4.6 of
// the component design: parse, processed lookup, original lookup,
// fetch-or-extract, install, transform, install, serve.
type Orchestrator struct {
	original     *cachestore.Store
	processed    *cachestore.Store
	fetcher      sourceFetcher
	extractor    frameExtractor
	metrics      Metrics
	transformSem chan struct{}
}

// New returns an Orchestrator over the given original/processed stores,
// fetcher, and frame extractor. metrics may be nil.
//
// Decode/resize/encode is CPU-bound, so it is dispatched through a
// transformSem sized by workers.ForCPU rather than left to run with
// unbounded fan-out: one concurrent transform per available CPU keeps
// request goroutines from stampeding the scheduler under load.
func New(original, processed *cachestore.Store, fetcher sourceFetcher, extractor frameExtractor, m Metrics) *Orchestrator {
	if m == nil {
		m = metrics.Noop{}
	}
	return &Orchestrator{
		original:     original,
		processed:    processed,
		fetcher:      fetcher,
		extractor:    extractor,
		metrics:      m,
		transformSem: make(chan struct{}, workers.ForCPU(0)),
	}
}

// Serve runs the full pipeline for the path suffix following the fixed
// "/insecure/" prefix.
func (o *Orchestrator) Serve(ctx context.Context, pathSuffix string) (*Result, error) {
	req, err := directive.Parse(pathSuffix)
	if err != nil {
		return nil, err
	}

	canonical := directive.Render(*req)
	processedKey := cachestore.Key(canonical)
	ext := req.Format.Ext()

	if data, ok, err := o.processed.Lookup(processedKey, ext); err != nil {
		return nil, err
	} else if ok {
		o.observeLookup("processed", true)
		return &Result{Data: data, ContentType: req.Format.ContentType(), Cache: CacheHit}, nil
	}
	o.observeLookup("processed", false)

	originalBytes, err := o.loadOriginal(ctx, *req)
	if err != nil {
		return nil, err
	}

	outBytes, err := o.runTransform(ctx, *req, originalBytes)
	if err != nil {
		return nil, err
	}

	if err := o.processed.Install(processedKey, ext, outBytes); err != nil {
		logging.Warn("pipeline: install processed entry failed: %v", err)
	}

	return &Result{Data: outBytes, ContentType: req.Format.ContentType(), Cache: CacheMiss}, nil
}

// loadOriginal returns the raw still-image bytes for req.SourceURL,
// consulting the original cache first and, on miss, fetching or
// extracting and installing the result.
func (o *Orchestrator) loadOriginal(ctx context.Context, req directive.Request) ([]byte, error) {
	originalKey := cachestore.Key(req.SourceURL)

	if data, ok, err := o.original.Lookup(originalKey, ""); err != nil {
		return nil, err
	} else if ok {
		o.observeLookup("original", true)
		return data, nil
	}
	o.observeLookup("original", false)

	data, err := o.acquireOriginal(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}

	if err := o.original.Install(originalKey, "", data); err != nil {
		logging.Warn("pipeline: install original entry failed: %v", err)
	}

	return data, nil
}

func (o *Orchestrator) acquireOriginal(ctx context.Context, sourceURL string) ([]byte, error) {
	start := time.Now()
	if mediatypes.IsVideoURL(sourceURL) {
		data, err := o.extractor.Extract(ctx, sourceURL)
		o.observeDuration(o.metrics.ExtractDuration, start)
		return data, err
	}
	data, err := o.fetcher.Fetch(ctx, sourceURL)
	o.observeDuration(o.metrics.FetchDuration, start)
	return data, err
}

func (o *Orchestrator) runTransform(ctx context.Context, req directive.Request, originalBytes []byte) ([]byte, error) {
	select {
	case o.transformSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-o.transformSem }()

	start := time.Now()
	out, err := transform.Transform(originalBytes, req)
	o.observeDuration(o.metrics.TransformDuration, start)
	return out, err
}

func (o *Orchestrator) observeLookup(store string, hit bool) {
	o.metrics.CacheLookup(store, hit)
}

func (o *Orchestrator) observeDuration(record func(time.Duration), start time.Time) {
	record(time.Since(start))
}
