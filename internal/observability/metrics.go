package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricBytesFetched   = "pulith.fetch.bytes"
	metricRetriesTotal   = "pulith.fetch.retries.total"
	metricCacheHits      = "pulith.cache.hits.total"
	metricCacheMisses    = "pulith.cache.misses.total"
	metricInstallSeconds = "pulith.install.duration.seconds"

	attrSource = "source"
	attrPhase  = "phase"
)

// installBucketBoundaries covers 10ms to 5 minutes: fast shim-only
// installs through large toolchain extractions.
var installBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// PipelineMetrics holds the OTel instruments recorded across a fetch →
// extract → install run.
type PipelineMetrics struct {
	bytesFetched   metric.Int64Counter
	retriesTotal   metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	installSeconds metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline's instruments from the given
// meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		bytesFetched:   b.counter(metricBytesFetched, "Bytes downloaded by the fetcher", "By"),
		retriesTotal:   b.counter(metricRetriesTotal, "Fetch attempts retried after failure", "{retry}"),
		cacheHits:      b.counter(metricCacheHits, "Conditional cache hits", "{hit}"),
		cacheMisses:    b.counter(metricCacheMisses, "Conditional cache misses", "{miss}"),
		installSeconds: b.histogram(metricInstallSeconds, "Install pipeline duration in seconds", "s", installBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordBytesFetched records bytes downloaded from the given source.
func (pm *PipelineMetrics) RecordBytesFetched(ctx context.Context, source string, n int64) {
	pm.bytesFetched.Add(ctx, n, metric.WithAttributes(attribute.String(attrSource, source)))
}

// RecordRetry records one retried fetch attempt.
func (pm *PipelineMetrics) RecordRetry(ctx context.Context, source string) {
	pm.retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrSource, source)))
}

// RecordCacheHit records a conditional cache hit or miss.
func (pm *PipelineMetrics) RecordCacheHit(ctx context.Context, hit bool) {
	if hit {
		pm.cacheHits.Add(ctx, 1)
		return
	}

	pm.cacheMisses.Add(ctx, 1)
}

// RecordInstallDuration records one install pipeline run's wall time.
func (pm *PipelineMetrics) RecordInstallDuration(ctx context.Context, phase string, d time.Duration) {
	pm.installSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrPhase, phase)))
}
