package metrics

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64
	analysisReusedTotal    atomic.Uint64
	queryTotal             atomic.Uint64
	queryCacheHitsTotal    atomic.Uint64

	jobsEnqueuedTotal      atomic.Uint64
	jobsReceivedTotal      atomic.Uint64
	jobsCompletedTotal     atomic.Uint64
	jobsFailedTotal        atomic.Uint64
	jobsUnrecoverableTotal atomic.Uint64

	analysisDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000})
	queryDuration    = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000})
)

// IncAnalysisCompleted counts a document analysed into a new record.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed counts a document whose analysis failed.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// IncAnalysisReused counts an analysis request answered by an existing record.
func IncAnalysisReused() {
	analysisReusedTotal.Add(1)
}

// IncQuery counts a ranked query.
func IncQuery() {
	queryTotal.Add(1)
}

// IncQueryCacheHit counts a query answered from the cache.
func IncQueryCacheHit() {
	queryCacheHitsTotal.Add(1)
}

// IncJobsEnqueued counts analysis jobs pushed to the queue.
func IncJobsEnqueued() {
	jobsEnqueuedTotal.Add(1)
}

// IncJobsReceived counts analysis jobs taken by a worker.
func IncJobsReceived() {
	jobsReceivedTotal.Add(1)
}

func IncJobsCompleted() {
	jobsCompletedTotal.Add(1)
}

func IncJobsFailed() {
	jobsFailedTotal.Add(1)
}

// IncJobsUnrecoverable counts jobs dropped because their payload was unusable.
func IncJobsUnrecoverable() {
	jobsUnrecoverableTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	analysisDuration.Observe(math.Max(value, 0))
}

// ObserveQueryDurationMs records a query duration in milliseconds.
func ObserveQueryDurationMs(value float64) {
	queryDuration.Observe(math.Max(value, 0))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_completed_total", "Total documents analysed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total document analyses failed", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_reused_total", "Total analysis requests served by an existing record", analysisReusedTotal.Load())
	writeCounter(&buf, "query_total", "Total ranked queries", queryTotal.Load())
	writeCounter(&buf, "query_cache_hits_total", "Total ranked queries served from cache", queryCacheHitsTotal.Load())
	writeCounter(&buf, "analysis_jobs_enqueued_total", "Total analysis jobs enqueued", jobsEnqueuedTotal.Load())
	writeCounter(&buf, "analysis_jobs_received_total", "Total analysis jobs received by workers", jobsReceivedTotal.Load())
	writeCounter(&buf, "analysis_jobs_completed_total", "Total analysis jobs completed", jobsCompletedTotal.Load())
	writeCounter(&buf, "analysis_jobs_failed_total", "Total analysis jobs failed", jobsFailedTotal.Load())
	writeCounter(&buf, "analysis_jobs_unrecoverable_total", "Total analysis jobs dropped as unreadable", jobsUnrecoverableTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	writeHistogram(&buf, "query_duration_ms", "Query duration in milliseconds", queryDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the time elapsed since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
