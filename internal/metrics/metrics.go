// Package metrics exports provmap events as Prometheus metrics.
//
// Install the hooks once at startup and mount [Handler] on /metrics:
//
//	metrics.Install()
//	r.Handle("/metrics", metrics.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/observability"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}

var (
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_dataset_loads_total",
		Help: "Dataset loads by source and result code",
	}, []string{"source", "code"})
	DatasetProvinces = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provmap_dataset_provinces",
		Help: "Provinces in the last successfully loaded dataset",
	})
	DatasetIssues = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provmap_dataset_quarantined_entries",
		Help: "Entries skipped while loading the last dataset",
	})
	FlattenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_flatten_total",
		Help: "Province flattenings by result code",
	}, []string{"code"})
	FlattenDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "provmap_flatten_duration_ms",
		Help:    "Province flattening duration in milliseconds",
		Buckets: durationBuckets,
	})
	RenderedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_rows_total",
		Help: "Rows produced by flattening, by table",
	}, []string{"table"})
	RenderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_render_total",
		Help: "Render runs by result code",
	}, []string{"code"})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "provmap_render_duration_ms",
		Help:    "Render duration in milliseconds",
		Buckets: durationBuckets,
	})
	CacheEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_cache_events_total",
		Help: "Cache hits, misses and sets by key type",
	}, []string{"key_type", "event"})
	CacheBytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provmap_cache_bytes_written_total",
		Help: "Bytes written to the artifact cache",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provmap_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provmap_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetProvinces)
	prometheus.MustRegister(DatasetIssues)
	prometheus.MustRegister(FlattenTotal)
	prometheus.MustRegister(FlattenDurationMs)
	prometheus.MustRegister(RenderedRows)
	prometheus.MustRegister(RenderTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(CacheEventsTotal)
	prometheus.MustRegister(CacheBytesWritten)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPDurationMs)
}

// Handler serves the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }

// Install registers the Prometheus-backed hooks with the observability package.
func Install() {
	observability.SetPipelineHooks(PipelineHooks{})
	observability.SetCacheHooks(CacheHooks{})
	observability.SetServerHooks(ServerHooks{})
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// code labels an outcome: "ok", the error code, or "UNKNOWN" for uncoded errors.
func code(err error) string {
	if err == nil {
		return "ok"
	}
	if c := perrors.GetCode(err); c != "" {
		return string(c)
	}
	return "UNKNOWN"
}

// PipelineHooks implements observability.PipelineHooks.
type PipelineHooks struct{}

func (PipelineHooks) OnLoadComplete(_ context.Context, source string, provinces, issues int, _ time.Duration, err error) {
	DatasetLoadsTotal.WithLabelValues(source, code(err)).Inc()
	if err == nil {
		DatasetProvinces.Set(float64(provinces))
		DatasetIssues.Set(float64(issues))
	}
}

func (PipelineHooks) OnFlattenStart(context.Context, string) {}

func (PipelineHooks) OnFlattenComplete(_ context.Context, _ string, nodes, edges int, d time.Duration, err error) {
	FlattenTotal.WithLabelValues(code(err)).Inc()
	FlattenDurationMs.Observe(ms(d))
	if err == nil {
		RenderedRows.WithLabelValues("nodes").Add(float64(nodes))
		RenderedRows.WithLabelValues("edges").Add(float64(edges))
	}
}

func (PipelineHooks) OnRenderStart(context.Context, string, []string) {}

func (PipelineHooks) OnRenderComplete(_ context.Context, _ string, _ []string, d time.Duration, err error) {
	RenderTotal.WithLabelValues(code(err)).Inc()
	RenderDurationMs.Observe(ms(d))
}

// CacheHooks implements observability.CacheHooks.
type CacheHooks struct{}

func (CacheHooks) OnCacheHit(_ context.Context, keyType string) {
	CacheEventsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (CacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	CacheEventsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (CacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	CacheEventsTotal.WithLabelValues(keyType, "set").Inc()
	CacheBytesWritten.Add(float64(size))
}

// ServerHooks implements observability.ServerHooks.
type ServerHooks struct{}

func (ServerHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDurationMs.WithLabelValues(route).Observe(ms(d))
}

var (
	_ observability.PipelineHooks = PipelineHooks{}
	_ observability.CacheHooks    = CacheHooks{}
	_ observability.ServerHooks   = ServerHooks{}
)
