package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncBungieRequests(endpoint string, status int)
	IncPagesFetched()
	IncActivitiesProcessed(outcome string)
	IncDefinitionCacheHits()
	IncDefinitionCacheMisses()
	IncResponseCacheHits()
	IncResponseCacheMisses()
	ObservePersistDuration(duration time.Duration)
	SetQueueDepth(depth int)
}

type MetricsProvider struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	bungieRequests        *prometheus.CounterVec
	pagesFetched          prometheus.Counter
	activitiesProcessed   *prometheus.CounterVec
	definitionCacheHits   prometheus.Counter
	definitionCacheMisses prometheus.Counter
	responseCacheHits     prometheus.Counter
	responseCacheMisses   prometheus.Counter
	persistDuration       prometheus.Histogram
	queueDepth            prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncBungieRequests(endpoint string, status int) {
	m.bungieRequests.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) IncPagesFetched() {
	m.pagesFetched.Inc()
}

func (m *MetricsProvider) IncActivitiesProcessed(outcome string) {
	m.activitiesProcessed.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncDefinitionCacheHits() {
	m.definitionCacheHits.Inc()
}

func (m *MetricsProvider) IncDefinitionCacheMisses() {
	m.definitionCacheMisses.Inc()
}

func (m *MetricsProvider) IncResponseCacheHits() {
	m.responseCacheHits.Inc()
}

func (m *MetricsProvider) IncResponseCacheMisses() {
	m.responseCacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistDuration(duration time.Duration) {
	m.persistDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func httpStatusBucket(code int) string {
	switch {
	case code <= 0:
		// Transport failure, no response at all.
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tr3_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tr3_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		bungieRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tr3_bungie_requests_total",
			Help: "Total number of requests issued against the Bungie API",
		}, []string{"endpoint", "status"}),

		pagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tr3_activity_pages_fetched_total",
			Help: "Total number of activity history pages fetched",
		}),

		activitiesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tr3_activities_processed_total",
			Help: "Activities handled by the ingestion pipeline, by outcome",
		}, []string{"outcome"}),

		definitionCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tr3_definition_cache_hits_total",
			Help: "Activity definition lookups served from the cached manifest table",
		}),

		definitionCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tr3_definition_cache_misses_total",
			Help: "Activity definition lookups that missed the cached manifest table",
		}),

		responseCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tr3_response_cache_hits_total",
			Help: "API responses served from the response cache",
		}),

		responseCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tr3_response_cache_misses_total",
			Help: "API responses that had to be recomputed",
		}),

		persistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tr3_persist_duration_seconds",
			Help:    "Duration of activity persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tr3_player_queue_depth",
			Help: "Players waiting in the process-local ingestion queue",
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncBungieRequests(_ string, _ int)                {}
func (n *noopMetrics) IncPagesFetched()                                 {}
func (n *noopMetrics) IncActivitiesProcessed(_ string)                  {}
func (n *noopMetrics) IncDefinitionCacheHits()                          {}
func (n *noopMetrics) IncDefinitionCacheMisses()                        {}
func (n *noopMetrics) IncResponseCacheHits()                            {}
func (n *noopMetrics) IncResponseCacheMisses()                          {}
func (n *noopMetrics) ObservePersistDuration(_ time.Duration)           {}
func (n *noopMetrics) SetQueueDepth(_ int)                              {}
