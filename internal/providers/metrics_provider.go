package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"emd/internal/services"
	"emd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveFlushDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	flushDuration       prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveFlushDuration(duration time.Duration) {
	m.flushDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
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

func NewMetricsProvider(conf *structures.Config, service services.MetricsServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "emd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "emd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "emd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "emd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		flushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "emd_flush_duration_seconds",
			Help:    "Duration of ingestion flushes in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "emd_pending_events",
		Help: "Events buffered and waiting for the next flush",
	}, func() float64 {
		return float64(service.PendingCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "emd_users_total",
		Help: "User buckets currently in the store",
	}, func() float64 {
		return float64(service.UserCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "emd_posts_total",
		Help: "Posts currently in the store",
	}, func() float64 {
		return float64(service.PostCount())
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_events_received_total",
		Help: "Snapshot events accepted into the ingestion queue",
	}, func() float64 {
		return float64(service.Stats().EventsReceived)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_events_dropped_total",
		Help: "Snapshot events dropped as unusable or over capacity",
	}, func() float64 {
		return float64(service.Stats().EventsDropped)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_snapshots_appended_total",
		Help: "Snapshots appended to posts after dedup",
	}, func() float64 {
		return float64(service.Stats().SnapshotsAppended)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_follower_samples_total",
		Help: "Follower samples appended after dedup",
	}, func() float64 {
		return float64(service.Stats().FollowerSamples)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_posts_moved_total",
		Help: "Posts moved between user buckets by reconciliation",
	}, func() float64 {
		return float64(service.Stats().PostsMoved)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_posts_reclaimed_total",
		Help: "Posts reclaimed from the unknown bucket by reconciliation",
	}, func() float64 {
		return float64(service.Stats().PostsReclaimed)
	})

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "emd_posts_pruned_total",
		Help: "Empty posts removed by reconciliation",
	}, func() float64 {
		return float64(service.Stats().PostsPruned)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveFlushDuration(_ time.Duration)             {}
