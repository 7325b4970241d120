package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"emd/internal/models"
	"emd/internal/services"
	"emd/internal/structures"
)

// --- minimal mock for MetricsServiceInterface ---

type metricsTestService struct{}

func (m *metricsTestService) AddEvent(_ *models.SnapshotEvent)                        {}
func (m *metricsTestService) AddEvents(_ []*models.SnapshotEvent)                     {}
func (m *metricsTestService) Flush() services.FlushStats                              { return services.FlushStats{} }
func (m *metricsTestService) PendingCount() int                                       { return 5 }
func (m *metricsTestService) Reconcile(_ string) services.ReconcileReport             { return services.ReconcileReport{} }
func (m *metricsTestService) GetUser(_ string) (*models.User, bool)                   { return nil, false }
func (m *metricsTestService) GetUserKeys() []string                                   { return nil }
func (m *metricsTestService) UserCount() int                                          { return 2 }
func (m *metricsTestService) PostCount() int                                          { return 7 }
func (m *metricsTestService) GetState() *models.State                                 { return nil }
func (m *metricsTestService) PutState(_ *models.State)                                {}
func (m *metricsTestService) LastUserKey() string                                     { return "" }
func (m *metricsTestService) SetLastUserKey(_ string)                                 {}
func (m *metricsTestService) Visibility(_ string) ([]string, bool)                    { return nil, false }
func (m *metricsTestService) SetVisibility(_ string, _ []string)                      {}
func (m *metricsTestService) ZoomState(_ string) (map[string]models.ZoomRange, bool)  { return nil, false }
func (m *metricsTestService) SetZoomState(_ string, _ map[string]models.ZoomRange)    {}
func (m *metricsTestService) Override() (models.DurationOverride, bool)               { return models.DurationOverride{}, false }
func (m *metricsTestService) SetOverride(_ models.DurationOverride)                   {}
func (m *metricsTestService) ClearOverride()                                          {}
func (m *metricsTestService) Stats() services.ServiceStats                            { return services.ServiceStats{EventsReceived: 11} }
func (m *metricsTestService) Dispose()                                                {}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/events", 200)
	m.ObserveRequestDuration("/events", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.ObserveFlushDuration(time.Millisecond)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})

	// These should not panic
	m.IncRequestsTotal("/events", 201)
	m.IncRequestsTotal("/events", 400)
	m.ObserveRequestDuration("/events", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.ObserveFlushDuration(10 * time.Millisecond)
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
