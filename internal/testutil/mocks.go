package testutil

import (
	"sync"
	"time"

	"emd/internal/models"
	"emd/internal/providers"
	"emd/internal/services"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasLog reports whether any recorded entry has the given level.
func (m *MockLogger) HasLog(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level {
			return true
		}
	}
	return false
}

// MockMetricsService implements services.MetricsServiceInterface with
// recorded calls and stubbed data.
type MockMetricsService struct {
	mu sync.Mutex

	Added          []*models.SnapshotEvent
	FlushCalls     int
	FlushResult    services.FlushStats
	ReconcileKeys  []string
	ReconcileStub  services.ReconcileReport
	Users          map[string]*models.User
	StatePut       *models.State
	StateStub      *models.State
	LastKey        string
	VisibilityData map[string][]string
	ZoomData       map[string]map[string]models.ZoomRange
	OverrideData   *models.DurationOverride
	StatsStub      services.ServiceStats
	Pending        int
	DisposeCalls   int
}

func (m *MockMetricsService) AddEvent(e *models.SnapshotEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, e)
}

func (m *MockMetricsService) AddEvents(batch []*models.SnapshotEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, batch...)
}

func (m *MockMetricsService) Flush() services.FlushStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
	return m.FlushResult
}

func (m *MockMetricsService) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Pending
}

func (m *MockMetricsService) Reconcile(userKey string) services.ReconcileReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconcileKeys = append(m.ReconcileKeys, userKey)
	rep := m.ReconcileStub
	rep.UserKey = userKey
	return rep
}

func (m *MockMetricsService) GetUser(key string) (*models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[key]
	return u, ok
}

func (m *MockMetricsService) GetUserKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Users))
	for k := range m.Users {
		keys = append(keys, k)
	}
	return keys
}

func (m *MockMetricsService) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users)
}

func (m *MockMetricsService) PostCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.Users {
		n += len(u.Posts)
	}
	return n
}

func (m *MockMetricsService) GetState() *models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StateStub != nil {
		return m.StateStub
	}
	return &models.State{Version: models.StateVersion, Users: m.Users}
}

func (m *MockMetricsService) PutState(st *models.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatePut = st
	m.Users = st.Users
}

func (m *MockMetricsService) LastUserKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastKey
}

func (m *MockMetricsService) SetLastUserKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastKey = key
}

func (m *MockMetricsService) Visibility(userKey string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, ok := m.VisibilityData[userKey]
	return ids, ok
}

func (m *MockMetricsService) SetVisibility(userKey string, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VisibilityData == nil {
		m.VisibilityData = make(map[string][]string)
	}
	m.VisibilityData[userKey] = ids
}

func (m *MockMetricsService) ZoomState(userKey string) (map[string]models.ZoomRange, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.ZoomData[userKey]
	return z, ok
}

func (m *MockMetricsService) SetZoomState(userKey string, z map[string]models.ZoomRange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ZoomData == nil {
		m.ZoomData = make(map[string]map[string]models.ZoomRange)
	}
	m.ZoomData[userKey] = z
}

func (m *MockMetricsService) Override() (models.DurationOverride, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OverrideData == nil {
		return models.DurationOverride{}, false
	}
	return *m.OverrideData, true
}

func (m *MockMetricsService) SetOverride(o models.DurationOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OverrideData = &o
}

func (m *MockMetricsService) ClearOverride() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OverrideData = nil
}

func (m *MockMetricsService) Stats() services.ServiceStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatsStub
}

func (m *MockMetricsService) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DisposeCalls++
}

// MockScheduler implements interfaces.SchedulerInterface and counts
// Persist calls.
type MockScheduler struct {
	mu           sync.Mutex
	PersistCalls int
	PersistErr   error
	RestoreErr   error
}

func (m *MockScheduler) Init() {}
func (m *MockScheduler) Stop() {}

func (m *MockScheduler) Restore() error {
	return m.RestoreErr
}

func (m *MockScheduler) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistCalls++
	return m.PersistErr
}

func (m *MockScheduler) Persists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PersistCalls
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// observations.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	Durations      int
	CacheHits      int
	CacheMisses    int
	Persists       int
	FlushDurations int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Durations++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}

func (m *MockMetrics) ObserveFlushDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushDurations++
}

// MockCache is a plain map-backed cache.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
}
