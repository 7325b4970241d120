package services

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"emd/internal/models"
	"emd/internal/structures"
)

// FlushStats reports what one flush did.
type FlushStats struct {
	Events    int
	Snapshots int
	Followers int
	Dropped   int
}

func (f FlushStats) Changed() bool {
	return f.Snapshots > 0 || f.Followers > 0
}

// ServiceStats exposes cumulative counters for the metrics provider.
type ServiceStats struct {
	EventsReceived    int64
	EventsDropped     int64
	SnapshotsAppended int64
	FollowerSamples   int64
	PostsMoved        int64
	PostsReclaimed    int64
	PostsPruned       int64
	Flushes           int64
}

type MetricsServiceInterface interface {
	AddEvent(e *models.SnapshotEvent)
	AddEvents(batch []*models.SnapshotEvent)
	Flush() FlushStats
	PendingCount() int

	Reconcile(userKey string) ReconcileReport

	GetUser(key string) (*models.User, bool)
	GetUserKeys() []string
	UserCount() int
	PostCount() int

	GetState() *models.State
	PutState(st *models.State)

	LastUserKey() string
	SetLastUserKey(key string)
	Visibility(userKey string) ([]string, bool)
	SetVisibility(userKey string, ids []string)
	ZoomState(userKey string) (map[string]models.ZoomRange, bool)
	SetZoomState(userKey string, z map[string]models.ZoomRange)
	Override() (models.DurationOverride, bool)
	SetOverride(o models.DurationOverride)
	ClearOverride()

	Stats() ServiceStats
	Dispose()
}

// MetricsService owns the store, the ingestion double buffer, the
// single-shot flush timer, and the dashboard preference state. All
// mutating paths (flush, reconcile, state swap) serialize on opsMu so a
// flush can never interleave with a reconciliation pass.
type MetricsService struct {
	store *models.Store

	flushDelay time.Duration
	maxPending int

	bufMu   sync.Mutex
	primary atomic.Bool
	buf1    []*models.SnapshotEvent
	buf2    []*models.SnapshotEvent

	armed      atomic.Bool
	flushTimer *time.Timer

	opsMu sync.Mutex

	prefsMu     sync.Mutex
	lastUserKey string
	visibility  map[string][]string
	zoomStates  map[string]map[string]models.ZoomRange
	override    *models.DurationOverride

	eventsReceived    atomic.Int64
	eventsDropped     atomic.Int64
	snapshotsAppended atomic.Int64
	followerSamples   atomic.Int64
	postsMoved        atomic.Int64
	postsReclaimed    atomic.Int64
	postsPruned       atomic.Int64
	flushes           atomic.Int64
}

func NewMetricsService(conf *structures.Config) MetricsServiceInterface {
	s := &MetricsService{
		store:      models.NewStore(),
		flushDelay: conf.Ingest.FlushDelay * time.Millisecond,
		maxPending: conf.Ingest.MaxPending,
		buf1:       make([]*models.SnapshotEvent, 0),
		buf2:       make([]*models.SnapshotEvent, 0),
		visibility: make(map[string][]string),
		zoomStates: make(map[string]map[string]models.ZoomRange),
	}
	s.primary.Store(true)
	return s
}

// AddEvent buffers one raw event and arms the flush timer if it is not
// already armed. A timer armed by an earlier event is never re-armed, so
// bursts coalesce into one flush.
func (s *MetricsService) AddEvent(e *models.SnapshotEvent) {
	if e == nil {
		return
	}
	s.eventsReceived.Inc()

	s.bufMu.Lock()
	active := s.activeBuffer()
	if s.maxPending > 0 && len(*active) >= s.maxPending {
		s.bufMu.Unlock()
		s.eventsDropped.Inc()
		return
	}
	*active = append(*active, e)
	s.bufMu.Unlock()

	if s.armed.CompareAndSwap(false, true) {
		s.flushTimer = time.AfterFunc(s.flushDelay, func() { s.Flush() })
	}
}

func (s *MetricsService) AddEvents(batch []*models.SnapshotEvent) {
	for _, e := range batch {
		s.AddEvent(e)
	}
}

func (s *MetricsService) activeBuffer() *[]*models.SnapshotEvent {
	if s.primary.Load() {
		return &s.buf1
	}
	return &s.buf2
}

// Flush atomically drains the pending buffer and merges every drained
// event into the store. Unusable events are dropped and counted; a
// persistence failure elsewhere never re-populates the buffer.
func (s *MetricsService) Flush() FlushStats {
	s.armed.Store(false)

	s.bufMu.Lock()
	drained := *s.activeBuffer()
	s.primary.Store(!s.primary.Load())
	*s.activeBuffer() = make([]*models.SnapshotEvent, 0)
	s.bufMu.Unlock()

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	var fs FlushStats
	fs.Events = len(drained)
	for _, e := range drained {
		res, err := s.store.MergeEvent(e)
		if err != nil {
			fs.Dropped++
			s.eventsDropped.Inc()
			continue
		}
		if res.SnapshotAppended {
			fs.Snapshots++
			s.snapshotsAppended.Inc()
		}
		if res.FollowerAppended {
			fs.Followers++
			s.followerSamples.Inc()
		}
	}
	s.flushes.Inc()
	return fs
}

func (s *MetricsService) PendingCount() int {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return len(*s.activeBuffer())
}

func (s *MetricsService) GetUser(key string) (*models.User, bool) {
	return s.store.UserCopy(key)
}

func (s *MetricsService) GetUserKeys() []string {
	return s.store.UserKeys()
}

func (s *MetricsService) UserCount() int { return s.store.UserCount() }
func (s *MetricsService) PostCount() int { return s.store.PostCount() }

// GetState assembles the persistence envelope from the store and the
// preference fields.
func (s *MetricsService) GetState() *models.State {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()

	st := &models.State{
		Version:          models.StateVersion,
		Users:            s.store.UsersCopy(),
		LastUserKey:      s.lastUserKey,
		VisibilityByUser: make(map[string][]string, len(s.visibility)),
		ZoomStates:       make(map[string]map[string]models.ZoomRange, len(s.zoomStates)),
	}
	for k, ids := range s.visibility {
		st.VisibilityByUser[k] = append([]string(nil), ids...)
	}
	for k, z := range s.zoomStates {
		zc := make(map[string]models.ZoomRange, len(z))
		for c, r := range z {
			zc[c] = r
		}
		st.ZoomStates[k] = zc
	}
	if s.override != nil {
		o := *s.override
		st.Override = &o
	}
	return st
}

// PutState replaces the in-memory state with a restored envelope.
func (s *MetricsService) PutState(st *models.State) {
	if st == nil {
		return
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.store.PutUsers(st.Users)

	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.lastUserKey = st.LastUserKey
	s.visibility = st.VisibilityByUser
	if s.visibility == nil {
		s.visibility = make(map[string][]string)
	}
	s.zoomStates = st.ZoomStates
	if s.zoomStates == nil {
		s.zoomStates = make(map[string]map[string]models.ZoomRange)
	}
	s.override = st.Override
}

func (s *MetricsService) LastUserKey() string {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	return s.lastUserKey
}

func (s *MetricsService) SetLastUserKey(key string) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.lastUserKey = key
}

func (s *MetricsService) Visibility(userKey string) ([]string, bool) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	ids, ok := s.visibility[userKey]
	if !ok {
		return nil, false
	}
	return append([]string(nil), ids...), true
}

func (s *MetricsService) SetVisibility(userKey string, ids []string) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.visibility[userKey] = append([]string(nil), ids...)
}

func (s *MetricsService) ZoomState(userKey string) (map[string]models.ZoomRange, bool) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	z, ok := s.zoomStates[userKey]
	if !ok {
		return nil, false
	}
	zc := make(map[string]models.ZoomRange, len(z))
	for c, r := range z {
		zc[c] = r
	}
	return zc, true
}

func (s *MetricsService) SetZoomState(userKey string, z map[string]models.ZoomRange) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.zoomStates[userKey] = z
}

func (s *MetricsService) Override() (models.DurationOverride, bool) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	if s.override == nil {
		return models.DurationOverride{}, false
	}
	return *s.override, true
}

func (s *MetricsService) SetOverride(o models.DurationOverride) {
	if o.SetAt == 0 {
		o.SetAt = time.Now().UnixMilli()
	}
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.override = &o
}

func (s *MetricsService) ClearOverride() {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	s.override = nil
}

func (s *MetricsService) Stats() ServiceStats {
	return ServiceStats{
		EventsReceived:    s.eventsReceived.Load(),
		EventsDropped:     s.eventsDropped.Load(),
		SnapshotsAppended: s.snapshotsAppended.Load(),
		FollowerSamples:   s.followerSamples.Load(),
		PostsMoved:        s.postsMoved.Load(),
		PostsReclaimed:    s.postsReclaimed.Load(),
		PostsPruned:       s.postsPruned.Load(),
		Flushes:           s.flushes.Load(),
	}
}

// Dispose stops the pending flush timer. Buffered events stay queued;
// stopping the timer loses nothing.
func (s *MetricsService) Dispose() {
	if s.armed.Load() && s.flushTimer != nil {
		s.flushTimer.Stop()
		s.armed.Store(false)
	}
}
