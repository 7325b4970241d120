package models

import (
	"errors"
	"sync"
)

// ErrUnusableEvent marks an event with neither a post reference nor an
// attributable follower reading. Such events are dropped at the merge
// boundary; the pipeline never halts on them.
var ErrUnusableEvent = errors.New("event carries no mergeable data")

// MergeResult reports what a single merge changed, for counters and for
// skipping redundant persistence.
type MergeResult struct {
	UserCreated      bool
	PostCreated      bool
	SnapshotAppended bool
	FollowerAppended bool
	MetaChanged      bool
}

func (r MergeResult) Changed() bool {
	return r.UserCreated || r.PostCreated || r.SnapshotAppended ||
		r.FollowerAppended || r.MetaChanged
}

// Store is the durable Users → Posts → Snapshots graph plus per-user
// follower history. Thread-safe: all public methods lock internally.
type Store struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewStore() *Store {
	return &Store{users: make(map[string]*User)}
}

// MergeEvent folds one capture event into the store: a follower sample
// for the resolved user when present, then post metadata and a candidate
// snapshot when the event references a post. Merging the same event
// twice is a no-op the second time.
func (s *Store) MergeEvent(e *SnapshotEvent) (MergeResult, error) {
	var res MergeResult
	if e == nil || !e.Usable() {
		return res, ErrUnusableEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.ResolveUserKey()
	u, ok := s.users[key]
	if !ok {
		u = NewUser()
		s.users[key] = u
		res.UserCreated = true
	}
	u.absorbIdentity(e)

	ts := e.Timestamp()

	if f := finiteMetric(e.Followers); f != nil {
		res.FollowerAppended = u.appendFollowerSample(ts, *f)
	}

	if e.PostID == "" {
		return res, nil
	}

	p, ok := u.Posts[e.PostID]
	if !ok {
		p = &Post{ID: e.PostID, Snapshots: make([]*Snapshot, 0, 1)}
		u.Posts[e.PostID] = p
		res.PostCreated = true
	}
	res.MetaChanged = p.applyMeta(e)
	p.LastSeen = ts

	snap := &Snapshot{
		T:          ts,
		UV:         copyMetric(finiteMetric(e.UV)),
		Likes:      copyMetric(finiteMetric(e.Likes)),
		Views:      copyMetric(finiteMetric(e.Views)),
		Comments:   copyMetric(finiteMetric(e.Comments)),
		RemixCount: copyMetric(finiteMetric(e.RemixMetric())),
	}
	res.SnapshotAppended = p.appendSnapshot(snap)

	return res, nil
}

// UserCopy returns a deep copy of one user bucket.
func (s *Store) UserCopy(key string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

// UserKeys lists every bucket key currently in the store.
func (s *Store) UserKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.users))
	for k := range s.users {
		keys = append(keys, k)
	}
	return keys
}

// UsersCopy returns a deep copy of the whole graph, for persistence.
func (s *Store) UsersCopy() map[string]*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*User, len(s.users))
	for k, u := range s.users {
		out[k] = u.Clone()
	}
	return out
}

// PutUsers replaces the whole graph, used when restoring persisted state.
func (s *Store) PutUsers(users map[string]*User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if users == nil {
		users = make(map[string]*User)
	}
	for _, u := range users {
		if u.Posts == nil {
			u.Posts = make(map[string]*Post)
		}
		for id, p := range u.Posts {
			if p.ID == "" {
				p.ID = id
			}
		}
	}
	s.users = users
}

func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) PostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		n += len(u.Posts)
	}
	return n
}
