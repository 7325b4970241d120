package models

// User is one content-author account. Created lazily the first time any
// event resolves to its key; never deleted, though reconciliation may
// empty its post map.
type User struct {
	Handle    string            `json:"handle,omitempty"`
	ID        string            `json:"id,omitempty"`
	Posts     map[string]*Post  `json:"posts"`
	Followers []*FollowerSample `json:"followers"`
}

func NewUser() *User {
	return &User{Posts: make(map[string]*Post)}
}

// appendFollowerSample records a follower reading unless it repeats the
// last recorded count. Returns true when appended.
func (u *User) appendFollowerSample(t int64, count float64) bool {
	if n := len(u.Followers); n > 0 && u.Followers[n-1].Count == count {
		return false
	}
	u.Followers = append(u.Followers, &FollowerSample{T: t, Count: count})
	return true
}

// absorbIdentity backfills handle and id from an event, first write wins.
func (u *User) absorbIdentity(e *SnapshotEvent) {
	if u.Handle == "" {
		u.Handle = e.ResolvedHandle()
	}
	if u.ID == "" {
		u.ID = e.ResolvedUserID()
	}
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (u *User) Clone() *User {
	c := &User{
		Handle:    u.Handle,
		ID:        u.ID,
		Posts:     make(map[string]*Post, len(u.Posts)),
		Followers: make([]*FollowerSample, len(u.Followers)),
	}
	for id, p := range u.Posts {
		c.Posts[id] = p.clone()
	}
	for i, f := range u.Followers {
		fc := *f
		c.Followers[i] = &fc
	}
	return c
}
