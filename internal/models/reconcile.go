package models

import "strings"

// MovedPost is an audit record of one reconciliation move.
type MovedPost struct {
	PostID string `json:"postId"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// ownerMatches reports whether the post's recorded owner identity is
// consistent with the given bucket. A match on any of key, id, or handle
// counts as consistent.
func ownerMatches(p *Post, key string, u *User) bool {
	if p.OwnerKey != "" && p.OwnerKey == key {
		return true
	}
	if p.OwnerID != "" && u.ID != "" && p.OwnerID == u.ID {
		return true
	}
	if p.OwnerHandle != "" && u.Handle != "" && strings.EqualFold(p.OwnerHandle, u.Handle) {
		return true
	}
	return false
}

// ownerBucketKey derives the bucket key recorded owner fields point at.
func ownerBucketKey(p *Post) string {
	if p.OwnerKey != "" {
		return p.OwnerKey
	}
	if p.OwnerID != "" {
		return "id:" + p.OwnerID
	}
	if p.OwnerHandle != "" {
		return "h:" + p.OwnerHandle
	}
	return ""
}

func (s *Store) bucket(key string) *User {
	u, ok := s.users[key]
	if !ok {
		u = NewUser()
		s.users[key] = u
	}
	return u
}

// ReconcileMismatched walks every post filed under userKey. Posts whose
// recorded owner identity explicitly contradicts the bucket are moved to
// the owner's bucket (created if absent). Posts with no owner identity
// at all are adopted: owner fields are backfilled from the current user.
// Idempotent; returns audit records for the moves it made.
func (s *Store) ReconcileMismatched(userKey string) []MovedPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userKey]
	if !ok {
		return nil
	}

	var moved []MovedPost
	for id, p := range u.Posts {
		if p.OwnerKey == "" && p.OwnerID == "" && p.OwnerHandle == "" {
			// No evidence of wrong placement: adopt.
			p.OwnerKey = userKey
			p.OwnerHandle = u.Handle
			p.OwnerID = u.ID
			continue
		}
		if ownerMatches(p, userKey, u) {
			continue
		}
		target := ownerBucketKey(p)
		if target == "" || target == userKey {
			continue
		}
		dst := s.bucket(target)
		if dst.Handle == "" {
			dst.Handle = p.OwnerHandle
		}
		if dst.ID == "" {
			dst.ID = p.OwnerID
		}
		if p.OwnerKey == "" {
			p.OwnerKey = target
		}
		dst.Posts[id] = p
		delete(u.Posts, id)
		moved = append(moved, MovedPost{PostID: id, From: userKey, To: target})
	}
	return moved
}

// ReclaimFromUnknown moves posts out of the unknown bucket into userKey's
// bucket when their recorded owner identity matches that user, backfilling
// owner fields. Returns the number of posts reclaimed.
func (s *Store) ReclaimFromUnknown(userKey string) int {
	if userKey == UnknownUserKey {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userKey]
	if !ok {
		return 0
	}
	unknown, ok := s.users[UnknownUserKey]
	if !ok {
		return 0
	}

	reclaimed := 0
	for id, p := range unknown.Posts {
		if !ownerMatches(p, userKey, u) {
			continue
		}
		if p.OwnerKey == "" {
			p.OwnerKey = userKey
		}
		if p.OwnerHandle == "" {
			p.OwnerHandle = u.Handle
		}
		if p.OwnerID == "" {
			p.OwnerID = u.ID
		}
		u.Posts[id] = p
		delete(unknown.Posts, id)
		reclaimed++
	}
	return reclaimed
}

// PruneEmpty drops posts under userKey that carry no usable observation
// (zero snapshots, or every snapshot with all metrics absent). Returns
// the number of posts removed.
func (s *Store) PruneEmpty(userKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userKey]
	if !ok {
		return 0
	}
	pruned := 0
	for id, p := range u.Posts {
		if p.Dead() {
			delete(u.Posts, id)
			pruned++
		}
	}
	return pruned
}
